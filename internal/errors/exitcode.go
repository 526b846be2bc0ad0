package errors

// ExitCode 是进程退出码（稳定契约）。
type ExitCode int

const (
	ExitOK ExitCode = 0

	// 2: 参数/配置错误
	ExitConfig ExitCode = 2

	// 3: 地址无法解析或凭据不存在
	ExitLookup ExitCode = 3

	// 4: backend 不可用或操作失败
	ExitBackend ExitCode = 4

	// 5: 需要交互但当前会话不可交互
	ExitPrompt ExitCode = 5

	// 10: 内部错误
	ExitInternal ExitCode = 10
)

func ExitCodeFor(code Code) ExitCode {
	switch code {
	case CodeCfgNotFound, CodeCfgInvalid:
		return ExitConfig
	case CodeUnsupportedScheme, CodeNotFound:
		return ExitLookup
	case CodeBackendUnavailable, CodeBackendFailed:
		return ExitBackend
	case CodePromptUnavailable:
		return ExitPrompt
	case CodeInternal:
		fallthrough
	default:
		return ExitInternal
	}
}

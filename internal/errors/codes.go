package errors

// Code 是稳定错误码（字符串），供脚本与程序判断。
// 只增不改、不复用旧含义。
type Code string

const (
	// Config / args
	CodeCfgNotFound Code = "XCREDS_CFG_NOT_FOUND"
	CodeCfgInvalid  Code = "XCREDS_CFG_INVALID"

	// 地址解析
	CodeUnsupportedScheme Code = "XCREDS_UNSUPPORTED_SCHEME"
	CodeNotFound          Code = "XCREDS_NOT_FOUND"

	// Backend
	CodeBackendUnavailable Code = "XCREDS_BACKEND_UNAVAILABLE"
	CodeBackendFailed      Code = "XCREDS_BACKEND_FAILED"

	// 交互
	CodePromptUnavailable Code = "XCREDS_PROMPT_UNAVAILABLE"

	// Internal
	CodeInternal Code = "XCREDS_INTERNAL"
)

func AllCodes() []Code {
	return []Code{
		CodeCfgNotFound,
		CodeCfgInvalid,
		CodeUnsupportedScheme,
		CodeNotFound,
		CodeBackendUnavailable,
		CodeBackendFailed,
		CodePromptUnavailable,
		CodeInternal,
	}
}

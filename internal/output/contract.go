package output

import "github.com/zx06/xcreds/internal/errors"

// SchemaVersion 是输出 envelope 的版本；字段只增不改。
const SchemaVersion = 1

// ErrorObject 是失败时的 error 字段。Details 只放地址、backend 名等诊断信息，
// 从不包含密码。
type ErrorObject struct {
	Code    errors.Code    `json:"code" yaml:"code"`
	Message string         `json:"message" yaml:"message"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
}

// Envelope 是所有命令的 stdout 输出。helper 子命令走 git 凭据协议，不使用它。
//
// Data 里的密码默认被屏蔽，只有 get --reveal 才输出明文。
type Envelope struct {
	OK            bool         `json:"ok" yaml:"ok"`
	SchemaVersion int          `json:"schema_version" yaml:"schema_version"`
	Error         *ErrorObject `json:"error,omitempty" yaml:"error,omitempty"`
	Data          any          `json:"data,omitempty" yaml:"data,omitempty"`
}

func Success(data any) Envelope {
	return Envelope{OK: true, SchemaVersion: SchemaVersion, Data: data}
}

// Failure 把 XError 转成失败 envelope；cause 不写入输出。
func Failure(xe *errors.XError) Envelope {
	return Envelope{
		OK:            false,
		SchemaVersion: SchemaVersion,
		Error:         &ErrorObject{Code: xe.Code, Message: xe.Message, Details: xe.Details},
	}
}

// Package spec 描述 xcreds 的命令、参数和错误契约，供脚本与 agent 读取。
package spec

import "github.com/zx06/xcreds/internal/errors"

type FlagSpec struct {
	Name        string `json:"name" yaml:"name"`
	Shorthand   string `json:"shorthand,omitempty" yaml:"shorthand,omitempty"`
	Env         string `json:"env,omitempty" yaml:"env,omitempty"`
	Default     string `json:"default,omitempty" yaml:"default,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type CommandSpec struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Flags       []FlagSpec `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// ExitCodeSpec 把错误码映射到进程退出码。
type ExitCodeSpec struct {
	Code errors.Code     `json:"code" yaml:"code"`
	Exit errors.ExitCode `json:"exit" yaml:"exit"`
}

type Spec struct {
	SchemaVersion int            `json:"schema_version" yaml:"schema_version"`
	Commands      []CommandSpec  `json:"commands" yaml:"commands"`
	ErrorCodes    []errors.Code  `json:"error_codes" yaml:"error_codes"`
	ExitCodes     []ExitCodeSpec `json:"exit_codes" yaml:"exit_codes"`
	// Backends 是编译进二进制的 backend 名称，可用于 --backend。
	Backends []string `json:"backends" yaml:"backends"`
}

// Command 按名称查找命令。
func (s Spec) Command(name string) (CommandSpec, bool) {
	for _, c := range s.Commands {
		if c.Name == name {
			return c, true
		}
	}
	return CommandSpec{}, false
}

// ExitCodesFor 为 codes 生成退出码表。
func ExitCodesFor(codes []errors.Code) []ExitCodeSpec {
	out := make([]ExitCodeSpec, 0, len(codes))
	for _, c := range codes {
		out = append(out, ExitCodeSpec{Code: c, Exit: errors.ExitCodeFor(c)})
	}
	return out
}

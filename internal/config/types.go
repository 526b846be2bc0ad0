package config

// File 表示 xcreds.yaml 的配置结构。
// 约束：配置优先级为 CLI > ENV > Config。
type File struct {
	// Auth 是只读的 auth 前缀规则表，键为规则名。
	Auth map[string]AuthGroup `yaml:"auth"`

	// Backends 声明 backend 的查询顺序。为空时使用 DefaultBackends。
	Backends []string `yaml:"backends"`

	SQLite SQLite `yaml:"sqlite"`

	Interactive string `yaml:"interactive"` // auto | always | never
	Format      string `yaml:"format"`
	LogLevel    string `yaml:"log_level"`
}

type AuthGroup struct {
	Prefix   string `yaml:"prefix"`
	Username string `yaml:"username"`
	Schemes  string `yaml:"schemes"` // 空格分隔，默认 https
}

type SQLite struct {
	Path string `yaml:"path"` // 支持 ~ 开头
}

// Interactive 取值。
const (
	InteractiveAuto   = "auto"
	InteractiveAlways = "always"
	InteractiveNever  = "never"
)

// DefaultBackends 是未配置 backends 时的查询顺序。
var DefaultBackends = []string{"keyring"}

type Resolved struct {
	ConfigPath  string
	Format      string
	LogLevel    string
	Interactive string
	Backends    []string
	SQLitePath  string
	Auth        map[string]AuthGroup
}

type Options struct {
	// ConfigPath: 若非空，则只读取该文件（不存在报错）。
	ConfigPath string

	// CLI
	CLIFormat         string
	CLIFormatSet      bool
	CLILogLevel       string
	CLILogLevelSet    bool
	CLIInteractive    string
	CLIInteractiveSet bool
	CLIBackends       []string
	CLIBackendsSet    bool

	// ENV（由调用方注入，便于测试）
	EnvFormat      string
	EnvLogLevel    string
	EnvInteractive string
	EnvBackends    string // 逗号分隔
	EnvSQLitePath  string

	// HomeDir 用于默认路径计算（为空则自动探测）。
	HomeDir string

	// WorkDir 用于默认路径（为空则使用进程当前工作目录）。
	WorkDir string
}

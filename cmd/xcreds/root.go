package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zx06/xcreds/internal/config"
	"github.com/zx06/xcreds/internal/errors"
	"github.com/zx06/xcreds/internal/log"
)

// Build-time variables (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Config holds the resolved configuration
type Config struct {
	FormatStr      string
	ConfigStr      string
	LogLevelStr    string
	InteractiveStr string
	BackendNames   []string
	Resolved       config.Resolved
	Logger         *slog.Logger

	// ProtocolMode is set by the helper command: stdout carries git's
	// credential protocol, so errors go to stderr.
	ProtocolMode bool
}

// GlobalConfig holds the global configuration state
var GlobalConfig = &Config{}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "xcreds",
		Short:         "Resolve HTTP credentials from secure storage before prompting",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// CLI > ENV > Config
			flags := cmd.Flags()
			configSet := flags.Changed("config")
			if configSet && GlobalConfig.ConfigStr == "" {
				return errors.New(errors.CodeCfgInvalid, "config path is empty", nil)
			}
			configPath := GlobalConfig.ConfigStr
			if !configSet {
				configPath = os.Getenv("XCREDS_CONFIG")
			}

			r, xe := config.Resolve(config.Options{
				ConfigPath:        configPath,
				CLIFormat:         GlobalConfig.FormatStr,
				CLIFormatSet:      flags.Changed("format"),
				CLILogLevel:       GlobalConfig.LogLevelStr,
				CLILogLevelSet:    flags.Changed("log-level"),
				CLIInteractive:    GlobalConfig.InteractiveStr,
				CLIInteractiveSet: flags.Changed("interactive"),
				CLIBackends:       GlobalConfig.BackendNames,
				CLIBackendsSet:    flags.Changed("backend"),
				EnvFormat:         os.Getenv("XCREDS_FORMAT"),
				EnvLogLevel:       os.Getenv("XCREDS_LOG_LEVEL"),
				EnvInteractive:    os.Getenv("XCREDS_INTERACTIVE"),
				EnvBackends:       os.Getenv("XCREDS_BACKENDS"),
				EnvSQLitePath:     os.Getenv("XCREDS_SQLITE_PATH"),
			})
			if xe != nil {
				return xe
			}
			level, err := log.ParseLevel(r.LogLevel)
			if err != nil {
				return errors.Wrap(errors.CodeCfgInvalid, "invalid log level", map[string]any{"log_level": r.LogLevel}, err)
			}
			GlobalConfig.Resolved = r
			GlobalConfig.FormatStr = r.Format
			GlobalConfig.Logger = log.NewWithLevel(cmd.ErrOrStderr(), level)
			GlobalConfig.Logger.Debug("configuration resolved", "config_path", r.ConfigPath, "backends", r.Backends, "interactive", r.Interactive)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&GlobalConfig.ConfigStr, "config", "", "Config file path (YAML); default: ./xcreds.yaml or $HOME/.config/xcreds/xcreds.yaml")
	pf.StringVarP(&GlobalConfig.FormatStr, "format", "f", "auto", "Output format: json|yaml|table|csv|auto")
	pf.StringVar(&GlobalConfig.LogLevelStr, "log-level", "info", "Log level written to stderr: debug|info|warn|error")
	pf.StringVar(&GlobalConfig.InteractiveStr, "interactive", "auto", "Prompting: auto|always|never")
	pf.StringSliceVar(&GlobalConfig.BackendNames, "backend", nil, "Credential backends in query order (repeatable)")

	return root
}

package app

import (
	"github.com/zx06/xcreds/internal/backend"
	"github.com/zx06/xcreds/internal/errors"
	"github.com/zx06/xcreds/internal/output"
	"github.com/zx06/xcreds/internal/spec"
)

type App struct {
	Version string
	Commit  string
	Date    string
}

func New(version, commit, date string) App {
	return App{Version: version, Commit: commit, Date: date}
}

func (a App) BuildSpec() spec.Spec {
	globalFlags := []spec.FlagSpec{
		{Name: "config", Env: "XCREDS_CONFIG", Default: "", Description: "Config file path (YAML); default: ./xcreds.yaml or $HOME/.config/xcreds/xcreds.yaml"},
		{Name: "format", Shorthand: "f", Env: "XCREDS_FORMAT", Default: "auto", Description: "Output format: json|yaml|table|csv|auto"},
		{Name: "log-level", Env: "XCREDS_LOG_LEVEL", Default: "info", Description: "Log level written to stderr: debug|info|warn|error"},
		{Name: "backend", Env: "XCREDS_BACKENDS", Default: "keyring", Description: "Credential backends in query order (repeatable; config: backends)"},
		{Name: "interactive", Env: "XCREDS_INTERACTIVE", Default: "auto", Description: "Prompting: auto|always|never (config: interactive)"},
	}
	withFlags := func(extra ...spec.FlagSpec) []spec.FlagSpec {
		return append(append([]spec.FlagSpec(nil), globalFlags...), extra...)
	}
	return spec.Spec{
		SchemaVersion: output.SchemaVersion,
		Commands: []spec.CommandSpec{
			{
				Name:        "spec",
				Description: "Export the command, flag and error-code contract",
				Flags: withFlags(
					spec.FlagSpec{Name: "command", Default: "", Description: "Only print the spec of one command"},
				),
			},
			{
				Name:        "version",
				Description: "Print version information",
				Flags: withFlags(
					spec.FlagSpec{Name: "short", Default: "false", Description: "Print only the version string"},
				),
			},
			{
				Name:        "get",
				Description: "Find credentials for a URL, prompting on a miss",
				Flags: withFlags(
					spec.FlagSpec{Name: "realm", Default: "", Description: "Authentication realm"},
					spec.FlagSpec{Name: "reveal", Default: "false", Description: "Print the password instead of a mask"},
				),
			},
			{
				Name:        "store",
				Description: "Offer to save credentials for a URL (password read from stdin or prompt)",
				Flags: withFlags(
					spec.FlagSpec{Name: "realm", Default: "", Description: "Authentication realm"},
					spec.FlagSpec{Name: "user", Shorthand: "u", Default: "", Description: "Username"},
					spec.FlagSpec{Name: "yes", Shorthand: "y", Default: "false", Description: "Save without asking"},
				),
			},
			{
				Name:        "resolve",
				Description: "Show the canonical credential address for a URL",
				Flags: withFlags(
					spec.FlagSpec{Name: "realm", Default: "", Description: "Authentication realm"},
					spec.FlagSpec{Name: "user", Shorthand: "u", Default: "", Description: "Username"},
				),
			},
			{
				Name:        "backends",
				Description: "List credential backends and whether they are available",
				Flags:       globalFlags,
			},
			{
				Name:        "helper",
				Description: "git credential helper (get|store|erase)",
				Flags: withFlags(
					spec.FlagSpec{Name: "yes", Shorthand: "y", Default: "false", Description: "Save on store without asking"},
				),
			},
		},
		ErrorCodes: errors.AllCodes(),
		ExitCodes:  spec.ExitCodesFor(errors.AllCodes()),
		Backends:   backend.RegisteredNames(),
	}
}

type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

func (a App) VersionInfo() VersionInfo {
	return VersionInfo{Version: a.Version, Commit: a.Commit, Date: a.Date}
}

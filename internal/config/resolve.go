package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/zx06/xcreds/internal/errors"
	"github.com/zx06/xcreds/internal/log"
)

// Resolve 合并配置文件、ENV 与 CLI：CLI > ENV > Config > 默认值。
func Resolve(opts Options) (Resolved, *errors.XError) {
	if opts.HomeDir == "" {
		if hd, err := os.UserHomeDir(); err == nil {
			opts.HomeDir = hd
		}
	}

	cfg, cfgPath, xe := LoadConfig(opts)
	if xe != nil {
		return Resolved{}, xe
	}

	r := Resolved{
		ConfigPath:  cfgPath,
		Format:      pick("auto", cfg.Format, opts.EnvFormat, opts.CLIFormat, opts.CLIFormatSet),
		LogLevel:    pick("info", cfg.LogLevel, opts.EnvLogLevel, opts.CLILogLevel, opts.CLILogLevelSet),
		Interactive: pick(InteractiveAuto, cfg.Interactive, opts.EnvInteractive, opts.CLIInteractive, opts.CLIInteractiveSet),
		SQLitePath:  pick("", cfg.SQLite.Path, opts.EnvSQLitePath, "", false),
		Auth:        cfg.Auth,
	}

	// backends：--backend > XCREDS_BACKENDS > backends > DefaultBackends
	switch {
	case opts.CLIBackendsSet:
		r.Backends = opts.CLIBackends
	case opts.EnvBackends != "":
		r.Backends = splitList(opts.EnvBackends)
	case len(cfg.Backends) > 0:
		r.Backends = cfg.Backends
	default:
		r.Backends = DefaultBackends
	}
	r.Backends = append([]string(nil), r.Backends...)

	r.SQLitePath = expandHome(r.SQLitePath, opts.HomeDir)

	if xe := validate(r, cfgPath); xe != nil {
		return Resolved{}, xe
	}
	return r, nil
}

// pick 按 CLI > ENV > Config > def 取第一个非空值。
func pick(def, fromCfg, fromEnv, fromCLI string, cliSet bool) string {
	v := def
	if fromCfg != "" {
		v = fromCfg
	}
	if fromEnv != "" {
		v = fromEnv
	}
	if cliSet {
		v = fromCLI
	}
	return v
}

func validate(r Resolved, cfgPath string) *errors.XError {
	details := func(k, v string) map[string]any {
		d := map[string]any{k: v}
		if cfgPath != "" {
			d["path"] = cfgPath
		}
		return d
	}

	switch r.Interactive {
	case InteractiveAuto, InteractiveAlways, InteractiveNever:
	default:
		return errors.New(errors.CodeCfgInvalid, "interactive must be auto, always or never", details("interactive", r.Interactive))
	}
	if _, err := log.ParseLevel(r.LogLevel); err != nil {
		return errors.Wrap(errors.CodeCfgInvalid, "invalid log level", details("log_level", r.LogLevel), err)
	}

	seen := make(map[string]bool, len(r.Backends))
	for _, name := range r.Backends {
		if name == "" {
			return errors.New(errors.CodeCfgInvalid, "empty backend name", details("backends", strings.Join(r.Backends, ",")))
		}
		if seen[name] {
			return errors.New(errors.CodeCfgInvalid, "duplicate backend", details("backend", name))
		}
		seen[name] = true
	}

	for name, g := range r.Auth {
		if strings.TrimSpace(g.Prefix) == "" {
			return errors.New(errors.CodeCfgInvalid, "auth rule has no prefix", details("auth", name))
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func expandHome(p, home string) string {
	if home == "" {
		return p
	}
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home, p[2:])
	}
	return p
}

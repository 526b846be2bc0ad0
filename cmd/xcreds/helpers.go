package main

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/zx06/xcreds/internal/app"
	"github.com/zx06/xcreds/internal/broker"
	"github.com/zx06/xcreds/internal/credential"
	"github.com/zx06/xcreds/internal/errors"
	"github.com/zx06/xcreds/internal/output"
	"github.com/zx06/xcreds/internal/prompt"
)

// parseOutputFormat parses and validates the output format string
func parseOutputFormat(s string) (output.Format, error) {
	f, ok := output.ParseFormat(s)
	if !ok {
		return "", errors.New(errors.CodeCfgInvalid, "invalid output format", map[string]any{"format": s, "supported": output.Formats()})
	}
	return resolveAuto(f), nil
}

// resolveFormatForError resolves the format for error output
func resolveFormatForError(s string) output.Format {
	f, ok := output.ParseFormat(s)
	if !ok {
		f = output.FormatAuto
	}
	return resolveAuto(f)
}

// resolveAuto resolves "auto" format to appropriate format based on TTY
func resolveAuto(f output.Format) output.Format {
	if f != output.FormatAuto {
		return f
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return output.FormatTable
	}
	return output.FormatJSON
}

// normalizeErr normalizes any error to XError
func normalizeErr(err error) *errors.XError {
	// Plain errors keep their message under XCREDS_INTERNAL
	return errors.AsOrWrap(err)
}

// newResolver builds the address resolver from the configured auth rules.
func newResolver() *credential.Resolver {
	return credential.NewResolver(GlobalConfig.Resolved.RuleTable())
}

// newTerminal returns a terminal prompt reading in and writing prompts to out.
func newTerminal(in io.Reader, out io.Writer) *prompt.Terminal {
	return prompt.New(prompt.Options{
		In:       in,
		Out:      out,
		Mode:     prompt.Mode(GlobalConfig.Resolved.Interactive),
		Resolver: newResolver(),
	})
}

// openSession opens a broker session over the configured backends.
// The caller must Close the returned session.
func openSession(ctx context.Context, base broker.Provider, confirm broker.Confirmer) (*app.Session, error) {
	s, xe := app.OpenSession(ctx, app.SessionOptions{
		Resolved:  GlobalConfig.Resolved,
		Base:      base,
		Confirmer: confirm,
		Logger:    GlobalConfig.Logger,
	})
	if xe != nil {
		return nil, xe
	}
	return s, nil
}

func closeSession(s *app.Session) {
	if err := s.Close(); err != nil && GlobalConfig.Logger != nil {
		GlobalConfig.Logger.Warn("failed to close credential backend", "err", err)
	}
}

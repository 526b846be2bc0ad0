package main

import (
	"os"

	"github.com/zx06/xcreds/internal/app"
	"github.com/zx06/xcreds/internal/errors"
	"github.com/zx06/xcreds/internal/output"

	// backend 在 init 中注册
	_ "github.com/zx06/xcreds/internal/backend/keyring"
	_ "github.com/zx06/xcreds/internal/backend/sqlite"
)

func main() {
	exit := run()
	os.Exit(exit)
}

// run is the main entry point
func run() int {
	a := app.New(version, commit, date)
	w := output.New(os.Stdout, os.Stderr)

	root := NewRootCommand()

	root.AddCommand(NewSpecCommand(&a, &w))
	root.AddCommand(NewVersionCommand(&a, &w))
	root.AddCommand(NewGetCommand(&w))
	root.AddCommand(NewStoreCommand(&w))
	root.AddCommand(NewResolveCommand(&w))
	root.AddCommand(NewBackendsCommand(&w))
	root.AddCommand(NewHelperCommand())

	if err := root.Execute(); err != nil {
		xe := normalizeErr(err)
		if GlobalConfig.ProtocolMode {
			// stdout belongs to the credential protocol
			_ = output.New(os.Stderr, os.Stderr).WriteError(output.FormatTable, xe)
		} else {
			format := resolveFormatForError(GlobalConfig.FormatStr)
			_ = w.WriteError(format, xe)
		}
		return int(xe.ExitCode())
	}

	return int(errors.ExitOK)
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/zx06/xcreds/internal/output"
	"github.com/zx06/xcreds/internal/prompt"
)

// NewBackendsCommand creates the backends command
func NewBackendsCommand(w *output.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List credential backends and whether they are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			s, err := openSession(cmd.Context(), prompt.Null{}, nil)
			if err != nil {
				return err
			}
			defer closeSession(s)
			return w.WriteOK(format, s.BackendList(GlobalConfig.Resolved.Backends))
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zx06/xcreds/internal/app"
	"github.com/zx06/xcreds/internal/output"
)

// NewVersionCommand creates the version command
func NewVersionCommand(a *app.App, w *output.Writer) *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if short {
				// plain text for scripts and credential.helper checks
				_, err := fmt.Fprintln(cmd.OutOrStdout(), a.Version)
				return err
			}
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			return w.WriteOK(format, a.VersionInfo())
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version string")
	return cmd
}

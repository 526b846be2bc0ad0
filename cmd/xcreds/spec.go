package main

import (
	"github.com/spf13/cobra"

	"github.com/zx06/xcreds/internal/app"
	"github.com/zx06/xcreds/internal/errors"
	"github.com/zx06/xcreds/internal/output"
)

// NewSpecCommand creates the spec command
func NewSpecCommand(a *app.App, w *output.Writer) *cobra.Command {
	var command string
	cmd := &cobra.Command{
		Use:   "spec",
		Short: "Export the command, flag and error-code contract",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			s := a.BuildSpec()
			if command == "" {
				return w.WriteOK(format, s)
			}
			c, ok := s.Command(command)
			if !ok {
				names := make([]string, 0, len(s.Commands))
				for _, c := range s.Commands {
					names = append(names, c.Name)
				}
				return errors.New(errors.CodeCfgInvalid, "unknown command", map[string]any{"command": command, "supported": names})
			}
			return w.WriteOK(format, c)
		},
	}
	cmd.Flags().StringVar(&command, "command", "", "Only print the spec of one command")
	return cmd
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/zx06/xcreds/internal/output"
)

type credentialView struct {
	URL      string `json:"url" yaml:"url"`
	Realm    string `json:"realm,omitempty" yaml:"realm,omitempty"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
}

const maskedSecret = "***"

// NewGetCommand creates the get command
func NewGetCommand(w *output.Writer) *cobra.Command {
	var (
		realm  string
		reveal bool
	)
	cmd := &cobra.Command{
		Use:   "get <url>",
		Short: "Find credentials for a URL, prompting on a miss",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			uri := args[0]

			term := newTerminal(cmd.InOrStdin(), cmd.ErrOrStderr())
			s, err := openSession(cmd.Context(), term, term)
			if err != nil {
				return err
			}
			defer closeSession(s)

			user, secret, err := s.Broker.FindUserPassword(cmd.Context(), realm, uri)
			if err != nil {
				return err
			}
			view := credentialView{URL: uri, Realm: realm, User: user, Password: maskedSecret}
			if reveal {
				view.Password = string(secret)
			}
			return w.WriteOK(format, view)
		},
	}
	cmd.Flags().StringVar(&realm, "realm", "", "Authentication realm")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print the password instead of a mask")
	return cmd
}

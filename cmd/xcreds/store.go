package main

import (
	"github.com/spf13/cobra"

	"github.com/zx06/xcreds/internal/broker"
	"github.com/zx06/xcreds/internal/credential"
	"github.com/zx06/xcreds/internal/errors"
	"github.com/zx06/xcreds/internal/output"
	"github.com/zx06/xcreds/internal/prompt"
)

type storeResult struct {
	URL     string `json:"url" yaml:"url"`
	Realm   string `json:"realm,omitempty" yaml:"realm,omitempty"`
	User    string `json:"user" yaml:"user"`
	Address string `json:"address" yaml:"address"`
	// Saved reports whether a backend now holds this password.
	Saved bool `json:"saved" yaml:"saved"`
}

// NewStoreCommand creates the store command
func NewStoreCommand(w *output.Writer) *cobra.Command {
	var (
		realm string
		user  string
		yes   bool
	)
	cmd := &cobra.Command{
		Use:   "store <url>",
		Short: "Offer to save credentials for a URL (password read from stdin or prompt)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			uri := args[0]

			resolver := newResolver()
			addr, xe := resolver.Resolve(uri, credential.ResolveOptions{User: user, Realm: realm})
			if xe != nil {
				return xe
			}
			if user == "" {
				user = addr.RuleUser()
			}
			if user == "" {
				return errors.New(errors.CodeCfgInvalid, "user is required (--user or an auth rule username)", map[string]any{"url": addr.String()})
			}

			term := newTerminal(cmd.InOrStdin(), cmd.ErrOrStderr())
			if !yes && !term.Interactive() {
				return errors.New(errors.CodePromptUnavailable, "cannot ask whether to save in a non-interactive session, pass --yes", map[string]any{"url": addr.String()})
			}
			secret, err := term.ReadSecret("password: ")
			if err != nil {
				return err
			}

			var confirm broker.Confirmer = term
			if yes {
				confirm = prompt.Assume(true)
			}
			s, err := openSession(cmd.Context(), prompt.Null{}, confirm)
			if err != nil {
				return err
			}
			defer closeSession(s)

			if err := s.Broker.AddPassword(cmd.Context(), realm, []string{uri}, user, secret); err != nil {
				return err
			}
			target, xe := s.Resolver.Resolve(uri, credential.ResolveOptions{User: user, Realm: realm})
			if xe != nil {
				return xe
			}
			return w.WriteOK(format, storeResult{
				URL:     uri,
				Realm:   realm,
				User:    user,
				Address: target.String(),
				Saved:   s.Holds(cmd.Context(), target, secret),
			})
		},
	}
	cmd.Flags().StringVar(&realm, "realm", "", "Authentication realm")
	cmd.Flags().StringVarP(&user, "user", "u", "", "Username")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Save without asking")
	return cmd
}

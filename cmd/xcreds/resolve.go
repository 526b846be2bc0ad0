package main

import (
	"github.com/spf13/cobra"

	"github.com/zx06/xcreds/internal/credential"
	"github.com/zx06/xcreds/internal/output"
)

type addressView struct {
	URL      string `json:"url" yaml:"url"`
	Scheme   string `json:"scheme" yaml:"scheme"`
	Host     string `json:"host" yaml:"host"`
	Port     string `json:"port,omitempty" yaml:"port,omitempty"`
	Path     string `json:"path" yaml:"path"`
	User     string `json:"user,omitempty" yaml:"user,omitempty"`
	Realm    string `json:"realm,omitempty" yaml:"realm,omitempty"`
	RuleUser string `json:"rule_user,omitempty" yaml:"rule_user,omitempty"`
	Key      string `json:"key" yaml:"key"`
}

func newAddressView(a credential.Address) addressView {
	v := addressView{
		URL:      a.String(),
		Scheme:   a.Scheme(),
		Host:     a.Host(),
		Port:     a.Port(),
		Path:     a.Path(),
		RuleUser: a.RuleUser(),
		Key:      a.Key(),
	}
	v.User, _ = a.User()
	v.Realm, _ = a.Realm()
	return v
}

// NewResolveCommand creates the resolve command
func NewResolveCommand(w *output.Writer) *cobra.Command {
	var realm, user string
	cmd := &cobra.Command{
		Use:   "resolve <url>",
		Short: "Show the canonical credential address for a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			addr, xe := newResolver().Resolve(args[0], credential.ResolveOptions{User: user, Realm: realm})
			if xe != nil {
				return xe
			}
			return w.WriteOK(format, newAddressView(addr))
		},
	}
	cmd.Flags().StringVar(&realm, "realm", "", "Authentication realm")
	cmd.Flags().StringVarP(&user, "user", "u", "", "Username")
	return cmd
}

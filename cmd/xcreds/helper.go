package main

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zx06/xcreds/internal/broker"
	"github.com/zx06/xcreds/internal/errors"
	"github.com/zx06/xcreds/internal/prompt"
)

// helperRequest is one git credential helper request.
// See git-credential(1), section INPUT/OUTPUT FORMAT.
type helperRequest struct {
	Protocol string
	Host     string
	Path     string
	Username string
	Password string
	URL      string
}

// parseHelperRequest reads key=value lines until a blank line or EOF.
// Unknown keys (wwwauth[], capability[] ...) are ignored. git does not send
// the challenge on store, so helper lookups never use a realm.
func parseHelperRequest(r io.Reader) (helperRequest, error) {
	var req helperRequest
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			break
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return helperRequest{}, errors.New(errors.CodeCfgInvalid, "invalid credential line", map[string]any{"key": key})
		}
		switch key {
		case "protocol":
			req.Protocol = value
		case "host":
			req.Host = value
		case "path":
			req.Path = value
		case "username":
			req.Username = value
		case "password":
			req.Password = value
		case "url":
			req.URL = value
		}
	}
	if err := sc.Err(); err != nil {
		return helperRequest{}, errors.Wrap(errors.CodeInternal, "failed to read credential request", nil, err)
	}
	if req.URL != "" {
		if err := req.applyURL(); err != nil {
			return helperRequest{}, err
		}
	}
	return req, nil
}

// applyURL fills protocol/host/path from url= unless they were given explicitly.
func (r *helperRequest) applyURL() error {
	u, err := url.Parse(r.URL)
	if err != nil {
		return errors.Wrap(errors.CodeUnsupportedScheme, "invalid credential url", nil, err)
	}
	if r.Protocol == "" {
		r.Protocol = u.Scheme
	}
	if r.Host == "" {
		r.Host = u.Host
	}
	if r.Path == "" {
		r.Path = strings.TrimPrefix(u.Path, "/")
	}
	if r.Username == "" && u.User != nil {
		r.Username = u.User.Username()
	}
	return nil
}

// URI renders the request as the URL handed to the broker.
func (r helperRequest) URI() string {
	u := url.URL{Scheme: r.Protocol, Host: r.Host}
	if r.Path != "" {
		u.Path = "/" + strings.TrimPrefix(r.Path, "/")
	}
	return u.String()
}

func writeHelperCredential(w io.Writer, user string, secret []byte) error {
	if strings.ContainsAny(user, "\n\x00") || strings.ContainsAny(string(secret), "\n\x00") {
		return errors.New(errors.CodeBackendFailed, "stored credential contains a newline or NUL", nil)
	}
	_, err := fmt.Fprintf(w, "username=%s\npassword=%s\n", user, secret)
	return err
}

// NewHelperCommand creates the git credential helper command.
//
//	git config credential.helper "xcreds helper"
func NewHelperCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:       "helper <get|store|erase>",
		Short:     "git credential helper (get|store|erase)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"get", "store", "erase"},
		RunE: func(cmd *cobra.Command, args []string) error {
			GlobalConfig.ProtocolMode = true
			logger := GlobalConfig.Logger

			req, err := parseHelperRequest(cmd.InOrStdin())
			if err != nil {
				return err
			}
			uri := req.URI()

			switch args[0] {
			case "get":
				// git prompts by itself on a miss
				s, err := openSession(cmd.Context(), prompt.Null{}, nil)
				if err != nil {
					return err
				}
				defer closeSession(s)
				user, secret, err := s.Broker.FindUserPassword(cmd.Context(), "", uri)
				if err != nil {
					if errors.HasCode(err, errors.CodeNotFound) || errors.HasCode(err, errors.CodeUnsupportedScheme) {
						logger.Debug("no credentials for git", "url", uri, "err", err)
						return nil
					}
					return err
				}
				return writeHelperCredential(cmd.OutOrStdout(), user, secret)

			case "store":
				if req.Username == "" || req.Password == "" {
					logger.Debug("incomplete credential, not storing", "url", uri)
					return nil
				}
				var confirm broker.Confirmer
				if yes {
					confirm = prompt.Assume(true)
				} else if tty, err := prompt.OpenTTY(); err == nil {
					defer tty.Close()
					confirm = newTerminal(tty, tty)
				} else {
					logger.Debug("no controlling terminal, cannot ask whether to save", "err", err)
				}
				s, err := openSession(cmd.Context(), prompt.Null{}, confirm)
				if err != nil {
					return err
				}
				defer closeSession(s)
				return s.Broker.AddPassword(cmd.Context(), "", []string{uri}, req.Username, []byte(req.Password))

			case "erase":
				logger.Debug("erase is not supported, ignoring", "url", uri)
				return nil

			default:
				return errors.New(errors.CodeCfgInvalid, "unknown helper operation", map[string]any{"operation": args[0]})
			}
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Save on store without asking")
	return cmd
}

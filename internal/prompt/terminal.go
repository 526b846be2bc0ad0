// Package prompt 提供终端交互：用户名/密码提示与 yes/no 确认。
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/zx06/xcreds/internal/credential"
	"github.com/zx06/xcreds/internal/errors"
)

// Mode 对应配置项 interactive。
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeAlways Mode = "always"
	ModeNever  Mode = "never"
)

type Options struct {
	In   io.Reader
	Out  io.Writer
	Mode Mode
	// Resolver 用于计算用户名提示的默认值（匹配规则的 username）。
	Resolver *credential.Resolver
}

// Terminal 是基于终端的密码提供者，同时实现 yes/no 确认。
type Terminal struct {
	in          *bufio.Reader
	fd          int
	isTTY       bool
	out         io.Writer
	interactive bool
	resolver    *credential.Resolver

	readPassword func(fd int) ([]byte, error)
}

func New(opts Options) *Terminal {
	t := &Terminal{
		in:           bufio.NewReader(opts.In),
		fd:           -1,
		out:          opts.Out,
		resolver:     opts.Resolver,
		readPassword: term.ReadPassword,
	}
	if f, ok := opts.In.(*os.File); ok {
		t.fd = int(f.Fd())
		t.isTTY = term.IsTerminal(t.fd)
	}
	if t.out == nil {
		t.out = io.Discard
	}
	if t.resolver == nil {
		t.resolver = credential.NewResolver(nil)
	}
	switch opts.Mode {
	case ModeAlways:
		t.interactive = true
	case ModeNever:
		t.interactive = false
	default:
		t.interactive = t.isTTY
	}
	return t
}

// OpenTTY 打开控制终端，供 stdin/stdout 被协议占用时（helper 模式）提示使用。
// 调用方负责关闭返回的文件。
func OpenTTY() (*os.File, error) {
	return os.OpenFile("/dev/tty", os.O_RDWR, 0)
}

func (t *Terminal) Interactive() bool { return t.interactive }

// FindUserPassword 提示输入用户名和密码。用户名默认取匹配规则的 username，
// 密码在终端上不回显。
func (t *Terminal) FindUserPassword(ctx context.Context, realm, uri string) (string, []byte, error) {
	if !t.interactive {
		return "", nil, errors.New(errors.CodePromptUnavailable, "http authorization required but session is not interactive", map[string]any{"realm": realm})
	}
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	def := ""
	if addr, xe := t.resolver.Resolve(uri, credential.ResolveOptions{Realm: realm}); xe == nil {
		def = addr.RuleUser()
		fmt.Fprintf(t.out, "http authorization required for %s\n", addr.String())
	} else {
		fmt.Fprintln(t.out, "http authorization required")
	}
	if realm != "" {
		fmt.Fprintf(t.out, "realm: %s\n", realm)
	}

	label := "user: "
	if def != "" {
		label = fmt.Sprintf("user [%s]: ", def)
	}
	user, err := t.ask(label)
	if err != nil {
		return "", nil, err
	}
	if user == "" {
		user = def
	}

	secret, err := t.ReadSecret("password: ")
	if err != nil {
		return "", nil, err
	}
	return user, secret, nil
}

// AddPassword 终端不保存任何东西。
func (t *Terminal) AddPassword(context.Context, string, []string, string, []byte) error {
	return nil
}

// Confirm 询问 yes/no；空回答取 def，无法识别的回答重新询问。
func (t *Terminal) Confirm(question string, def bool) (bool, error) {
	for {
		ans, err := t.ask(question + " ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(ans) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(t.out, "unrecognized response")
	}
}

func (t *Terminal) ask(label string) (string, error) {
	fmt.Fprint(t.out, label)
	line, err := t.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", errors.Wrap(errors.CodePromptUnavailable, "failed to read response", nil, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadSecret 读取一行不回显的输入；输入不是终端时按普通行读取。
func (t *Terminal) ReadSecret(label string) ([]byte, error) {
	if !t.isTTY {
		s, err := t.ask(label)
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	}
	fmt.Fprint(t.out, label)
	b, err := t.readPassword(t.fd)
	fmt.Fprintln(t.out)
	if err != nil {
		return nil, errors.Wrap(errors.CodePromptUnavailable, "failed to read password", nil, err)
	}
	return b, nil
}

package credential

import (
	"net"
	"net/url"
	"strings"

	"github.com/zx06/xcreds/internal/errors"
)

// ResolveOptions 携带可选的显式用户名与 realm；空串表示未提供。
type ResolveOptions struct {
	User  string
	Realm string
}

// Resolver 把原始 URI 合并为规范化 Address。
// Rules 为 nil 时不做前缀合并。
type Resolver struct {
	Rules RuleSource
}

func NewResolver(rules RuleSource) *Resolver {
	return &Resolver{Rules: rules}
}

// Resolve 按以下顺序构造 Address：
//  1. 解析 rawURI，丢弃 query/fragment 与 userinfo
//  2. 查询最匹配的 auth 规则；命中时用规则前缀覆盖 host/path
//  3. 显式 user 最后写入，因此总是优先于规则隐含的用户名
//  4. 写入 realm
//
// 仅 scheme 无法识别时返回 CodeUnsupportedScheme。
func (r *Resolver) Resolve(rawURI string, opts ResolveOptions) (Address, *errors.XError) {
	u, err := url.Parse(strings.TrimSpace(rawURI))
	if err != nil {
		return Address{}, errors.Wrap(errors.CodeUnsupportedScheme, "cannot classify url scheme", map[string]any{"uri": redactURI(rawURI)}, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if !SupportedScheme(scheme) {
		return Address{}, errors.New(errors.CodeUnsupportedScheme, "unsupported url scheme", map[string]any{"scheme": u.Scheme})
	}

	addr := Address{
		scheme: scheme,
		host:   u.Hostname(),
		port:   u.Port(),
		path:   strings.TrimPrefix(u.EscapedPath(), "/"),
	}

	if r != nil && r.Rules != nil {
		if rule, ok := r.Rules.BestRuleFor(addr.lookupURI(), opts.User); ok {
			addr.applyPrefix(rule.Prefix)
			addr.ruleUser = rule.Username
		}
	}

	if opts.User != "" {
		addr.user = opts.User
		addr.hasUser = true
	}
	if opts.Realm != "" {
		addr.realm = opts.Realm
		addr.hasRealm = true
	}
	return addr, nil
}

// SupportedScheme 报告 scheme 是否可以映射到存储协议。
func SupportedScheme(scheme string) bool {
	switch strings.ToLower(scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}

func (a *Address) applyPrefix(prefix string) {
	if _, rest, ok := strings.Cut(prefix, "://"); ok {
		prefix = rest
	}
	host, path, _ := strings.Cut(prefix, "/")
	if i := strings.LastIndex(host, "@"); i >= 0 {
		host = host[i+1:]
	}
	// 前缀里的端口单独拆出，保证 Host() 始终是纯主机名
	// "*" 原样保留：所有命中该规则的 URL 共用同一条目
	if h, p, err := net.SplitHostPort(host); err == nil {
		host = h
		a.port = p
	}
	a.host = host
	a.path = path
}

// lookupURI 是交给规则表匹配的 URI（不含 query/fragment/userinfo）。
func (a Address) lookupURI() string {
	return a.scheme + "://" + a.hostPort() + "/" + a.path
}

func redactURI(raw string) string {
	if i := strings.Index(raw, "@"); i >= 0 {
		if j := strings.Index(raw, "://"); j >= 0 && j < i {
			return raw[:j+3] + "***" + raw[i:]
		}
	}
	return raw
}

package credential

import (
	"net"
	"strings"
)

// Address 是凭据的规范化地址，作为 backend 查找/存储的键。
// 只能由 Resolver 构造，构造后不可变；从不携带 query 与 fragment。
type Address struct {
	scheme string
	host   string
	path   string
	port   string

	user    string
	hasUser bool

	realm    string
	hasRealm bool

	// ruleUser 是命中的 auth 规则隐含的用户名，不参与 User()。
	ruleUser string
}

func (a Address) Scheme() string { return a.scheme }
func (a Address) Host() string   { return a.host }

// Path 不含前导 "/"。
func (a Address) Path() string { return a.path }

// Port 为空表示 URL 未显式给出端口。
func (a Address) Port() string { return a.port }

// User 只返回调用方显式给出的用户名。
func (a Address) User() (string, bool) { return a.user, a.hasUser }

func (a Address) Realm() (string, bool) { return a.realm, a.hasRealm }

// RuleUser 返回命中规则配置的 username（可能为空）。
func (a Address) RuleUser() string { return a.ruleUser }

// WithUser 返回设置了显式用户名的副本，原值不变。
func (a Address) WithUser(user string) Address {
	a.user = user
	a.hasUser = user != ""
	return a
}

// Key 渲染稳定的存储键：scheme://host[:port]/path，realm 存在时追加 " [realm]"。
// 用户名不参与 Key，同一地址下的账号由 backend 自行区分。
func (a Address) Key() string {
	var b strings.Builder
	b.WriteString(a.scheme)
	b.WriteString("://")
	b.WriteString(a.hostPort())
	b.WriteString("/")
	b.WriteString(a.path)
	if a.hasRealm {
		b.WriteString(" [")
		b.WriteString(a.realm)
		b.WriteString("]")
	}
	return b.String()
}

// Label 是写入存储条目的人类可读名称。
func (a Address) Label(user string) string {
	return "xcreds (" + user + "@" + a.host + ")"
}

// String 渲染不含任何秘密的 URL 形式，用于日志与输出。
func (a Address) String() string {
	var b strings.Builder
	b.WriteString(a.scheme)
	b.WriteString("://")
	if a.hasUser {
		b.WriteString(a.user)
		b.WriteString("@")
	}
	b.WriteString(a.hostPort())
	b.WriteString("/")
	b.WriteString(a.path)
	return b.String()
}

func (a Address) hostPort() string {
	if a.port == "" {
		if strings.Contains(a.host, ":") {
			return "[" + a.host + "]"
		}
		return a.host
	}
	return net.JoinHostPort(a.host, a.port)
}

package backend

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/zx06/xcreds/internal/credential"
)

// ErrNoItem 由 ItemStore.Update 返回，表示没有匹配的条目可更新。
var ErrNoItem = stderrors.New("no matching item")

// Item 是持久化条目的逻辑形状，键为
// (server, path, protocol, port, account, security domain)。
type Item struct {
	Server         string
	Path           string
	Protocol       string
	Port           int
	Account        string
	SecurityDomain string
	Label          string
	Secret         []byte
	Modified       time.Time
}

// LogValue 屏蔽 secret。
func (it Item) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("label", it.Label),
		slog.String("server", it.Server),
		slog.String("path", it.Path),
		slog.String("protocol", it.Protocol),
		slog.Int("port", it.Port),
		slog.String("account", it.Account),
		slog.String("security_domain", it.SecurityDomain),
		slog.String("secret", "***"),
	)
}

// Query 描述查找条件。Port 为 0、HasAccount 为 false、HasDomain 为 false
// 时对应字段不参与匹配；HasAccount 为 true 时空 Account 只匹配空账号条目。
type Query struct {
	Server         string
	Path           string
	Protocol       string
	Port           int
	Account        string
	HasAccount     bool
	SecurityDomain string
	HasDomain      bool
}

// Matches 报告 it 是否满足 q。
func (q Query) Matches(it Item) bool {
	if it.Server != q.Server || it.Path != q.Path || it.Protocol != q.Protocol {
		return false
	}
	if q.Port != 0 && it.Port != q.Port {
		return false
	}
	if q.HasAccount && it.Account != q.Account {
		return false
	}
	if q.HasDomain && it.SecurityDomain != q.SecurityDomain {
		return false
	}
	return true
}

// Key 渲染不含账号的条目键：protocol://server[:port]/path [domain]。
func (q Query) Key() string {
	return itemKey(q.Protocol, q.Server, q.Port, q.Path, q.SecurityDomain, q.HasDomain)
}

// Key 与 Query.Key 一致；条目总是带 security domain（可能为空）。
func (it Item) Key() string {
	return itemKey(it.Protocol, it.Server, it.Port, it.Path, it.SecurityDomain, it.SecurityDomain != "")
}

func itemKey(protocol, server string, port int, path, domain string, hasDomain bool) string {
	var b strings.Builder
	b.WriteString(protocol)
	b.WriteString("://")
	if port != 0 {
		b.WriteString(net.JoinHostPort(server, strconv.Itoa(port)))
	} else {
		b.WriteString(server)
	}
	b.WriteString("/")
	b.WriteString(path)
	if hasDomain {
		b.WriteString(" [")
		b.WriteString(domain)
		b.WriteString("]")
	}
	return b.String()
}

// QueryFor 把地址映射为查找条件；账号只在地址带显式用户时参与匹配。
func QueryFor(addr credential.Address) Query {
	q := Query{
		Server:   addr.Host(),
		Path:     addr.Path(),
		Protocol: addr.Scheme(),
		Port:     portNumber(addr.Port()),
	}
	if user, ok := addr.User(); ok {
		q.Account = user
		q.HasAccount = true
	}
	if realm, ok := addr.Realm(); ok {
		q.SecurityDomain = realm
		q.HasDomain = true
	}
	return q
}

// SaveQueryFor 是保存时的匹配条件：账号总是精确匹配，
// 空用户名也只会覆盖空账号的条目。
func SaveQueryFor(addr credential.Address, user string) Query {
	q := QueryFor(addr)
	q.Account = user
	q.HasAccount = true
	return q
}

// ItemFor 构造保存用的完整条目。
func ItemFor(addr credential.Address, cred credential.Credential, now time.Time) Item {
	realm, _ := addr.Realm()
	return Item{
		Server:         addr.Host(),
		Path:           addr.Path(),
		Protocol:       addr.Scheme(),
		Port:           portNumber(addr.Port()),
		Account:        cred.User,
		SecurityDomain: realm,
		Label:          addr.Label(cred.User),
		Secret:         cred.Secret,
		Modified:       now,
	}
}

func portNumber(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// ItemStore 是条目级存储接口（对应系统钥匙串的 copy/update/add 调用）。
type ItemStore interface {
	// Lookup 返回最近修改的匹配条目；未找到返回 false 且 err 为 nil。
	Lookup(ctx context.Context, q Query) (Item, bool, error)
	// Update 覆盖所有匹配条目；没有匹配时返回 ErrNoItem。
	Update(ctx context.Context, q Query, it Item) error
	// Add 新建条目。
	Add(ctx context.Context, it Item) error
}

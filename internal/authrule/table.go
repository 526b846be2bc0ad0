// Package authrule 实现 auth 前缀规则表的最佳匹配。
// 规则表由配置文件提供，本包只读使用。
package authrule

import (
	"net/url"
	"sort"
	"strings"

	"github.com/zx06/xcreds/internal/credential"
)

const defaultScheme = "https"

// Table 是按名称排序后的规则集合，实现 credential.RuleSource。
type Table struct {
	rules []credential.Rule
}

var _ credential.RuleSource = (*Table)(nil)

// New 复制并按名称排序规则，保证同长度前缀的平局结果稳定。
func New(rules []credential.Rule) *Table {
	cp := make([]credential.Rule, len(rules))
	copy(cp, rules)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Name < cp[j].Name })
	return &Table{rules: cp}
}

// BestRuleFor 选出与 uri 最匹配的规则：
//   - user 非空且规则配置了不同 username 时跳过
//   - 前缀 "*" 匹配一切；带 scheme:// 的前缀只匹配该 scheme，
//     否则按 Schemes（默认 https）匹配
//   - 最长前缀胜出；等长时带 username 的规则优先于不带的
func (t *Table) BestRuleFor(uri, user string) (credential.Rule, bool) {
	if t == nil {
		return credential.Rule{}, false
	}
	scheme, hostpath, ok := strings.Cut(uri, "://")
	if !ok {
		return credential.Rule{}, false
	}
	scheme = strings.ToLower(scheme)

	var (
		best     credential.Rule
		found    bool
		bestLen  int
		bestUser string
	)
	for _, r := range t.rules {
		if user != "" && r.Username != "" && r.Username != user {
			continue
		}
		prefix, schemes, ok := splitPrefix(r, user)
		if !ok {
			continue
		}
		if prefix != "*" && !strings.HasPrefix(hostpath, prefix) {
			continue
		}
		if !contains(schemes, scheme) {
			continue
		}
		if len(prefix) > bestLen || (len(prefix) == bestLen && bestUser == "" && r.Username != "") {
			best, found = r, true
			bestLen = len(prefix)
			bestUser = r.Username
		}
	}
	return best, found
}

// splitPrefix 返回去掉 scheme 与 userinfo 的前缀，以及允许的 scheme 列表。
// 前缀中的用户名必须与调用方的 user 一致，否则规则不适用。
func splitPrefix(r credential.Rule, user string) (string, []string, bool) {
	prefix := strings.TrimSpace(r.Prefix)
	if prefix == "" {
		return "", nil, false
	}
	schemes := r.Schemes
	if s, rest, ok := strings.Cut(prefix, "://"); ok {
		schemes = []string{strings.ToLower(s)}
		prefix = rest
	}
	if at := strings.Index(prefix, "@"); at >= 0 && at < indexOrLen(prefix, "/") {
		prefixUser, err := url.PathUnescape(prefix[:at])
		if err != nil {
			return "", nil, false
		}
		if i := strings.Index(prefixUser, ":"); i >= 0 {
			prefixUser = prefixUser[:i]
		}
		if prefixUser != user {
			return "", nil, false
		}
		prefix = prefix[at+1:]
	}
	if len(schemes) == 0 {
		schemes = []string{defaultScheme}
	}
	return prefix, schemes, true
}

func indexOrLen(s, sep string) int {
	if i := strings.Index(s, sep); i >= 0 {
		return i
	}
	return len(s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// ParseSchemes 把 "https http" 形式的配置拆成列表。
func ParseSchemes(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

package config

import (
	"github.com/zx06/xcreds/internal/authrule"
	"github.com/zx06/xcreds/internal/credential"
)

// RuleTable 把 auth 配置组转换为只读规则表。
func (r Resolved) RuleTable() *authrule.Table {
	rules := make([]credential.Rule, 0, len(r.Auth))
	for name, g := range r.Auth {
		rules = append(rules, credential.Rule{
			Name:     name,
			Prefix:   g.Prefix,
			Username: g.Username,
			Schemes:  authrule.ParseSchemes(g.Schemes),
		})
	}
	return authrule.New(rules)
}

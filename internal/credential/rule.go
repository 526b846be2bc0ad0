package credential

// Rule 是宿主 auth 配置中的一条 URL 前缀规则（只读）。
type Rule struct {
	Name     string
	Prefix   string
	Username string
	Schemes  []string
}

// RuleSource 返回与 uri 最匹配的规则；user 为空表示调用方未指定用户。
type RuleSource interface {
	BestRuleFor(uri, user string) (Rule, bool)
}

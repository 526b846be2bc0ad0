package credential

import (
	"crypto/subtle"
	"log/slog"
)

// Credential 是一次查找或输入得到的用户名与密码。
// Secret 为不透明字节，禁止以明文出现在日志中。
type Credential struct {
	User   string
	Secret []byte
}

// Empty 报告 secret 是否为空。
func (c Credential) Empty() bool { return len(c.Secret) == 0 }

// SameSecret 以常量时间比较 secret。
func (c Credential) SameSecret(secret []byte) bool {
	if len(c.Secret) != len(secret) {
		return false
	}
	return subtle.ConstantTimeCompare(c.Secret, secret) == 1
}

func (c Credential) String() string {
	return "Credential{User:" + c.User + " Secret:***}"
}

// LogValue 让 slog 只输出用户名。
func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user", c.User),
		slog.String("secret", "***"),
	)
}

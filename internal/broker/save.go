package broker

import (
	"context"

	"github.com/zx06/xcreds/internal/credential"
)

// OfferSave 询问后把凭据写入每个 backend。
//
// 空 secret、已存储相同 secret、非交互会话、用户拒绝时都直接返回 nil。
// 写入是尽力而为：单个 backend 失败只记告警，不影响其余 backend。
// 只有地址无法解析时返回错误。
func (b *Broker) OfferSave(ctx context.Context, realm, uri, user string, secret []byte) error {
	if len(secret) == 0 {
		return nil
	}

	addr, xe := b.resolver.Resolve(uri, credential.ResolveOptions{User: user, Realm: realm})
	if xe != nil {
		return xe
	}

	if b.unchanged(ctx, addr, secret) {
		b.logger.Debug("stored password unchanged, not saving", "address", addr.String())
		return nil
	}

	if !b.confirmSave() {
		return nil
	}

	cred := credential.Credential{User: user, Secret: secret}
	for _, e := range b.backends {
		if err := e.Backend.Save(ctx, addr, cred); err != nil {
			b.backendFailed(e.Name, "save", err)
			continue
		}
		b.logger.Debug("saved credentials", "backend", e.Name, "address", addr.String())
	}
	return nil
}

// unchanged 报告第一个持有该地址条目的 backend 是否存着完全相同的 secret。
func (b *Broker) unchanged(ctx context.Context, addr credential.Address, secret []byte) bool {
	for _, e := range b.backends {
		cred, ok, err := e.Backend.Find(ctx, addr)
		if err != nil {
			b.backendFailed(e.Name, "find", err)
			continue
		}
		if ok {
			return cred.SameSecret(secret)
		}
	}
	return false
}

func (b *Broker) confirmSave() bool {
	if len(b.backends) == 0 {
		b.logger.Debug("no credential backends available, not saving")
		return false
	}
	if b.confirm == nil || !b.confirm.Interactive() {
		b.logger.Debug("session is not interactive, not saving password")
		return false
	}
	ok, err := b.confirm.Confirm(saveQuestion, true)
	if err != nil {
		b.logger.Warn("failed to ask whether to save password", "err", err)
		return false
	}
	if !ok {
		b.logger.Debug("saving password declined")
	}
	return ok
}

package backend

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/zx06/xcreds/internal/credential"
	"github.com/zx06/xcreds/internal/log"
)

// ItemBackend 把 ItemStore 适配为 credential.Backend，并实现 upsert。
type ItemBackend struct {
	name   string
	store  ItemStore
	logger *slog.Logger
	now    func() time.Time
}

var _ credential.Backend = (*ItemBackend)(nil)

func NewItemBackend(name string, store ItemStore, logger *slog.Logger) *ItemBackend {
	if logger == nil {
		logger = log.Discard()
	}
	return &ItemBackend{name: name, store: store, logger: logger, now: time.Now}
}

func (b *ItemBackend) Name() string { return b.name }

// Location 返回底层存储的文件位置；不落盘的存储返回空串。
func (b *ItemBackend) Location() string {
	if p, ok := b.store.(interface{ Path() string }); ok {
		return p.Path()
	}
	return ""
}

// Close 关闭底层存储（如果它持有资源）。
func (b *ItemBackend) Close() error {
	if c, ok := b.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (b *ItemBackend) Find(ctx context.Context, addr credential.Address) (credential.Credential, bool, error) {
	q := QueryFor(addr)
	b.logger.Debug("querying credential store", "backend", b.name, "key", q.Key(), "account", q.Account)

	it, ok, err := b.store.Lookup(ctx, q)
	if err != nil {
		return credential.Credential{}, false, err
	}
	if !ok || len(it.Secret) == 0 {
		b.logger.Debug("no matching credential item", "backend", b.name, "key", q.Key())
		return credential.Credential{}, false, nil
	}
	b.logger.Debug("using credential item", "backend", b.name, "label", it.Label, "modified", it.Modified)
	return credential.Credential{User: it.Account, Secret: it.Secret}, true, nil
}

// Save 先尝试更新匹配 (地址, 账号) 的条目，失败或不存在时新建。
func (b *ItemBackend) Save(ctx context.Context, addr credential.Address, cred credential.Credential) error {
	q := SaveQueryFor(addr, cred.User)
	it := ItemFor(addr, cred, b.now())
	b.logger.Debug("saving credential item", "backend", b.name, "item", it)

	err := b.store.Update(ctx, q, it)
	if err == nil {
		return nil
	}
	if stderrors.Is(err, ErrNoItem) {
		b.logger.Debug("adding new credential item", "backend", b.name, "key", it.Key())
	} else {
		b.logger.Debug("adding new credential item after failed update", "backend", b.name, "key", it.Key(), "err", err)
	}
	if err := b.store.Add(ctx, it); err != nil {
		return fmt.Errorf("add item: %w", err)
	}
	return nil
}

// Package broker 在宿主的交互式密码提示之前插入安全存储查询，
// 并在用户输入新密码后提供保存。
package broker

import (
	"context"
	"log/slog"

	"github.com/zx06/xcreds/internal/backend"
	"github.com/zx06/xcreds/internal/credential"
	"github.com/zx06/xcreds/internal/errors"
	"github.com/zx06/xcreds/internal/log"
)

// Provider 是宿主的密码提供者接口；Broker 自身也实现它。
type Provider interface {
	// FindUserPassword 返回 realm/uri 对应的用户名和密码。
	FindUserPassword(ctx context.Context, realm, uri string) (string, []byte, error)
	// AddPassword 让提供者记住一组凭据。
	AddPassword(ctx context.Context, realm string, uris []string, user string, secret []byte) error
}

// Confirmer 是宿主的 yes/no 询问通道。
type Confirmer interface {
	Interactive() bool
	Confirm(question string, def bool) (bool, error)
}

const saveQuestion = "would you like to save this password? (Y/n)"

// Options 配置 Broker。Seen 为空时新建一个会话级 SeenSet。
type Options struct {
	Backends  []backend.Entry
	Resolver  *credential.Resolver
	Confirmer Confirmer
	Seen      *SeenSet
	Logger    *slog.Logger
}

// Broker 组合宿主的基础提供者，先查询 backend 再回退到交互提示。
type Broker struct {
	base     Provider
	backends []backend.Entry
	resolver *credential.Resolver
	confirm  Confirmer
	seen     *SeenSet
	logger   *slog.Logger
}

var _ Provider = (*Broker)(nil)

func New(base Provider, opts Options) *Broker {
	b := &Broker{
		base:     base,
		backends: opts.Backends,
		resolver: opts.Resolver,
		confirm:  opts.Confirmer,
		seen:     opts.Seen,
		logger:   opts.Logger,
	}
	if b.resolver == nil {
		b.resolver = credential.NewResolver(nil)
	}
	if b.seen == nil {
		b.seen = NewSeenSet()
	}
	if b.logger == nil {
		b.logger = log.Discard()
	}
	return b
}

// Seen 返回本会话的 SeenSet。
func (b *Broker) Seen() *SeenSet { return b.seen }

// FindUserPassword 每个 (realm, uri) 在本会话中最多查询一次 backend：
// 查询前先记入 SeenSet，因此同一对的第二次调用（通常意味着上次的密码
// 被拒绝）直接走交互提示。未命中时提示得到的凭据会立即尝试保存。
func (b *Broker) FindUserPassword(ctx context.Context, realm, uri string) (string, []byte, error) {
	if b.seen.Mark(realm, uri) {
		cred, ok, err := b.lookup(ctx, realm, uri)
		if err != nil {
			return "", nil, err
		}
		if ok {
			return cred.User, cred.Secret, nil
		}
	} else {
		b.logger.Debug("credentials already queried this session, prompting", "uri", uri, "realm", realm)
	}

	user, secret, err := b.base.FindUserPassword(ctx, realm, uri)
	if err != nil {
		return "", nil, err
	}

	// 宿主没有"密码已验证可用"的信号，只能在每次新输入后就提供保存
	if err := b.OfferSave(ctx, realm, uri, user, secret); err != nil {
		return "", nil, err
	}
	return user, secret, nil
}

// AddPassword 先交给基础提供者，再走保存流程（只用第一个 uri）。
func (b *Broker) AddPassword(ctx context.Context, realm string, uris []string, user string, secret []byte) error {
	if err := b.base.AddPassword(ctx, realm, uris, user, secret); err != nil {
		return err
	}
	if len(uris) == 0 {
		return nil
	}
	return b.OfferSave(ctx, realm, uris[0], user, secret)
}

// lookup 按注册顺序查询 backend，第一个非空 secret 胜出。
// 只有地址无法解析（UnsupportedScheme）会返回错误。
func (b *Broker) lookup(ctx context.Context, realm, uri string) (credential.Credential, bool, error) {
	addr, xe := b.resolver.Resolve(uri, credential.ResolveOptions{Realm: realm})
	if xe != nil {
		return credential.Credential{}, false, xe
	}
	for _, e := range b.backends {
		cred, ok, err := e.Backend.Find(ctx, addr)
		if err != nil {
			b.backendFailed(e.Name, "find", err)
			continue
		}
		if ok && !cred.Empty() {
			b.logger.Debug("found credentials", "backend", e.Name, "address", addr.String(), "cred", cred)
			return cred, true, nil
		}
	}
	return credential.Credential{}, false, nil
}

// backendFailed 记录 backend 失败；延迟加载失败按不可用处理，只记 debug。
func (b *Broker) backendFailed(name, op string, err error) {
	berr := &credential.BackendError{Backend: name, Op: op, Err: err}
	if errors.HasCode(err, errors.CodeBackendUnavailable) {
		b.logger.Debug("credential backend unavailable", "backend", name, "err", berr)
		return
	}
	switch op {
	case "save":
		b.logger.Warn("failed to save password to credential backend", "backend", name, "err", berr)
	default:
		b.logger.Warn("failed to query credential backend", "backend", name, "err", berr)
	}
}

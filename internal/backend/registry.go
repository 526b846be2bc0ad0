package backend

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/zx06/xcreds/internal/credential"
	"github.com/zx06/xcreds/internal/log"
)

// Options 是传给各 backend 构造函数的运行参数。
type Options struct {
	Logger *slog.Logger
	// Service 是系统钥匙串中的 service 名前缀。
	Service string
	// SQLitePath 是 sqlite backend 的数据库文件路径（为空则使用默认位置）。
	SQLitePath string
}

// Factory 描述一种 backend 及其构造方式。
//
// New 返回可选实例：(nil, false, nil) 表示当前环境不提供该 backend；
// err 非空表示平台依赖加载失败。两者都只会被 Registry 记为 debug 日志。
type Factory struct {
	Name string
	// Platforms 为空表示所有平台可用（取值同 runtime.GOOS）。
	Platforms []string
	New       func(ctx context.Context, opts Options) (credential.Backend, bool, error)
}

func (f Factory) supports(platform string) bool {
	if len(f.Platforms) == 0 {
		return true
	}
	for _, p := range f.Platforms {
		if p == platform {
			return true
		}
	}
	return false
}

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register 由各 backend 包在 init 中调用。
func Register(f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if f.Name == "" {
		panic("backend.Register: empty name")
	}
	if f.New == nil {
		panic("backend.Register: nil constructor")
	}
	if _, exists := factories[f.Name]; exists {
		panic("backend.Register: duplicate backend: " + f.Name)
	}
	factories[f.Name] = f
}

func Get(name string) (Factory, bool) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := factories[name]
	return f, ok
}

// RegisteredNames 按字母序返回已注册的 backend 名称。
func RegisteredNames() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Entry 是一个已加载的 backend。Name 仅用于诊断输出。
type Entry struct {
	Name    string
	Backend credential.Backend
}

// Registry 按声明顺序构造 backend 列表。
type Registry struct {
	order []string
	opts  Options
}

func NewRegistry(order []string, opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	return &Registry{order: append([]string(nil), order...), opts: opts}
}

// Available 依次尝试构造 backend，跳过未注册、不支持当前平台或加载失败的，
// 从不返回错误；结果为空时 broker 退化为"总是询问、从不保存"。
func (r *Registry) Available(ctx context.Context, platform string) []Entry {
	logger := r.opts.Logger
	entries := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		f, ok := Get(name)
		if !ok {
			logger.Debug("unknown credential backend", "backend", name)
			continue
		}
		if !f.supports(platform) {
			logger.Debug("credential backend not supported on platform", "backend", name, "platform", platform)
			continue
		}
		b, ok, err := f.New(ctx, r.opts)
		if err != nil {
			logger.Debug("failed loading credential backend", "backend", name, "err", err)
			continue
		}
		if !ok || b == nil {
			logger.Debug("credential backend not present", "backend", name)
			continue
		}
		entries = append(entries, Entry{Name: name, Backend: b})
	}
	return entries
}

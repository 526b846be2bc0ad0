package app

import (
	"context"
	"io"
	"log/slog"
	"runtime"

	"github.com/zx06/xcreds/internal/backend"
	"github.com/zx06/xcreds/internal/broker"
	"github.com/zx06/xcreds/internal/config"
	"github.com/zx06/xcreds/internal/credential"
	"github.com/zx06/xcreds/internal/errors"
	"github.com/zx06/xcreds/internal/log"
)

// Session 是一次命令执行内的 broker 及其 backend。
type Session struct {
	Broker   *broker.Broker
	Resolver *credential.Resolver
	Backends []backend.Entry
}

type SessionOptions struct {
	Resolved  config.Resolved
	Base      broker.Provider
	Confirmer broker.Confirmer
	Logger    *slog.Logger

	// Platform 为空时取 runtime.GOOS。
	Platform string
}

// OpenSession 校验 backend 名称、加载可用 backend 并组装 broker。
// 未注册的 backend 名称是配置错误；注册了但当前不可用的只记 debug。
func OpenSession(ctx context.Context, opts SessionOptions) (*Session, *errors.XError) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	for _, name := range opts.Resolved.Backends {
		if _, ok := backend.Get(name); !ok {
			return nil, errors.New(errors.CodeCfgInvalid, "unknown credential backend", map[string]any{
				"backend":   name,
				"supported": backend.RegisteredNames(),
			})
		}
	}
	platform := opts.Platform
	if platform == "" {
		platform = runtime.GOOS
	}

	reg := backend.NewRegistry(opts.Resolved.Backends, backend.Options{
		Logger:     logger,
		SQLitePath: opts.Resolved.SQLitePath,
	})
	entries := reg.Available(ctx, platform)
	if len(entries) == 0 && len(opts.Resolved.Backends) > 0 {
		logger.Debug("no credential backend available, passwords will not be saved")
	}

	resolver := credential.NewResolver(opts.Resolved.RuleTable())
	b := broker.New(opts.Base, broker.Options{
		Backends:  entries,
		Resolver:  resolver,
		Confirmer: opts.Confirmer,
		Logger:    logger,
	})
	return &Session{Broker: b, Resolver: resolver, Backends: entries}, nil
}

// Close 关闭持有资源的 backend（如 sqlite 连接），返回第一个错误。
func (s *Session) Close() error {
	var errs []error
	for _, e := range s.Backends {
		if c, ok := e.Backend.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Holds 报告是否有 backend 在 addr 下保存着与 secret 相同的密码。
func (s *Session) Holds(ctx context.Context, addr credential.Address, secret []byte) bool {
	for _, e := range s.Backends {
		cred, ok, err := e.Backend.Find(ctx, addr)
		if err == nil && ok && cred.SameSecret(secret) {
			return true
		}
	}
	return false
}

// BackendInfo 是 backends 命令的一行输出。
type BackendInfo struct {
	Name       string `json:"name" yaml:"name"`
	Configured bool   `json:"configured" yaml:"configured"`
	Order      int    `json:"order,omitempty" yaml:"order,omitempty"`
	Available  bool   `json:"available" yaml:"available"`
	// Location 是已加载 backend 的存储位置（如 sqlite 文件路径）。
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
}

type BackendList []BackendInfo

func (l BackendList) ToTableData() ([]string, []map[string]any, bool) {
	rows := make([]map[string]any, 0, len(l))
	for _, b := range l {
		order := any(nil)
		if b.Order > 0 {
			order = b.Order
		}
		rows = append(rows, map[string]any{
			"name":       b.Name,
			"configured": b.Configured,
			"order":      order,
			"available":  b.Available,
			"location":   b.Location,
		})
	}
	return []string{"name", "configured", "order", "available", "location"}, rows, true
}

// BackendList 列出所有已注册的 backend：配置顺序中的在前，其余按名称排序。
func (s *Session) BackendList(configured []string) BackendList {
	loaded := make(map[string]bool, len(s.Backends))
	locations := make(map[string]string, len(s.Backends))
	for _, e := range s.Backends {
		loaded[e.Name] = true
		if l, ok := e.Backend.(interface{ Location() string }); ok {
			locations[e.Name] = l.Location()
		}
	}
	out := make(BackendList, 0, len(configured))
	seen := make(map[string]bool, len(configured))
	for i, name := range configured {
		seen[name] = true
		out = append(out, BackendInfo{Name: name, Configured: true, Order: i + 1, Available: loaded[name], Location: locations[name]})
	}
	for _, name := range backend.RegisteredNames() {
		if !seen[name] {
			out = append(out, BackendInfo{Name: name})
		}
	}
	return out
}

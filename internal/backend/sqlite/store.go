// Package sqlite 把凭据条目保存在本地 SQLite 文件中。
//
// 该 backend 不做加密，文件以 0600 权限创建；需要静态加密时
// 应使用 keyring backend。默认不启用，需在配置 backends 中声明。
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/zx06/xcreds/internal/backend"
	"github.com/zx06/xcreds/internal/backend/sqlite/migrations"
	"github.com/zx06/xcreds/internal/credential"
)

const Name = "sqlite"

func init() {
	backend.Register(backend.Factory{Name: Name, New: newBackend})
}

func newBackend(_ context.Context, opts backend.Options) (credential.Backend, bool, error) {
	s, err := Open(opts.SQLitePath)
	if err != nil {
		return nil, false, err
	}
	return backend.NewItemBackend(Name, s, opts.Logger), true, nil
}

// DefaultPath 返回 $HOME/.config/xcreds/credentials.db。
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "xcreds", "credentials.db"), nil
}

// Store 实现 backend.ItemStore。
type Store struct {
	db   *sql.DB
	path string
}

var _ backend.ItemStore = (*Store)(nil)

// Open 打开（必要时创建）数据库并执行迁移。path 为空时使用 DefaultPath。
func Open(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	// 先以 0600 创建文件，驱动打开时不会再用默认权限新建
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("creating database file: %w", err)
	}
	f.Close()
	if err := os.Chmod(path, 0o600); err != nil {
		return nil, fmt.Errorf("restricting database file permissions: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// 单进程同步调用，一个连接即可
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path 是数据库文件路径，backends 命令会显示它。
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// where 把 Query 转成 WHERE 子句；未设置的可选字段不参与匹配。
func where(q backend.Query) (string, []any) {
	conds := []string{"server = ?", "path = ?", "protocol = ?"}
	args := []any{q.Server, q.Path, q.Protocol}
	if q.Port != 0 {
		conds = append(conds, "port = ?")
		args = append(args, q.Port)
	}
	if q.HasAccount {
		conds = append(conds, "account = ?")
		args = append(args, q.Account)
	}
	if q.HasDomain {
		conds = append(conds, "security_domain = ?")
		args = append(args, q.SecurityDomain)
	}
	return strings.Join(conds, " AND "), args
}

func (s *Store) Lookup(ctx context.Context, q backend.Query) (backend.Item, bool, error) {
	cond, args := where(q)
	row := s.db.QueryRowContext(ctx, `
		SELECT server, path, protocol, port, account, security_domain, label, secret, modified_ns
		FROM items WHERE `+cond+`
		ORDER BY modified_ns DESC, id DESC LIMIT 1
	`, args...)

	var (
		it         backend.Item
		modifiedNS int64
	)
	if err := row.Scan(&it.Server, &it.Path, &it.Protocol, &it.Port, &it.Account,
		&it.SecurityDomain, &it.Label, &it.Secret, &modifiedNS); err != nil {
		if err == sql.ErrNoRows {
			return backend.Item{}, false, nil
		}
		return backend.Item{}, false, fmt.Errorf("scanning item: %w", err)
	}
	it.Modified = time.Unix(0, modifiedNS).UTC()
	return it, true, nil
}

func (s *Store) Update(ctx context.Context, q backend.Query, it backend.Item) error {
	cond, args := where(q)
	res, err := s.db.ExecContext(ctx, `
		UPDATE items SET label = ?, secret = ?, modified_ns = ?
		WHERE `+cond,
		append([]any{it.Label, it.Secret, it.Modified.UnixNano()}, args...)...)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	if n == 0 {
		return backend.ErrNoItem
	}
	return nil
}

func (s *Store) Add(ctx context.Context, it backend.Item) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (server, path, protocol, port, account, security_domain, label, secret, modified_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, it.Server, it.Path, it.Protocol, it.Port, it.Account, it.SecurityDomain,
		it.Label, it.Secret, it.Modified.UnixNano())
	if err != nil {
		return fmt.Errorf("adding item: %w", err)
	}
	return nil
}

// count 返回条目总数。
func (s *Store) count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}

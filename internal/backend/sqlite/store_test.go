package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/zx06/xcreds/internal/backend"
	"github.com/zx06/xcreds/internal/credential"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "credentials.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func resolve(t *testing.T, raw string, opts credential.ResolveOptions) credential.Address {
	t.Helper()
	addr, xe := credential.NewResolver(nil).Resolve(raw, opts)
	if xe != nil {
		t.Fatalf("resolve %q: %v", raw, xe)
	}
	return addr
}

func TestOpen_CreatesFile(t *testing.T) {
	s := openTestStore(t)
	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0o600 {
		t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
	}
}

func TestOpen_RestrictsExistingFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	path := filepath.Join(t.TempDir(), "credentials.db")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 recorded migration, got %d", n)
	}
}

func TestStore_RoundTripAndUpsert(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	b := backend.NewItemBackend(Name, s, nil)
	addr := resolve(t, "https://example.com:8443/repo", credential.ResolveOptions{Realm: "hg"})

	if _, ok, err := b.Find(ctx, addr); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}

	if err := b.Save(ctx, addr, credential.Credential{User: "me", Secret: []byte("old")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := b.Save(ctx, addr, credential.Credential{User: "me", Secret: []byte("new")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	n, err := s.count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 item after upsert, got %d", n)
	}

	got, ok, err := b.Find(ctx, addr)
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if got.User != "me" || string(got.Secret) != "new" {
		t.Fatalf("Find returned %v", got)
	}
}

func TestStore_LookupPrefersMostRecent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, account := range []string{"me", "alice"} {
		it := backend.Item{
			Server: "example.com", Path: "repo", Protocol: "https",
			Account: account, Label: "xcreds (" + account + "@example.com)",
			Secret: []byte(account), Modified: base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.Add(ctx, it); err != nil {
			t.Fatal(err)
		}
	}

	it, ok, err := s.Lookup(ctx, backend.Query{Server: "example.com", Path: "repo", Protocol: "https"})
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if it.Account != "alice" {
		t.Fatalf("expected most recent account alice, got %q", it.Account)
	}
	if !it.Modified.Equal(base.Add(time.Hour)) {
		t.Fatalf("Modified=%v", it.Modified)
	}

	it, ok, _ = s.Lookup(ctx, backend.Query{Server: "example.com", Path: "repo", Protocol: "https", Account: "me", HasAccount: true})
	if !ok || string(it.Secret) != "me" {
		t.Fatalf("expected account me, got %+v", it)
	}
}

func TestStore_EmptyUserDoesNotOverwriteOtherAccounts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	b := backend.NewItemBackend(Name, s, nil)
	addr := resolve(t, "https://example.com/repo", credential.ResolveOptions{})

	if err := b.Save(ctx, addr, credential.Credential{User: "bob", Secret: []byte("bobpw")}); err != nil {
		t.Fatal(err)
	}
	if err := b.Save(ctx, addr, credential.Credential{User: "", Secret: []byte("other")}); err != nil {
		t.Fatal(err)
	}

	n, err := s.count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 items, got %d", n)
	}
	got, ok, err := b.Find(ctx, addr.WithUser("bob"))
	if err != nil || !ok {
		t.Fatalf("expected hit for bob, ok=%v err=%v", ok, err)
	}
	if string(got.Secret) != "bobpw" {
		t.Fatalf("bob's secret was overwritten with %q", got.Secret)
	}
}

func TestStore_UpdateWithoutMatch(t *testing.T) {
	s := openTestStore(t)
	err := s.Update(context.Background(), backend.Query{Server: "x", Protocol: "https"}, backend.Item{Secret: []byte("pw")})
	if err != backend.ErrNoItem {
		t.Fatalf("expected ErrNoItem, got %v", err)
	}
}

func TestStore_AddDuplicateFails(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	it := backend.Item{Server: "example.com", Protocol: "https", Account: "me", Secret: []byte("pw"), Modified: time.Now()}
	if err := s.Add(ctx, it); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, it); err == nil {
		t.Fatal("expected unique constraint violation")
	}
}

func TestFactory(t *testing.T) {
	f, ok := backend.Get(Name)
	if !ok {
		t.Fatal("sqlite backend not registered")
	}
	path := filepath.Join(t.TempDir(), "c.db")
	b, ok, err := f.New(context.Background(), backend.Options{SQLitePath: path})
	if err != nil || !ok {
		t.Fatalf("expected backend, ok=%v err=%v", ok, err)
	}
	if l, ok := b.(interface{ Location() string }); !ok || l.Location() != path {
		t.Fatalf("expected backend location %q", path)
	}
	if c, ok := b.(interface{ Close() error }); ok {
		t.Cleanup(func() { c.Close() })
	}

	// 路径不可用时视为加载失败
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := f.New(context.Background(), backend.Options{SQLitePath: filepath.Join(blocker, "c.db")}); err == nil || ok {
		t.Fatalf("expected load failure, ok=%v err=%v", ok, err)
	}
}

package keyring

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/zx06/xcreds/internal/backend"
	"github.com/zx06/xcreds/internal/credential"
)

// mockKeyring 模拟 keyring 实现，用于单元测试
type mockKeyring struct {
	data   map[string]map[string]string // service -> account -> value
	getErr error
	setErr error
}

func newMockKeyring() *mockKeyring {
	return &mockKeyring{data: make(map[string]map[string]string)}
}

func (m *mockKeyring) Get(service, account string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	if svc, ok := m.data[service]; ok {
		if v, ok := svc[account]; ok {
			return v, nil
		}
	}
	return "", gokeyring.ErrNotFound
}

func (m *mockKeyring) Set(service, account, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.data[service] == nil {
		m.data[service] = make(map[string]string)
	}
	m.data[service][account] = value
	return nil
}

func (m *mockKeyring) count() int {
	n := 0
	for _, svc := range m.data {
		for account := range svc {
			if account != pointerAccount {
				n++
			}
		}
	}
	return n
}

func resolve(t *testing.T, raw string, opts credential.ResolveOptions) credential.Address {
	t.Helper()
	addr, xe := credential.NewResolver(nil).Resolve(raw, opts)
	if xe != nil {
		t.Fatalf("resolve %q: %v", raw, xe)
	}
	return addr
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kr := newMockKeyring()
	b := backend.NewItemBackend(Name, NewStore(kr, "xcreds-test"), nil)
	addr := resolve(t, "https://example.com/repo", credential.ResolveOptions{Realm: "hg"})

	if _, ok, err := b.Find(ctx, addr); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}

	if err := b.Save(ctx, addr, credential.Credential{User: "me", Secret: []byte("s3cret")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, ok, err := b.Find(ctx, addr)
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if got.User != "me" || string(got.Secret) != "s3cret" {
		t.Fatalf("Find returned %v", got)
	}

	got, ok, err = b.Find(ctx, addr.WithUser("me"))
	if err != nil || !ok || got.User != "me" {
		t.Fatalf("expected hit by account, ok=%v err=%v", ok, err)
	}

	// service 名编码了完整地址
	if _, ok := kr.data["xcreds-test:https://example.com/repo [hg]"]; !ok {
		t.Fatalf("unexpected services: %v", kr.data)
	}
}

func TestStore_UpsertAndPointer(t *testing.T) {
	ctx := context.Background()
	kr := newMockKeyring()
	b := backend.NewItemBackend(Name, NewStore(kr, ""), nil)
	addr := resolve(t, "https://example.com/repo", credential.ResolveOptions{})

	for _, c := range []credential.Credential{
		{User: "me", Secret: []byte("one")},
		{User: "me", Secret: []byte("two")},
		{User: "alice", Secret: []byte("three")},
	} {
		if err := b.Save(ctx, addr, c); err != nil {
			t.Fatalf("Save(%s) failed: %v", c.User, err)
		}
	}
	if kr.count() != 2 {
		t.Fatalf("expected 2 accounts, got %d", kr.count())
	}

	// 未指定用户时返回最近保存的账号
	got, ok, _ := b.Find(ctx, addr)
	if !ok || got.User != "alice" {
		t.Fatalf("expected most recent account alice, got %v", got)
	}
	got, ok, _ = b.Find(ctx, addr.WithUser("me"))
	if !ok || string(got.Secret) != "two" {
		t.Fatalf("expected updated secret for me, got %v", got)
	}
}

func TestStore_PortIsPartOfKey(t *testing.T) {
	ctx := context.Background()
	b := backend.NewItemBackend(Name, NewStore(newMockKeyring(), ""), nil)

	if err := b.Save(ctx, resolve(t, "https://example.com:8443/repo", credential.ResolveOptions{}), credential.Credential{User: "me", Secret: []byte("pw")}); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := b.Find(ctx, resolve(t, "https://example.com/repo", credential.ResolveOptions{})); ok {
		t.Fatal("expected miss for a different port")
	}
	if _, ok, _ := b.Find(ctx, resolve(t, "https://example.com:8443/repo", credential.ResolveOptions{})); !ok {
		t.Fatal("expected hit for the same port")
	}
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	addr := resolve(t, "https://example.com/repo", credential.ResolveOptions{})

	kr := newMockKeyring()
	kr.getErr = stderrors.New("secret service locked")
	b := backend.NewItemBackend(Name, NewStore(kr, ""), nil)
	if _, _, err := b.Find(ctx, addr); err == nil || !strings.Contains(err.Error(), "locked") {
		t.Fatalf("expected lookup error, got %v", err)
	}

	kr = newMockKeyring()
	kr.setErr = stderrors.New("write denied")
	b = backend.NewItemBackend(Name, NewStore(kr, ""), nil)
	if err := b.Save(ctx, addr, credential.Credential{User: "me", Secret: []byte("pw")}); err == nil {
		t.Fatal("expected save error")
	}
}

func TestStore_CorruptPayload(t *testing.T) {
	ctx := context.Background()
	kr := newMockKeyring()
	store := NewStore(kr, "")
	addr := resolve(t, "https://example.com/repo", credential.ResolveOptions{})
	q := backend.QueryFor(addr.WithUser("me"))
	_ = kr.Set(store.serviceFor(q.Key()), "me", "not json")

	if _, _, err := store.Lookup(ctx, q); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestKeyringAPI_Interface(t *testing.T) {
	var _ KeyringAPI = (*mockKeyring)(nil)
	var _ KeyringAPI = (*osKeyring)(nil)
}

func TestStore_EmptyUserKeepsOtherAccounts(t *testing.T) {
	ctx := context.Background()
	kr := newMockKeyring()
	b := backend.NewItemBackend(Name, NewStore(kr, ""), nil)
	addr := resolve(t, "https://example.com/repo", credential.ResolveOptions{})

	if err := b.Save(ctx, addr, credential.Credential{User: "bob", Secret: []byte("bobpw")}); err != nil {
		t.Fatal(err)
	}
	if err := b.Save(ctx, addr, credential.Credential{User: "", Secret: []byte("other")}); err != nil {
		t.Fatal(err)
	}
	got, ok, _ := b.Find(ctx, addr.WithUser("bob"))
	if !ok || string(got.Secret) != "bobpw" {
		t.Fatalf("bob's item was overwritten: %v", got)
	}
}

package backend

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/zx06/xcreds/internal/credential"
)

func mustResolve(t *testing.T, raw string, opts credential.ResolveOptions) credential.Address {
	t.Helper()
	addr, xe := credential.NewResolver(nil).Resolve(raw, opts)
	if xe != nil {
		t.Fatalf("resolve %q: %v", raw, xe)
	}
	return addr
}

func TestQueryFor(t *testing.T) {
	addr := mustResolve(t, "https://example.com:8443/repo", credential.ResolveOptions{Realm: "hg"})
	q := QueryFor(addr)
	want := Query{Server: "example.com", Path: "repo", Protocol: "https", Port: 8443, SecurityDomain: "hg", HasDomain: true}
	if q != want {
		t.Fatalf("QueryFor=%+v, want %+v", q, want)
	}

	q = QueryFor(addr.WithUser("alice"))
	if q.Account != "alice" || !q.HasAccount {
		t.Fatalf("Account=%q HasAccount=%v", q.Account, q.HasAccount)
	}
}

func TestSaveQueryFor(t *testing.T) {
	addr := mustResolve(t, "https://example.com/repo", credential.ResolveOptions{})
	q := SaveQueryFor(addr, "")
	if !q.HasAccount || q.Account != "" {
		t.Fatalf("SaveQueryFor must always filter on account, got %+v", q)
	}
	if q.Matches(Item{Server: "example.com", Path: "repo", Protocol: "https", Account: "bob"}) {
		t.Fatal("empty user must not match another account")
	}
}

func TestQuery_Matches(t *testing.T) {
	it := Item{Server: "example.com", Path: "repo", Protocol: "https", Port: 443, Account: "me", SecurityDomain: "hg"}
	tests := []struct {
		name string
		q    Query
		want bool
	}{
		{name: "exact", q: Query{Server: "example.com", Path: "repo", Protocol: "https", Port: 443, Account: "me", HasAccount: true, SecurityDomain: "hg", HasDomain: true}, want: true},
		{name: "wildcards", q: Query{Server: "example.com", Path: "repo", Protocol: "https"}, want: true},
		{name: "other server", q: Query{Server: "example.org", Path: "repo", Protocol: "https"}, want: false},
		{name: "other path", q: Query{Server: "example.com", Path: "other", Protocol: "https"}, want: false},
		{name: "other protocol", q: Query{Server: "example.com", Path: "repo", Protocol: "http"}, want: false},
		{name: "other port", q: Query{Server: "example.com", Path: "repo", Protocol: "https", Port: 8443}, want: false},
		{name: "other account", q: Query{Server: "example.com", Path: "repo", Protocol: "https", Account: "alice", HasAccount: true}, want: false},
		{name: "empty account is exact", q: Query{Server: "example.com", Path: "repo", Protocol: "https", HasAccount: true}, want: false},
		{name: "other domain", q: Query{Server: "example.com", Path: "repo", Protocol: "https", SecurityDomain: "x", HasDomain: true}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.Matches(it); got != tt.want {
				t.Errorf("Matches=%v want %v", got, tt.want)
			}
		})
	}
}

func TestItemFor(t *testing.T) {
	addr := mustResolve(t, "https://example.com/repo", credential.ResolveOptions{Realm: "hg"})
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	it := ItemFor(addr, credential.Credential{User: "me", Secret: []byte("pw")}, now)

	if it.Label != "xcreds (me@example.com)" {
		t.Errorf("Label=%q", it.Label)
	}
	if it.Account != "me" || it.SecurityDomain != "hg" || it.Port != 0 || !it.Modified.Equal(now) {
		t.Errorf("unexpected item %+v", it)
	}
	if it.Key() != QueryFor(addr).Key() {
		t.Errorf("item key %q differs from query key %q", it.Key(), QueryFor(addr).Key())
	}
	if it.Key() != addr.Key() {
		t.Errorf("item key %q differs from address key %q", it.Key(), addr.Key())
	}
}

func TestItem_LogValueMasksSecret(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("saving", "item", Item{Server: "example.com", Secret: []byte("hunter2")})
	if strings.Contains(buf.String(), "hunter2") {
		t.Fatalf("secret leaked: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "item.secret=***") {
		t.Fatalf("expected masked secret, got %q", buf.String())
	}
}

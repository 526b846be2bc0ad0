// Package keyring 把凭据保存到系统钥匙串（macOS Keychain、
// Secret Service、Windows Credential Manager）。
//
// go-keyring 只支持 (service, account) 两级键，因此条目键
// protocol://server[:port]/path [domain] 编码进 service 名，
// 账号作为 account；另有一个 account 为 "*" 的指针条目记录该地址
// 最近保存的账号，供未指定用户的查找使用。
package keyring

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/zx06/xcreds/internal/backend"
	"github.com/zx06/xcreds/internal/credential"
)

const (
	Name           = "keyring"
	defaultService = "xcreds"
	pointerAccount = "*"
	probeAccount   = "probe"
)

func init() {
	backend.Register(backend.Factory{Name: Name, New: newBackend})
}

// newBackend 探测钥匙串是否可用：读一个不存在的条目，
// 只有 "未找到" 或成功才说明服务在线。
func newBackend(_ context.Context, opts backend.Options) (credential.Backend, bool, error) {
	api := defaultKeyring()
	service := opts.Service
	if service == "" {
		service = defaultService
	}
	if _, err := api.Get(service+":"+probeAccount, probeAccount); err != nil {
		if stderrors.Is(err, gokeyring.ErrUnsupportedPlatform) {
			return nil, false, nil
		}
		if !stderrors.Is(err, gokeyring.ErrNotFound) {
			return nil, false, err
		}
	}
	return backend.NewItemBackend(Name, NewStore(api, service), opts.Logger), true, nil
}

// Store 实现 backend.ItemStore。
type Store struct {
	api     KeyringAPI
	service string
}

var _ backend.ItemStore = (*Store)(nil)

func NewStore(api KeyringAPI, service string) *Store {
	if api == nil {
		api = defaultKeyring()
	}
	if service == "" {
		service = defaultService
	}
	return &Store{api: api, service: service}
}

type payload struct {
	Label          string    `json:"label"`
	Server         string    `json:"server"`
	Path           string    `json:"path"`
	Protocol       string    `json:"protocol"`
	Port           int       `json:"port,omitempty"`
	Account        string    `json:"account"`
	SecurityDomain string    `json:"security_domain,omitempty"`
	Secret         []byte    `json:"secret"`
	Modified       time.Time `json:"modified"`
}

func (s *Store) serviceFor(key string) string {
	return s.service + ":" + key
}

func (s *Store) Lookup(_ context.Context, q backend.Query) (backend.Item, bool, error) {
	service := s.serviceFor(q.Key())
	account := q.Account
	if !q.HasAccount {
		ptr, ok, err := s.get(service, pointerAccount)
		if err != nil || !ok {
			return backend.Item{}, false, err
		}
		account = ptr
	}
	raw, ok, err := s.get(service, account)
	if err != nil || !ok {
		return backend.Item{}, false, err
	}
	it, err := decode(raw)
	if err != nil {
		return backend.Item{}, false, fmt.Errorf("decode keyring item %q: %w", service, err)
	}
	if !q.Matches(it) {
		return backend.Item{}, false, nil
	}
	return it, true, nil
}

func (s *Store) Update(_ context.Context, q backend.Query, it backend.Item) error {
	account := q.Account
	if !q.HasAccount {
		account = it.Account
	}
	service := s.serviceFor(q.Key())
	if _, ok, err := s.get(service, account); err != nil {
		return err
	} else if !ok {
		return backend.ErrNoItem
	}
	return s.write(service, it)
}

func (s *Store) Add(_ context.Context, it backend.Item) error {
	return s.write(s.serviceFor(it.Key()), it)
}

func (s *Store) write(service string, it backend.Item) error {
	raw, err := encode(it)
	if err != nil {
		return err
	}
	if err := s.api.Set(service, it.Account, raw); err != nil {
		return err
	}
	return s.api.Set(service, pointerAccount, it.Account)
}

func (s *Store) get(service, account string) (string, bool, error) {
	v, err := s.api.Get(service, account)
	if err != nil {
		if stderrors.Is(err, gokeyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func encode(it backend.Item) (string, error) {
	b, err := json.Marshal(payload{
		Label:          it.Label,
		Server:         it.Server,
		Path:           it.Path,
		Protocol:       it.Protocol,
		Port:           it.Port,
		Account:        it.Account,
		SecurityDomain: it.SecurityDomain,
		Secret:         it.Secret,
		Modified:       it.Modified.UTC(),
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decode(raw string) (backend.Item, error) {
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return backend.Item{}, err
	}
	return backend.Item{
		Label:          p.Label,
		Server:         p.Server,
		Path:           p.Path,
		Protocol:       p.Protocol,
		Port:           p.Port,
		Account:        p.Account,
		SecurityDomain: p.SecurityDomain,
		Secret:         p.Secret,
		Modified:       p.Modified,
	}, nil
}

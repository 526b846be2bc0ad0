package prompt

import (
	"context"

	"github.com/zx06/xcreds/internal/errors"
)

// Null 从不提示：查找总是 NotFound，保存什么也不做。
// 用于由调用方（如 git）自行提示的场景。
type Null struct{}

func (Null) FindUserPassword(_ context.Context, realm, _ string) (string, []byte, error) {
	return "", nil, errors.New(errors.CodeNotFound, "no stored credentials", map[string]any{"realm": realm})
}

func (Null) AddPassword(context.Context, string, []string, string, []byte) error { return nil }

// Assume 不询问，直接给出固定回答（--yes / --no）。
type Assume bool

func (Assume) Interactive() bool { return true }

func (a Assume) Confirm(string, bool) (bool, error) { return bool(a), nil }

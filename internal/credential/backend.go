package credential

import (
	"context"
	"fmt"
)

// Backend 是单一安全存储机制的能力接口。
//
// Find 区分三种结果：命中 (cred, true, nil)；未找到 (_, false, nil)，
// 这不是错误；操作失败 (_, false, err)，调用方记录告警后继续下一个 backend。
//
// Save 对给定地址做 upsert：已有条目则更新，否则新建。
type Backend interface {
	Find(ctx context.Context, addr Address) (Credential, bool, error)
	Save(ctx context.Context, addr Address, cred Credential) error
}

// BackendError 表示已加载 backend 的一次 find/save 失败（非"未找到"）。
type BackendError struct {
	Backend string
	Op      string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Backend, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

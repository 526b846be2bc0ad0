//go:build windows

package keyring

import (
	"strings"

	gokeyring "github.com/zalando/go-keyring"
)

func (o *osKeyring) Get(service, account string) (string, error) {
	val, err := gokeyring.Get(service, account)
	if err != nil {
		return "", err
	}
	// Windows Credential Manager 可能在字符间插入 null 字节（UTF-16 遗留问题）
	val = strings.ReplaceAll(val, "\x00", "")
	return val, nil
}

func (o *osKeyring) Set(service, account, value string) error {
	return gokeyring.Set(service, account, value)
}

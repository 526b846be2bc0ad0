//go:build !windows

package keyring

import gokeyring "github.com/zalando/go-keyring"

func (o *osKeyring) Get(service, account string) (string, error) {
	return gokeyring.Get(service, account)
}

func (o *osKeyring) Set(service, account, value string) error {
	return gokeyring.Set(service, account, value)
}

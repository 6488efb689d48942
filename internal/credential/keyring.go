// Package credential caches the wizard's secrets in the OS keyring so a
// re-run of setup can prefill them.
package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "replydesk"

// Keys for the secrets the setup wizard handles.
const (
	KeyMailPassword = "mail_password"
	KeyDeepseekKey  = "deepseek_api_key"
	KeyBaiduSecret  = "baidu_secret"
)

// Vault reads and writes secrets in a keyring.
type Vault struct {
	ring keyring.Keyring
}

// Open opens the system keyring, falling back to an encrypted file under
// ~/.config/replydesk/credentials.
func Open() (*Vault, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/replydesk/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("replydesk-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Vault{ring: ring}, nil
}

// NewVault wraps an existing keyring.
func NewVault(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring}
}

// Get returns the secret stored under key. A missing key yields "" and
// no error.
func (v *Vault) Get(key string) (string, error) {
	item, err := v.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores value under key. An empty value removes the key.
func (v *Vault) Set(key, value string) error {
	if value == "" {
		return v.Delete(key)
	}
	err := v.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "Reply Desk " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Removing a missing key is not an error.
func (v *Vault) Delete(key string) error {
	err := v.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// Secrets is the set of values the wizard caches.
type Secrets struct {
	MailPassword string
	DeepseekKey  string
	BaiduSecret  string
}

// Load reads all cached secrets, stopping at the first keyring failure.
func (v *Vault) Load() (Secrets, error) {
	var s Secrets
	for key, dst := range map[string]*string{
		KeyMailPassword: &s.MailPassword,
		KeyDeepseekKey:  &s.DeepseekKey,
		KeyBaiduSecret:  &s.BaiduSecret,
	} {
		val, err := v.Get(key)
		if err != nil {
			return Secrets{}, err
		}
		*dst = val
	}
	return s, nil
}

// Store writes all secrets.
func (v *Vault) Store(s Secrets) error {
	return errors.Join(
		v.Set(KeyMailPassword, s.MailPassword),
		v.Set(KeyDeepseekKey, s.DeepseekKey),
		v.Set(KeyBaiduSecret, s.BaiduSecret),
	)
}

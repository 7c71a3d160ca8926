// Package credential keeps the mailbox password out of the config file by
// storing it in the system keyring.
package credential

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/99designs/keyring"
)

const serviceName = "case-classifier"

// MailboxPasswordKey is the keyring entry holding the IMAP password.
const MailboxPasswordKey = "mailbox-password"

// ErrNoPassword is returned when no mailbox password has been stored.
var ErrNoPassword = errors.New("no mailbox password stored; run with --set-mailbox-password")

// Vault reads and writes secrets for this application.
type Vault struct {
	ring keyring.Keyring
}

// Open returns a Vault backed by the first available system keyring.
// fileDir is used by the encrypted-file fallback backend.
func Open(fileDir string) (*Vault, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(fileDir, "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt(serviceName + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Vault{ring: ring}, nil
}

// NewVault wraps an existing keyring, e.g. keyring.NewArrayKeyring in tests.
func NewVault(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring}
}

// MailboxPassword returns the stored IMAP password.
func (v *Vault) MailboxPassword() (string, error) {
	item, err := v.ring.Get(MailboxPasswordKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNoPassword
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", MailboxPasswordKey, err)
	}
	if len(item.Data) == 0 {
		return "", ErrNoPassword
	}
	return string(item.Data), nil
}

// SetMailboxPassword stores the IMAP password.
func (v *Vault) SetMailboxPassword(password string) error {
	if password == "" {
		return fmt.Errorf("mailbox password must not be empty")
	}
	err := v.ring.Set(keyring.Item{
		Key:   MailboxPasswordKey,
		Data:  []byte(password),
		Label: "case-classifier mailbox password",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", MailboxPasswordKey, err)
	}
	return nil
}

// DeleteMailboxPassword removes the stored IMAP password. Deleting an
// absent password is not an error.
func (v *Vault) DeleteMailboxPassword() error {
	err := v.ring.Remove(MailboxPasswordKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", MailboxPasswordKey, err)
	}
	return nil
}

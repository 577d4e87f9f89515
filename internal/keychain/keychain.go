package keychain

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const (
	serviceName  = "notebot"
	tokenAccount = "telegram-token"
)

// ErrNotFound is returned when no secret is stored for an account.
var ErrNotFound = keyring.ErrNotFound

// Get retrieves a secret from the system keychain.
func Get(account string) (string, error) {
	return keyring.Get(serviceName, account)
}

// Set stores a secret in the system keychain.
func Set(account, value string) error {
	return keyring.Set(serviceName, account, value)
}

// Token returns the stored Telegram bot token. A missing entry yields an
// empty token and no error.
func Token() (string, error) {
	tok, err := Get(tokenAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return tok, err
}

// SetToken stores the Telegram bot token.
func SetToken(token string) error {
	return Set(tokenAccount, token)
}

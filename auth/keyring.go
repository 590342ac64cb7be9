// Package auth stores the catalog bearer token in the system keyring.
package auth

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const (
	service = "vibe"
	user    = "catalog-token"
)

// SetToken persists the catalog token.
func SetToken(token string) error {
	return keyring.Set(service, user, token)
}

// GetToken retrieves the catalog token.
func GetToken() (string, error) {
	return keyring.Get(service, user)
}

// Token returns the stored token, or "" when none is stored or the keyring is unavailable.
func Token() string {
	token, err := GetToken()
	if err != nil {
		return ""
	}
	return token
}

// DeleteToken removes the catalog token. Deleting a missing token is not an error.
func DeleteToken() error {
	err := keyring.Delete(service, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

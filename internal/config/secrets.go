package config

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "pgdb"

// SetPassword stores a profile's password in the OS keyring so it never has
// to live in the config file.
func SetPassword(profile, password string) error {
	if err := keyring.Set(keyringService, profile, password); err != nil {
		return fmt.Errorf("store password for %s: %w", profile, err)
	}
	return nil
}

// Password resolves the password for a connection profile: an inline config
// value wins, otherwise the OS keyring is consulted. A missing secret is not
// an error.
func Password(conn Connection) (string, error) {
	if conn.Password != "" {
		return conn.Password, nil
	}
	secret, err := keyring.Get(keyringService, conn.Name)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read password for %s: %w", conn.Name, err)
	}
	return secret, nil
}

// DeletePassword removes a profile's password from the OS keyring. Deleting
// an absent secret is a no-op.
func DeletePassword(profile string) error {
	err := keyring.Delete(keyringService, profile)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete password for %s: %w", profile, err)
	}
	return nil
}

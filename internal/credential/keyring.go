// Package credential stores encoded service tokens in the system keyring,
// so they do not have to live in the config file or the environment.
package credential

import (
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "scribe"

// openKeyring returns a configured keyring instance.
var openKeyring = func() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/scribe/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("scribe-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get returns the stored token of a service. It satisfies
// config.TokenLookup.
func Get(service string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(service)
	if err != nil {
		return "", fmt.Errorf("getting %s token: %w", service, err)
	}

	return string(item.Data), nil
}

// Set stores the token of a service.
func Set(service, token string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:         service,
		Data:        []byte(token),
		Label:       "scribe " + service + " token",
		Description: "base64 email:api_token for " + service,
	})
	if err != nil {
		return fmt.Errorf("storing %s token: %w", service, err)
	}

	return nil
}

// Delete removes the token of a service.
func Delete(service string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	if err := ring.Remove(service); err != nil {
		return fmt.Errorf("deleting %s token: %w", service, err)
	}

	return nil
}

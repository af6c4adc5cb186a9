package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the engine's secrets in the OS keychain.
const KeyringService = "seace-engine"

var ErrNoToken = errors.New("api token not configured")

// Store is the subset of the keyring the engine uses.
type Store interface {
	Get(service, user string) (string, error)
	Set(service, user, password string) error
	Delete(service, user string) error
}

type osKeyring struct{}

func (osKeyring) Get(service, user string) (string, error) { return keyring.Get(service, user) }
func (osKeyring) Set(service, user, pw string) error       { return keyring.Set(service, user, pw) }
func (osKeyring) Delete(service, user string) error        { return keyring.Delete(service, user) }

// OS is the platform keychain.
var OS Store = osKeyring{}

// APIToken resolves the bearer token guarding /scrape: keyring first, then
// the environment variable envName. ErrNoToken means auth is off.
func APIToken(st Store, account, envName string) (string, error) {
	if st != nil && strings.TrimSpace(account) != "" {
		tok, err := st.Get(KeyringService, account)
		// A missing or unreachable keychain (headless linux) falls back to env.
		if err == nil && strings.TrimSpace(tok) != "" {
			return strings.TrimSpace(tok), nil
		}
	}
	if envName != "" {
		if tok := strings.TrimSpace(os.Getenv(envName)); tok != "" {
			return tok, nil
		}
	}
	return "", ErrNoToken
}

func SetAPIToken(st Store, account, token string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	return st.Set(KeyringService, account, token)
}

func DeleteAPIToken(st Store, account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return st.Delete(KeyringService, account)
}

package auth

import (
	"os"
	"time"
)

const (
	// TokenEnv is the environment variable holding a bearer token
	TokenEnv = "GEOSCRAPER_BEARER_TOKEN"

	// EnvName is the name under which the environment token is listed
	EnvName = "env"
)

// EnvironmentStore exposes GEOSCRAPER_BEARER_TOKEN as a read-only credential
type EnvironmentStore struct{}

func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported
func (e *EnvironmentStore) Store(cred *Credential) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment token under any name
func (e *EnvironmentStore) Retrieve(name string) (*Credential, error) {
	token := os.Getenv(TokenEnv)
	if token == "" {
		return nil, ErrCredentialsNotFound
	}
	if name == "" {
		name = EnvName
	}

	return &Credential{
		Name:         name,
		BearerToken:  token,
		UserAgent:    os.Getenv("GEOSCRAPER_USER_AGENT"),
		LastModified: time.Now(),
	}, nil
}

func (e *EnvironmentStore) List() ([]*Credential, error) {
	cred, err := e.Retrieve(EnvName)
	if err != nil {
		return []*Credential{}, nil
	}
	return []*Credential{cred}, nil
}

// Delete is not supported
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

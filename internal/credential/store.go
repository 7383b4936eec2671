// Package credential persists the session credential.
//
// Stores are pure storage: they never validate a token and never touch the
// network. Validation policy lives in the session package.
package credential

import (
	"errors"
	"strings"
	"sync"
)

// ErrNoCredential is returned by a TokenSource when nothing is stored.
var ErrNoCredential = errors.New("no stored credential")

// Credential is a bearer token and the display name it was issued for.
type Credential struct {
	Token    string `json:"access_token"`
	Username string `json:"username"`
}

// Store persists and retrieves a Credential.
type Store interface {
	// Save persists token and username. An empty token is equivalent to Clear.
	Save(token, username string) error

	// Load returns whatever is persisted, unvalidated.
	// ok is false when nothing is stored.
	Load() (cred Credential, ok bool, err error)

	// Clear removes the credential. Clearing an empty store is not an error.
	Clear() error
}

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	cred  Credential
	saved bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(token, username string) error {
	if strings.TrimSpace(token) == "" {
		return m.Clear()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = Credential{Token: token, Username: username}
	m.saved = true
	return nil
}

func (m *MemoryStore) Load() (Credential, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cred, m.saved, nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = Credential{}
	m.saved = false
	return nil
}

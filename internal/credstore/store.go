// Package credstore persists the client's credentials between runs.
//
// Three keys are stored: the access token, the refresh token (if the
// server issued one) and the auth type tag. They are always cleared
// together.
package credstore

import (
	"errors"
	"fmt"
	"sync"

	"taskpro/internal/config"
)

// Storage keys.
const (
	KeyToken        = "token"
	KeyRefreshToken = "refresh_token"
	KeyAuthType     = "auth_type"
)

// AllKeys lists every key the client writes.
var AllKeys = []string{KeyToken, KeyRefreshToken, KeyAuthType}

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("credential not found")

// Store is durable key/value storage for credentials.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) (string, error)

	// Set stores value under key.
	Set(key, value string) error

	// Delete removes the keys. Missing keys are not an error.
	Delete(keys ...string) error

	// Close releases resources held by the store.
	Close() error
}

// Open returns the store selected by cfg.CredentialStore.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.CredentialStore {
	case "", config.StoreFile:
		return NewFile(cfg.CredentialsPath()), nil
	case config.StoreSQLite:
		if err := cfg.EnsureDir(); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		return OpenSQLite(cfg.CredentialsDBPath())
	default:
		return nil, fmt.Errorf("unknown credential store: %s", cfg.CredentialStore)
	}
}

// Clear removes every credential key.
func Clear(s Store) error {
	return s.Delete(AllKeys...)
}

// Memory is an in-process Store. It does not survive the process.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *Memory) Close() error { return nil }

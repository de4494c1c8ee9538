// Package memory provides an in-process implementation of tokenstore.Store.
// Nothing is persisted; intended for tests and ephemeral tooling.
package memory

import (
	"context"
	"sync"

	"github.com/xcloneapp/xclient-go/tokenstore"
)

// Store implements tokenstore.Store backed by a map.
type Store struct {
	mu      sync.RWMutex
	secrets map[string]string
}

var _ tokenstore.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{secrets: make(map[string]string)}
}

func (s *Store) Read(ctx context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	secret, ok := s.secrets[id]
	if !ok {
		return "", tokenstore.ErrNotFound
	}
	return secret, nil
}

func (s *Store) Write(ctx context.Context, id string, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[id] = secret
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.secrets[id]; !ok {
		return tokenstore.ErrNotFound
	}
	delete(s.secrets, id)
	return nil
}

func (s *Store) Close() error { return nil }

// Package file provides a tokenstore.Store persisted to a single encrypted
// file. Secrets are sealed with XChaCha20-Poly1305 under a key derived from a
// passphrase via scrypt; the salt and nonce travel with the file. Writes are
// atomic (temp file + rename) so a crash never leaves a torn credential file.
package file

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/xcloneapp/xclient-go/tokenstore"
)

const (
	saltLen = 16

	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// Config for a file-backed store.
type Config struct {
	// Path of the encrypted credential file. Created on first write.
	Path string

	// Passphrase the encryption key is derived from. Required.
	Passphrase string
}

// Store implements tokenstore.Store on an encrypted file.
type Store struct {
	path       string
	passphrase string

	mu sync.Mutex
	// key is cached per salt so scrypt runs once per process, not per write.
	keySalt []byte
	key     []byte
	// lastWritten is the digest of the most recent file image this process
	// produced; Watch uses it to tell its own writes apart from external ones.
	lastWritten [sha256.Size]byte
	hasWritten  bool
}

var _ tokenstore.Store = (*Store)(nil)

// New creates a file-backed store. The file itself is created lazily on the
// first Write.
func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("tokenstore/file: path is required")
	}
	if cfg.Passphrase == "" {
		return nil, fmt.Errorf("tokenstore/file: passphrase is required")
	}
	return &Store{path: cfg.Path, passphrase: cfg.Passphrase}, nil
}

func (s *Store) Read(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	secrets, err := s.load()
	if err != nil {
		return "", err
	}
	secret, ok := secrets[id]
	if !ok {
		return "", tokenstore.ErrNotFound
	}
	return secret, nil
}

func (s *Store) Write(ctx context.Context, id string, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	secrets, err := s.load()
	if err != nil {
		return err
	}
	secrets[id] = secret
	return s.save(secrets)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	secrets, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := secrets[id]; !ok {
		return tokenstore.ErrNotFound
	}
	delete(secrets, id)
	return s.save(secrets)
}

func (s *Store) Close() error { return nil }

// Watch reports modifications of the credential file made outside this
// process (for example a companion daemon rotating tokens). The returned
// channel receives one value per external change and is closed when ctx is
// done. This process's own writes are filtered out by content digest.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("tokenstore/file: watch: %w", err)
	}
	// Watch the directory rather than the file so atomic rename-into-place
	// writes are observed.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("tokenstore/file: watch %s: %w", filepath.Dir(s.path), err)
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if s.isOwnWrite() {
					continue
				}
				select {
				case changes <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return changes, nil
}

// isOwnWrite reports whether the file's current content matches the image
// this process last wrote.
func (s *Store) isOwnWrite() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasWritten {
		return false
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}
	return sha256.Sum256(raw) == s.lastWritten
}

// load reads and decrypts the credential file. A missing file is an empty
// store. Callers must hold s.mu.
func (s *Store) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("tokenstore/file: read %s: %w", s.path, err)
	}
	if len(raw) < saltLen+chacha20poly1305.NonceSizeX {
		return nil, fmt.Errorf("tokenstore/file: %s is truncated", s.path)
	}

	salt := raw[:saltLen]
	nonce := raw[saltLen : saltLen+chacha20poly1305.NonceSizeX]
	ciphertext := raw[saltLen+chacha20poly1305.NonceSizeX:]

	key, err := s.deriveKey(salt)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("tokenstore/file: %w", err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("tokenstore/file: decrypt %s: %w", s.path, err)
	}

	secrets := make(map[string]string)
	if err := json.Unmarshal(plaintext, &secrets); err != nil {
		return nil, fmt.Errorf("tokenstore/file: decode %s: %w", s.path, err)
	}
	return secrets, nil
}

// save encrypts and atomically replaces the credential file. Callers must
// hold s.mu.
func (s *Store) save(secrets map[string]string) error {
	plaintext, err := json.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("tokenstore/file: encode: %w", err)
	}

	salt := s.keySalt
	if salt == nil {
		salt = make([]byte, saltLen)
		if _, err := rand.Read(salt); err != nil {
			return fmt.Errorf("tokenstore/file: salt: %w", err)
		}
	}
	key, err := s.deriveKey(salt)
	if err != nil {
		return err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return fmt.Errorf("tokenstore/file: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("tokenstore/file: nonce: %w", err)
	}

	raw := make([]byte, 0, saltLen+len(nonce)+len(plaintext)+aead.Overhead())
	raw = append(raw, salt...)
	raw = append(raw, nonce...)
	raw = aead.Seal(raw, nonce, plaintext, nil)

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tokenstore-*")
	if err != nil {
		return fmt.Errorf("tokenstore/file: temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("tokenstore/file: write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("tokenstore/file: chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("tokenstore/file: close: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("tokenstore/file: rename: %w", err)
	}

	s.lastWritten = sha256.Sum256(raw)
	s.hasWritten = true
	return nil
}

// deriveKey runs scrypt over the passphrase, caching the result per salt.
// Callers must hold s.mu.
func (s *Store) deriveKey(salt []byte) ([]byte, error) {
	if s.key != nil && string(s.keySalt) == string(salt) {
		return s.key, nil
	}
	key, err := scrypt.Key([]byte(s.passphrase), salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("tokenstore/file: derive key: %w", err)
	}
	s.keySalt = append([]byte(nil), salt...)
	s.key = key
	return key, nil
}

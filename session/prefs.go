package session

import "sync"

// Prefs is ordinary durable key/value storage for the non-secret session
// state: the authenticated flag and the session expiry. Writes are
// best-effort, mirroring platform preference stores.
type Prefs interface {
	Bool(key string) bool
	SetBool(key string, v bool)
	Int64(key string) int64
	SetInt64(key string, v int64)
}

// MemoryPrefs is an in-process Prefs, for tests and ephemeral tooling.
type MemoryPrefs struct {
	mu     sync.RWMutex
	bools  map[string]bool
	int64s map[string]int64
}

var _ Prefs = (*MemoryPrefs)(nil)

// NewMemoryPrefs creates an empty MemoryPrefs.
func NewMemoryPrefs() *MemoryPrefs {
	return &MemoryPrefs{
		bools:  make(map[string]bool),
		int64s: make(map[string]int64),
	}
}

func (p *MemoryPrefs) Bool(key string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.bools[key]
}

func (p *MemoryPrefs) SetBool(key string, v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bools[key] = v
}

func (p *MemoryPrefs) Int64(key string) int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.int64s[key]
}

func (p *MemoryPrefs) SetInt64(key string, v int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.int64s[key] = v
}

// Package redis provides a tokenstore.Store backed by Redis. Intended for
// shared development rigs and integration environments where several
// processes need to observe the same credentials; production mobile targets
// should prefer the file backend.
package redis

import (
	"context"
	"fmt"

	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"

	"github.com/xcloneapp/xclient-go/tokenstore"
)

// Config for a Redis-backed store. Defaults can be loaded via envdecode.
type Config struct {
	// RedisAddr like "localhost:6379". ENV: REDIS_ADDR
	RedisAddr string `env:"REDIS_ADDR,default=localhost:6379"`
	// KeyPrefix for all keys. ENV: TOKENSTORE_KEY_PREFIX
	KeyPrefix string `env:"TOKENSTORE_KEY_PREFIX,default=xclient:tokens:"`

	// Client overrides RedisAddr with a caller-owned client. The store does
	// not close a caller-owned client.
	Client *redis.Client
}

// Store implements tokenstore.Store on Redis.
type Store struct {
	client     *redis.Client
	keyPrefix  string
	ownsClient bool
}

var _ tokenstore.Store = (*Store)(nil)

// New creates a Redis-backed store and verifies connectivity.
func New(cfg Config) (*Store, error) {
	client := cfg.Client
	ownsClient := false
	if client == nil {
		addr := cfg.RedisAddr
		if addr == "" {
			addr = "localhost:6379"
		}
		client = redis.NewClient(&redis.Options{Addr: addr})
		ownsClient = true
	}
	if err := client.Ping(context.Background()).Err(); err != nil {
		if ownsClient {
			client.Close()
		}
		return nil, fmt.Errorf("tokenstore/redis: ping: %w", err)
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "xclient:tokens:"
	}
	return &Store{client: client, keyPrefix: prefix, ownsClient: ownsClient}, nil
}

// NewFromEnv builds a Store using envdecode to populate Config.
func NewFromEnv() (*Store, error) {
	var cfg Config
	_ = envdecode.Decode(&cfg)
	return New(cfg)
}

func (s *Store) key(id string) string { return s.keyPrefix + id }

func (s *Store) Read(ctx context.Context, id string) (string, error) {
	secret, err := s.client.Get(ctx, s.key(id)).Result()
	if err == redis.Nil {
		return "", tokenstore.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("tokenstore/redis: get %s: %w", id, err)
	}
	return secret, nil
}

func (s *Store) Write(ctx context.Context, id string, secret string) error {
	if err := s.client.Set(ctx, s.key(id), secret, 0).Err(); err != nil {
		return fmt.Errorf("tokenstore/redis: set %s: %w", id, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("tokenstore/redis: del %s: %w", id, err)
	}
	if n == 0 {
		return tokenstore.ErrNotFound
	}
	return nil
}

// Close closes the underlying client if this store created it.
func (s *Store) Close() error {
	if s.ownsClient {
		return s.client.Close()
	}
	return nil
}

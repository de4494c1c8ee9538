// Package tokenstore defines secure persistence for session token secrets.
//
// A Store holds small opaque secrets (the access and refresh tokens) keyed by
// fixed identifiers. Backends differ in durability and threat model: memory
// for tests and ephemeral processes, file for encrypted at-rest storage, and
// redis for shared development rigs. All backends are exercised by the
// conformance suite in storetest.
package tokenstore

import (
	"context"
	"errors"
)

// ErrNotFound indicates no secret is stored under the requested identifier.
var ErrNotFound = errors.New("tokenstore: token not found")

// Store persists opaque token secrets keyed by fixed identifiers.
//
// Secrets are written individually and read individually; callers own the
// ordering of multi-key commits. Implementations must be safe for concurrent
// use, though the session layer serializes access in practice.
type Store interface {
	// Read returns the secret stored under id, or ErrNotFound.
	Read(ctx context.Context, id string) (string, error)

	// Write stores secret under id, replacing any previous value.
	Write(ctx context.Context, id string, secret string) error

	// Delete removes the secret stored under id. Deleting an absent id
	// returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

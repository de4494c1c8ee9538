// Package storetest provides a reusable conformance suite for
// tokenstore.Store implementations.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/xcloneapp/xclient-go/tokenstore"
)

// RunStoreTests runs the conformance suite against a backend. newStore is
// called per subtest and should return a fresh, empty store; cleanup belongs
// in t.Cleanup.
func RunStoreTests(t *testing.T, newStore func(t *testing.T) tokenstore.Store) {
	ctx := context.Background()

	t.Run("ReadMissing", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		if _, err := s.Read(ctx, "absent"); !errors.Is(err, tokenstore.ErrNotFound) {
			t.Errorf("Read(absent) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("WriteReadRoundTrip", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		if err := s.Write(ctx, "x.accessToken", "secret-a"); err != nil {
			t.Fatalf("Write: %v", err)
		}
		got, err := s.Read(ctx, "x.accessToken")
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if got != "secret-a" {
			t.Errorf("Read = %q, want %q", got, "secret-a")
		}
	})

	t.Run("WriteReplacesExisting", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		if err := s.Write(ctx, "id", "old"); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if err := s.Write(ctx, "id", "new"); err != nil {
			t.Fatalf("Write: %v", err)
		}
		got, err := s.Read(ctx, "id")
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if got != "new" {
			t.Errorf("Read = %q, want %q", got, "new")
		}
	})

	t.Run("KeysAreIndependent", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		if err := s.Write(ctx, "x.accessToken", "access"); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if err := s.Write(ctx, "x.refreshToken", "refresh"); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if got, _ := s.Read(ctx, "x.accessToken"); got != "access" {
			t.Errorf("Read(access) = %q", got)
		}
		if got, _ := s.Read(ctx, "x.refreshToken"); got != "refresh" {
			t.Errorf("Read(refresh) = %q", got)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		if err := s.Write(ctx, "id", "secret"); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if err := s.Delete(ctx, "id"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Read(ctx, "id"); !errors.Is(err, tokenstore.ErrNotFound) {
			t.Errorf("Read after delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		if err := s.Delete(ctx, "absent"); !errors.Is(err, tokenstore.ErrNotFound) {
			t.Errorf("Delete(absent) error = %v, want ErrNotFound", err)
		}
	})
}

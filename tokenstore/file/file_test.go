package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xcloneapp/xclient-go/tokenstore"
	"github.com/xcloneapp/xclient-go/tokenstore/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{
		Path:       filepath.Join(t.TempDir(), "tokens.enc"),
		Passphrase: "correct horse battery staple",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestFileStore(t *testing.T) {
	storetest.RunStoreTests(t, func(t *testing.T) tokenstore.Store {
		return newTestStore(t)
	})
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(Config{Passphrase: "p"}); err == nil {
		t.Error("New without path expected error")
	}
	if _, err := New(Config{Path: "/tmp/t"}); err == nil {
		t.Error("New without passphrase expected error")
	}
}

func TestFileIsEncryptedAtRest(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tokens.enc")
	s, err := New(Config{Path: path, Passphrase: "pass"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Write(ctx, "x.accessToken", "super-secret-token"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(raw) == "super-secret-token" {
		t.Fatal("secret stored in plaintext")
	}
	for i := 0; i+len("super-secret-token") <= len(raw); i++ {
		if string(raw[i:i+len("super-secret-token")]) == "super-secret-token" {
			t.Fatal("secret visible in file contents")
		}
	}
}

func TestWrongPassphraseFailsClosed(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tokens.enc")

	s1, err := New(Config{Path: path, Passphrase: "right"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s1.Write(ctx, "id", "secret"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	s2, err := New(Config{Path: path, Passphrase: "wrong"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s2.Read(ctx, "id"); err == nil {
		t.Error("Read with wrong passphrase expected error")
	}
}

func TestTruncatedFileIsAnError(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tokens.enc")
	if err := os.WriteFile(path, []byte("short"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, err := New(Config{Path: path, Passphrase: "pass"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.Read(ctx, "id"); err == nil {
		t.Error("Read of truncated file expected error")
	}
}

func TestWatchReportsExternalChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "tokens.enc")
	s, err := New(Config{Path: path, Passphrase: "pass"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Write(ctx, "id", "initial"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	changes, err := s.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	// Our own write must not surface as a change.
	if err := s.Write(ctx, "id", "rotated-by-us"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	select {
	case <-changes:
		t.Fatal("own write reported as external change")
	case <-time.After(300 * time.Millisecond):
	}

	// A second store instance stands in for another process.
	other, err := New(Config{Path: path, Passphrase: "pass"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := other.Write(ctx, "id", "rotated-externally"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("external write not reported")
	}
}

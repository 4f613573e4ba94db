package sessionstore

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/gotd/td/session"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.db")
	s, err := Open(path, "default")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := testStore(t)

	result, err := s.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 1 {
		t.Errorf("version = %d, want 1", result.Version)
	}
}

func TestLoadMissingSession(t *testing.T) {
	s := testStore(t)

	_, err := s.LoadSession(context.Background())
	if !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("err = %v, want session.ErrNotFound", err)
	}
}

func TestStoreAndLoadSession(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	blob := []byte(`{"auth_key":"abc"}`)
	if err := s.StoreSession(ctx, blob); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadSession(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, blob) {
		t.Errorf("loaded %q, want %q", got, blob)
	}
}

func TestStoreSessionOverwrites(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.StoreSession(ctx, []byte("old")); err != nil {
		t.Fatal(err)
	}
	if err := s.StoreSession(ctx, []byte("new")); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadSession(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Errorf("loaded %q, want new", got)
	}
}

func TestWipeRemovesSession(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.StoreSession(ctx, []byte("data")); err != nil {
		t.Fatal(err)
	}
	if err := s.Wipe(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadSession(ctx); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("err after wipe = %v, want session.ErrNotFound", err)
	}
}

func TestSessionSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()

	s, err := Open(path, "default")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Migrate(); err != nil {
		t.Fatal(err)
	}
	if err := s.StoreSession(ctx, []byte("persisted")); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path, "default")
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	got, err := reopened.LoadSession(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "persisted" {
		t.Errorf("loaded %q, want persisted", got)
	}
}

func TestAccountsDoNotShareSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()

	a, err := Open(path, "alice")
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	if _, err := a.Migrate(); err != nil {
		t.Fatal(err)
	}
	b, err := Open(path, "bob")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if err := a.StoreSession(ctx, []byte("alice-session")); err != nil {
		t.Fatal(err)
	}
	if _, err := b.LoadSession(ctx); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("bob load err = %v, want session.ErrNotFound", err)
	}
}

// Package sessionstore keeps the MTProto session blob in the
// per-account SQLite database, so auth keys survive restarts and a
// logout can wipe them in one place.
package sessionstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/gotd/td/session"
	_ "github.com/mattn/go-sqlite3"

	"github.com/subhdotsol/vimgram/internal/sessionstore/migrations"
)

// Store implements gotd's session.Storage on SQLite, keyed by account
// id so one database file holds exactly one account's session.
type Store struct {
	db      *sql.DB
	account string
}

var _ session.Storage = (*Store)(nil)

// Open creates a SQLite connection with WAL mode and recommended
// pragmas.
func Open(path, account string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	// Verify connection.
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping session db: %w", err)
	}
	return &Store{db: db, account: account}, nil
}

// MigrateResult describes what happened during migration.
type MigrateResult struct {
	Version uint
	Dirty   bool
	Changed bool
}

// Migrate runs all pending migrations on the database.
func (s *Store) Migrate() (*MigrateResult, error) {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("migration instance: %w", err)
	}

	err = m.Up()
	changed := true
	if err == migrate.ErrNoChange {
		changed = false
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("migration up: %w", err)
	}

	version, dirty, _ := m.Version()
	return &MigrateResult{
		Version: version,
		Dirty:   dirty,
		Changed: changed,
	}, nil
}

// LoadSession returns the stored session blob, or session.ErrNotFound
// so the client starts a fresh login.
func (s *Store) LoadSession(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM sessions WHERE account = ?", s.account).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return data, nil
}

// StoreSession upserts the session blob for this account.
func (s *Store) StoreSession(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (account, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(account) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`,
		s.account, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Wipe deletes this account's session. Used on logout so the next run
// starts unauthenticated.
func (s *Store) Wipe(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE account = ?", s.account); err != nil {
		return fmt.Errorf("wipe session: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store is the on-disk replacement for browser local storage.
type Store struct {
	db  *sql.DB
	now func() time.Time
	log zerolog.Logger

	auth     *AuthStore
	language *LanguageStore
	papers   *CustomPaperStore
}

// Open creates (if needed) and migrates the SQLite file at path.
func Open(ctx context.Context, path string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// SQLite serialises writers anyway; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug().Str("path", path).Msg("Local store ready")

	return newStore(db, time.Now, log), nil
}

func newStore(db *sql.DB, now func() time.Time, log zerolog.Logger) *Store {
	s := &Store{
		db:  db,
		now: now,
		log: log.With().Str("component", "store").Logger(),
	}
	s.auth = &AuthStore{kv: s}
	s.language = &LanguageStore{kv: s}
	s.papers = &CustomPaperStore{s: s}
	return s
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	drv, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", drv)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// NewMigrator opens the migration runner on the file at path, for manual
// up/down/version/force operations. Open already migrates up.
func NewMigrator(path string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite3://"+path)
	if err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	return m, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Auth returns the credential accessor.
func (s *Store) Auth() *AuthStore { return s.auth }

// Language returns the language preference accessor.
func (s *Store) Language() *LanguageStore { return s.language }

// CustomPapers returns the custom paper cache.
func (s *Store) CustomPapers() *CustomPaperStore { return s.papers }

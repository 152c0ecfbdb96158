package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/homecase-console/internal/domain"
	"github.com/mkrupp/homecase-console/internal/infra/logging"
)

// ErrReadOnlyStore is returned when the session database cannot be written.
var ErrReadOnlyStore = errors.New("session store is read-only")

// DefaultDatabaseName is the file created under the user config directory
// when no DatabasePath is configured.
const DefaultDatabaseName = "homecase-console/session.db"

// SQLiteSessionRepositoryConfig holds configuration for the SQLite session repository.
type SQLiteSessionRepositoryConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file.
	// Empty means <user config dir>/homecase-console/session.db.
	DatabasePath string `env:"DATABASE_PATH" default:""`
}

// SQLiteSessionRepository implements Repository using SQLite as the storage backend.
type SQLiteSessionRepository struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Repository = (*SQLiteSessionRepository)(nil)

// SQLiteSessionRepositoryFactory creates a factory function that returns a new SQLiteSessionRepository.
func SQLiteSessionRepositoryFactory(cfg SQLiteSessionRepositoryConfig) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLiteSessionRepository(cfg)
	}
}

// NewSQLiteSessionRepository opens (creating if needed) the session database.
func NewSQLiteSessionRepository(cfg SQLiteSessionRepositoryConfig) (*SQLiteSessionRepository, error) {
	path, err := resolveDatabasePath(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}

	log := logging.GetLogger("repo.session.sqlite_session_repository").With(
		logging.Group("db", "path", path),
	)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initializeDB(db); err != nil {
		db.Close()

		return nil, fmt.Errorf("initialize db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()

		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteSessionRepository{
		db:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

func resolveDatabasePath(path string) (string, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("user config dir: %w", err)
		}

		path = filepath.Join(dir, DefaultDatabaseName)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}

	return path, nil
}

func initializeDB(db *sql.DB) (err error) {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS session_values (
			key        TEXT    PRIMARY KEY,
			value      TEXT    NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

func classify(err error) error {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) && liteErr.Code() == sqlite3.SQLITE_READONLY {
		return errors.Join(ErrReadOnlyStore, err)
	}

	return err
}

// Load implements Repository.Load using SQLite.
func (r *SQLiteSessionRepository) Load(ctx context.Context) (domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT key, value FROM session_values WHERE key IN (?, ?)",
		domain.SessionKeyToken,
		domain.SessionKeyRole,
	)
	if err != nil {
		return domain.Session{}, fmt.Errorf("query session: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, 2)

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return domain.Session{}, fmt.Errorf("scan session value: %w", err)
		}

		values[key] = value
	}

	if err := rows.Err(); err != nil {
		return domain.Session{}, fmt.Errorf("iterate session values: %w", err)
	}

	return sessionFromValues(values[domain.SessionKeyToken], values[domain.SessionKeyRole]), nil
}

// Save implements Repository.Save using SQLite. Both keys are written in one
// transaction so a reader never sees a role from a different token.
func (r *SQLiteSessionRepository) Save(ctx context.Context, s domain.Session) (err error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", classify(err))
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM session_values"); err != nil {
		return fmt.Errorf("delete session values: %w", classify(err))
	}

	now := time.Now().Unix()

	if token, ok := s.Token(); ok {
		if err := upsert(ctx, tx, domain.SessionKeyToken, token, now); err != nil {
			return err
		}
	}

	if role, ok := s.Role(); ok {
		if err := upsert(ctx, tx, domain.SessionKeyRole, role.String(), now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", classify(err))
	}

	r.log.DebugContext(ctx, "session saved", "hasRole", s.HasRole())

	return nil
}

func upsert(ctx context.Context, tx *sql.Tx, key, value string, now int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO session_values (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, now)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, classify(err))
	}

	return nil
}

// Clear implements Repository.Clear using SQLite.
func (r *SQLiteSessionRepository) Clear(ctx context.Context) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	if _, err := r.db.ExecContext(ctx, "DELETE FROM session_values"); err != nil {
		return fmt.Errorf("delete session values: %w", classify(err))
	}

	r.log.DebugContext(ctx, "session cleared")

	return nil
}

// Close implements Repository.Close by closing the database connection.
func (r *SQLiteSessionRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}

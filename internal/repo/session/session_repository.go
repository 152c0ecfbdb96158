package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkrupp/homecase-console/internal/domain"
)

// ErrUnknownBackend is returned for an unsupported SESSION_BACKEND value.
var ErrUnknownBackend = errors.New("unknown session backend")

// Backend names accepted by RepositoryConfig.Backend.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Repository persists the session values under the fixed keys
// domain.SessionKeyToken and domain.SessionKeyRole.
type Repository interface {
	// Load returns the stored session, or the zero session when nothing is stored.
	Load(ctx context.Context) (domain.Session, error)

	// Save replaces the stored session. An absent role removes the role key.
	Save(ctx context.Context, session domain.Session) error

	// Clear removes both keys.
	Clear(ctx context.Context) error

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
type RepositoryFactory func() (Repository, error)

// RepositoryConfig selects and configures the session backend.
type RepositoryConfig struct {
	// Backend is one of "sqlite", "redis", "file" or "memory"
	Backend string `env:"BACKEND" default:"sqlite"`

	SQLite SQLiteSessionRepositoryConfig `envPrefix:"SQLITE_"`
	Redis  RedisSessionRepositoryConfig  `envPrefix:"REDIS_"`
	File   FileSessionRepositoryConfig   `envPrefix:"FILE_"`
}

// NewRepositoryFactory returns the factory for the configured backend.
func NewRepositoryFactory(cfg RepositoryConfig) (RepositoryFactory, error) {
	switch cfg.Backend {
	case BackendSQLite, "":
		return SQLiteSessionRepositoryFactory(cfg.SQLite), nil
	case BackendRedis:
		return RedisSessionRepositoryFactory(cfg.Redis), nil
	case BackendFile:
		return FileSessionRepositoryFactory(cfg.File), nil
	case BackendMemory:
		return func() (Repository, error) { return NewMemorySessionRepository(), nil }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// sessionFromValues rebuilds a session from raw stored values. Unknown role
// values are treated as absent.
func sessionFromValues(token, role string) domain.Session {
	r, _ := domain.ParseRole(role)

	return domain.NewSession(token, r)
}

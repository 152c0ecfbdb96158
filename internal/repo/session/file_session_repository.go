package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mkrupp/homecase-console/internal/domain"
	"github.com/mkrupp/homecase-console/internal/infra/logging"
)

// ErrBytesWrittenMismatch is returned when a session value file was not fully written.
var ErrBytesWrittenMismatch = errors.New("bytes written mismatch")

const (
	// DefaultSessionDir is created under the user config directory when no
	// Basedir is configured.
	DefaultSessionDir = "homecase-console/session"

	fileName = "session.env"
	lockName = ".lock"
)

// FileSessionRepositoryConfig holds configuration for the file session repository.
type FileSessionRepositoryConfig struct {
	// Basedir holds the session file.
	// Empty means <user config dir>/homecase-console/session.
	Basedir string `env:"BASEDIR" default:""`
}

// FileSessionRepository implements Repository with a single dotenv-formatted
// file, <basedir>/session.env, holding every key. Token and role are replaced
// together by one rename. Concurrent console processes are serialized with
// flock on <basedir>/.lock.
type FileSessionRepository struct {
	basedir string
	log     logging.Logger
}

var _ Repository = (*FileSessionRepository)(nil)

// FileSessionRepositoryFactory creates a factory function that returns a new FileSessionRepository.
func FileSessionRepositoryFactory(cfg FileSessionRepositoryConfig) RepositoryFactory {
	return func() (Repository, error) {
		return NewFileSessionRepository(cfg)
	}
}

// NewFileSessionRepository creates the base directory if needed.
func NewFileSessionRepository(cfg FileSessionRepositoryConfig) (*FileSessionRepository, error) {
	basedir := cfg.Basedir
	if basedir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("user config dir: %w", err)
		}

		basedir = filepath.Join(dir, DefaultSessionDir)
	}

	if err := os.MkdirAll(basedir, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir all: %w", err)
	}

	return &FileSessionRepository{
		basedir: basedir,
		log: logging.GetLogger("repo.session.file_session_repository").With(
			logging.Group("repo", "basedir", basedir),
		),
	}, nil
}

// Filename returns the path of the session file.
func (r *FileSessionRepository) Filename() string {
	return filepath.Join(r.basedir, fileName)
}

// Load implements Repository.Load.
func (r *FileSessionRepository) Load(ctx context.Context) (domain.Session, error) {
	release, err := r.flock(ctx, syscall.LOCK_SH)
	if err != nil {
		return domain.Session{}, err
	}
	defer release()

	values, err := r.readValues()
	if err != nil {
		return domain.Session{}, err
	}

	return sessionFromValues(values[domain.SessionKeyToken], values[domain.SessionKeyRole]), nil
}

// Save implements Repository.Save.
func (r *FileSessionRepository) Save(ctx context.Context, s domain.Session) (err error) {
	defer func() {
		if err != nil {
			r.log.ErrorContext(ctx, "session save failed", "error", err)
		} else {
			r.log.DebugContext(ctx, "session saved", "hasRole", s.HasRole())
		}
	}()

	release, err := r.flock(ctx, syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer release()

	values := make(map[string]string, 2)

	if token, ok := s.Token(); ok {
		values[domain.SessionKeyToken] = token
	}

	if role, ok := s.Role(); ok {
		values[domain.SessionKeyRole] = role.String()
	}

	return r.writeValues(values)
}

// Clear implements Repository.Clear.
func (r *FileSessionRepository) Clear(ctx context.Context) error {
	release, err := r.flock(ctx, syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer release()

	return r.remove()
}

// Close implements Repository.Close.
func (r *FileSessionRepository) Close() error {
	return nil
}

func (r *FileSessionRepository) flock(ctx context.Context, mode int) (release func(), err error) {
	lockfile := filepath.Join(r.basedir, lockName)
	log := r.log.With(logging.Group("session", "lockfile", lockfile))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "lock failed", "error", err)
		}
	}()

	file, err := os.OpenFile(lockfile, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(file.Fd()), mode); err != nil {
		_ = file.Close()

		return nil, fmt.Errorf("flock: %w", err)
	}

	return func() {
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		_ = file.Close()
	}, nil
}

// readValues returns an empty map for a missing file.
func (r *FileSessionRepository) readValues() (map[string]string, error) {
	data, err := os.ReadFile(r.Filename())
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	values, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}

	return values, nil
}

// writeValues replaces the session file through a rename. No values removes it.
func (r *FileSessionRepository) writeValues(values map[string]string) error {
	if len(values) == 0 {
		return r.remove()
	}

	content, err := godotenv.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	content += "\n"

	tmp, err := os.CreateTemp(r.basedir, fileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if n, err := tmp.WriteString(content); err != nil {
		return fmt.Errorf("write session: %w", err)
	} else if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync session: %w", err)
	} else if info, err := tmp.Stat(); err != nil {
		return fmt.Errorf("stat session: %w", err)
	} else if int64(n) != info.Size() || n != len(content) {
		return fmt.Errorf("%w: expected %d, got %d", ErrBytesWrittenMismatch, len(content), n)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.Filename()); err != nil {
		return fmt.Errorf("rename session: %w", err)
	}

	return nil
}

func (r *FileSessionRepository) remove() error {
	if err := os.Remove(r.Filename()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}

	return nil
}

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkrupp/homecase-console/internal/domain"
	"github.com/mkrupp/homecase-console/internal/infra/logging"
)

// RedisSessionRepositoryConfig holds configuration for the Redis session repository.
type RedisSessionRepositoryConfig struct {
	// URL is a redis:// or rediss:// connection URL
	URL string `env:"URL" default:"redis://localhost:6379/0"`
	// KeyPrefix namespaces the session keys, e.g. "homecase:console:token"
	KeyPrefix string `env:"KEY_PREFIX" default:"homecase:console"`
	// DialTimeout bounds connection setup
	DialTimeout time.Duration `env:"DIAL_TIMEOUT" default:"5s"`
}

// RedisSessionRepository implements Repository on a Redis server, which lets
// several operator machines share one console session.
type RedisSessionRepository struct {
	client *redis.Client
	log    logging.Logger
	prefix string
}

var _ Repository = (*RedisSessionRepository)(nil)

// RedisSessionRepositoryFactory creates a factory function that returns a new RedisSessionRepository.
func RedisSessionRepositoryFactory(cfg RedisSessionRepositoryConfig) RepositoryFactory {
	return func() (Repository, error) {
		return NewRedisSessionRepository(context.Background(), cfg)
	}
}

// NewRedisSessionRepository connects to Redis and verifies the connection.
func NewRedisSessionRepository(ctx context.Context, cfg RedisSessionRepositoryConfig) (*RedisSessionRepository, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if cfg.DialTimeout > 0 {
		opt.DialTimeout = cfg.DialTimeout
	}

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()

		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewRedisSessionRepositoryWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisSessionRepositoryWithClient wraps an existing client.
func NewRedisSessionRepositoryWithClient(client *redis.Client, keyPrefix string) *RedisSessionRepository {
	return &RedisSessionRepository{
		client: client,
		log: logging.GetLogger("repo.session.redis_session_repository").With(
			logging.Group("redis", "addr", client.Options().Addr, "prefix", keyPrefix),
		),
		prefix: keyPrefix,
	}
}

func (r *RedisSessionRepository) key(name string) string {
	if r.prefix == "" {
		return name
	}

	return r.prefix + ":" + name
}

// Load implements Repository.Load using MGET.
func (r *RedisSessionRepository) Load(ctx context.Context) (domain.Session, error) {
	values, err := r.client.MGet(ctx, r.key(domain.SessionKeyToken), r.key(domain.SessionKeyRole)).Result()
	if err != nil {
		return domain.Session{}, fmt.Errorf("mget session: %w", err)
	}

	str := func(v any) string {
		s, _ := v.(string)

		return s
	}

	return sessionFromValues(str(values[0]), str(values[1])), nil
}

// Save implements Repository.Save in a MULTI/EXEC transaction.
func (r *RedisSessionRepository) Save(ctx context.Context, s domain.Session) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key(domain.SessionKeyToken), r.key(domain.SessionKeyRole))

		if token, ok := s.Token(); ok {
			pipe.Set(ctx, r.key(domain.SessionKeyToken), token, 0)
		}

		if role, ok := s.Role(); ok {
			pipe.Set(ctx, r.key(domain.SessionKeyRole), role.String(), 0)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	r.log.DebugContext(ctx, "session saved", "hasRole", s.HasRole())

	return nil
}

// Clear implements Repository.Clear.
func (r *RedisSessionRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key(domain.SessionKeyToken), r.key(domain.SessionKeyRole)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	r.log.DebugContext(ctx, "session cleared")

	return nil
}

// Close implements Repository.Close.
func (r *RedisSessionRepository) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("close redis: %w", err)
	}

	return nil
}

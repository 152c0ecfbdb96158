//go:build integration || all

package session_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkrupp/homecase-console/internal/util/ident"

	. "github.com/mkrupp/homecase-console/internal/repo/session"
)

func TestRedisSessionRepository(t *testing.T) {
	t.Parallel()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	repo, err := NewRedisSessionRepository(context.Background(), RedisSessionRepositoryConfig{
		URL:       url,
		KeyPrefix: "homecase:test:" + ident.NewTraceID(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	exerciseRepository(t, repo)
}

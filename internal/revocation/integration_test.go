package revocation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Интеграционные тесты внешних хранилищ отозванных токенов (Redis, PostgreSQL).
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/revocation -v -race -count=1

func skipUnlessIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}
}

func startRedis(t *testing.T) (*Redis, func()) {
	t.Helper()
	skipUnlessIntegration(t)

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "6379/tcp")

	st, err := NewRedis(ctx, fmt.Sprintf("redis://%s:%s/0", host, port.Port()), "test:revoked:", 0)
	require.NoError(t, err)

	return st, func() {
		_ = st.Close()
		_ = c.Terminate(context.Background())
	}
}

func startPostgres(t *testing.T) (*Postgres, func()) {
	t.Helper()
	skipUnlessIntegration(t)

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "5432/tcp")
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	_, thisFile, _, _ := runtime.Caller(0)
	migration, err := os.ReadFile(filepath.Join(filepath.Dir(thisFile), "..", "..", "migrations", "2_revoked_tokens.up.sql"))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(migration))
	require.NoError(t, err)

	return NewPostgres(pool), func() {
		pool.Close()
		_ = c.Terminate(context.Background())
	}
}

func TestIntegration_Redis_RevokeIdempotentAndTTL(t *testing.T) {
	st, cleanup := startRedis(t)
	defer cleanup()

	ctx := context.Background()
	tok := tokenWithExp(t, time.Now().Add(2*time.Second))

	require.NoError(t, st.Revoke(ctx, tok))
	require.NoError(t, st.Revoke(ctx, tok))

	revoked, err := st.IsRevoked(ctx, tok)
	require.NoError(t, err)
	require.True(t, revoked)

	ttl, err := st.rdb.TTL(ctx, st.key(tok)).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
	require.LessOrEqual(t, ttl, 2*time.Second)

	// Redis сам удаляет запись по истечении exp.
	require.Eventually(t, func() bool {
		revoked, err := st.IsRevoked(ctx, tok)
		return err == nil && !revoked
	}, 5*time.Second, 100*time.Millisecond)

	removed, err := st.Sweep(ctx, time.Now())
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestIntegration_Redis_GarbageTokenStored(t *testing.T) {
	st, cleanup := startRedis(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, st.Revoke(ctx, "garbage"))

	revoked, err := st.IsRevoked(ctx, "garbage")
	require.NoError(t, err)
	require.True(t, revoked)

	ttl, err := st.rdb.TTL(ctx, st.key("garbage")).Result()
	require.NoError(t, err)
	require.LessOrEqual(t, ttl, garbageTTL)
}

func TestIntegration_Redis_ClosedClientReturnsError(t *testing.T) {
	skipUnlessIntegration(t)

	st := NewRedisWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), "", 0)
	_, err := st.IsRevoked(context.Background(), "t")
	require.Error(t, err)
}

func TestIntegration_Postgres_RevokeCheckSweep(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()
	live := tokenWithExp(t, now.Add(time.Hour))
	expired := tokenWithExp(t, now.Add(-time.Minute))

	require.NoError(t, st.Revoke(ctx, live))
	require.NoError(t, st.Revoke(ctx, live))
	require.NoError(t, st.Revoke(ctx, expired))
	require.NoError(t, st.Revoke(ctx, "garbage"))

	for _, tok := range []string{live, expired, "garbage"} {
		revoked, err := st.IsRevoked(ctx, tok)
		require.NoError(t, err)
		require.True(t, revoked)
	}

	removed, err := st.Sweep(ctx, now.Add(time.Second))
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	revoked, err := st.IsRevoked(ctx, live)
	require.NoError(t, err)
	require.True(t, revoked)
}

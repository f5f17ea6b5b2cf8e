package session_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/billybuddy/internal/portal/session"
)

func exercisePersistence(t *testing.T, p session.Persistence) {
	t.Helper()
	ctx := context.Background()

	got, err := p.Load(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	want := sessionFor("u1")
	require.NoError(t, p.Save(ctx, "visitor", want))

	got, err = p.Load(ctx, "visitor")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.UserID, got.UserID)
	assert.Equal(t, want.RefreshToken, got.RefreshToken)
	assert.WithinDuration(t, want.ExpiresAt, got.ExpiresAt, time.Second)

	require.NoError(t, p.Delete(ctx, "visitor"))
	got, err = p.Load(ctx, "visitor")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, p.Save(ctx, "visitor", nil))
}

func TestMemoryPersistence(t *testing.T) {
	t.Parallel()
	exercisePersistence(t, session.NewMemoryPersistence())
}

// setupRedisContainer starts a throwaway Redis and returns its address.
func setupRedisContainer(t *testing.T) (string, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return fmt.Sprintf("%s:%s", host, mappedPort.Port()), cleanup
}

func TestRedisPersistence(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	addr, cleanup := setupRedisContainer(t)
	defer cleanup()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	require.NoError(t, client.Ping(t.Context()).Err())

	p := session.NewRedisPersistence(client, "billybuddy:test:", time.Minute)
	exercisePersistence(t, p)

	require.NoError(t, p.Save(t.Context(), "ttl", sessionFor("u2")))
	ttl, err := client.TTL(t.Context(), "billybuddy:test:ttl").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	require.NoError(t, client.Set(t.Context(), "billybuddy:test:broken", "{not json", 0).Err())
	_, err = p.Load(t.Context(), "broken")
	assert.Error(t, err)
}

//go:build integration

package services

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()

	container, err := testcontainers.GenericContainer(t.Context(), testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, container)

	endpoint, err := container.Endpoint(t.Context(), "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisTokenRevokerIntegration(t *testing.T) {
	client := startRedis(t)
	revoker := NewRedisTokenRevoker(client)

	t.Run("jti révoqué jusqu'à son expiration", func(t *testing.T) {
		jti := gofakeit.UUID()

		revoked, err := revoker.IsRevoked(t.Context(), jti)
		require.NoError(t, err)
		assert.False(t, revoked)

		require.NoError(t, revoker.Revoke(t.Context(), jti, time.Now().Add(time.Hour)))
		revoked, err = revoker.IsRevoked(t.Context(), jti)
		require.NoError(t, err)
		assert.True(t, revoked)

		ttl, err := client.TTL(t.Context(), revokedKeyPrefix+jti).Result()
		require.NoError(t, err)
		assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)
	})

	t.Run("jeton déjà expiré ignoré", func(t *testing.T) {
		jti := gofakeit.UUID()
		require.NoError(t, revoker.Revoke(t.Context(), jti, time.Now().Add(-time.Minute)))

		revoked, err := revoker.IsRevoked(t.Context(), jti)
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}

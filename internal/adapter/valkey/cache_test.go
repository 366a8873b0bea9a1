//go:build integration

package valkey_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/couchcryptid/saferoute-scoring-service/internal/adapter/valkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startValkey(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "valkey/valkey:8-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err, "start valkey container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, port.Port())
}

func TestCache_SetGetAndMiss(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	cache, err := valkey.New(startValkey(ctx, t))
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	require.NoError(t, cache.CheckReadiness(ctx))

	got, err := cache.Get(ctx, "hazards:v1:48")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, cache.Set(ctx, "hazards:v1:48", []byte(`[{"id":"1"}]`), time.Minute))
	got, err = cache.Get(ctx, "hazards:v1:48")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))
}

func TestCache_Expires(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	cache, err := valkey.New(startValkey(ctx, t))
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	require.NoError(t, cache.Set(ctx, "short", []byte("x"), time.Second))
	assert.Eventually(t, func() bool {
		got, err := cache.Get(ctx, "short")
		return err == nil && got == nil
	}, 5*time.Second, 100*time.Millisecond)
}

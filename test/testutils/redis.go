package testutils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/alchemorsel/recipebook/internal/infrastructure/config"
)

// TestRedis provides a Redis container with cleanup
type TestRedis struct {
	Container testcontainers.Container
	Config    config.RedisConfig
}

// SetupTestRedis starts a Redis container and returns its connection settings
func SetupTestRedis(t *testing.T) *TestRedis {
	ctx := context.Background()
	port := nat.Port("6379/tcp")

	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{string(port)},
				WaitingFor: wait.ForAll(
					wait.ForLog("Ready to accept connections"),
					wait.ForListeningPort(port),
				).WithDeadline(60 * time.Second),
			},
			Started: true,
		})
	require.NoError(t, err, "Failed to start redis container")

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mapped, err := container.MappedPort(ctx, port)
	require.NoError(t, err)

	tr := &TestRedis{
		Container: container,
		Config: config.RedisConfig{
			Host:         host,
			Port:         mapped.Int(),
			KeyPrefix:    fmt.Sprintf("test:%d:", time.Now().UnixNano()),
			MaxRetries:   1,
			PoolSize:     2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	})

	return tr
}

//go:build integration

package session

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container and returns a client.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: endpoint,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

// TestTracker_Integration_SharedIdentity checks that a login performed by
// one tracker becomes visible to another tracker on Refresh.
func TestTracker_Integration_SharedIdentity(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	ctx := context.Background()
	first := NewTracker(NewRedisStore(redisClient, "", 0), zerolog.Nop())
	second := NewTracker(NewRedisStore(redisClient, "", 0), zerolog.Nop())

	if err := first.Login(ctx, "user-42"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := second.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if got := second.IdentityToken(); got != "user-42" {
		t.Errorf("second tracker token = %q, want %q", got, "user-42")
	}

	if err := first.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if err := second.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if got := second.IdentityToken(); got != "" {
		t.Errorf("second tracker token after logout = %q, want empty", got)
	}
}

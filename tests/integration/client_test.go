package integration

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rowview/rowview/internal/testutil"
	"github.com/rowview/rowview/pkg/api"
	"github.com/rowview/rowview/pkg/loader"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// TestCachedRequestFlow tests the full flow: request → cache fill → cache hit.
func TestCachedRequestFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockSource(testutil.GenerateRows(500))
	defer mock.Close()

	cfg := api.DefaultConfig(mock.URL())
	cfg.Redis = redisClient
	cfg.CacheTTL = time.Minute

	client, err := api.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()

	// First request hits the source.
	first, err := client.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if first.Count != 500 {
		t.Errorf("Count = %d, want 500", first.Count)
	}
	if got := mock.GetRequestCount(); got != 1 {
		t.Fatalf("RequestCount = %d, want 1", got)
	}

	// Second request is served from Redis.
	second, err := client.Count(ctx)
	if err != nil {
		t.Fatalf("Cached Count failed: %v", err)
	}
	if second.Count != first.Count {
		t.Errorf("Cached count = %d, want %d", second.Count, first.Count)
	}
	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("RequestCount = %d, want 1 (second count must be a cache hit)", got)
	}
}

// TestCachedLoadFlow runs a full batched load twice; the second run must be
// answered entirely from the cache.
func TestCachedLoadFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockSource(testutil.GenerateRows(300))
	defer mock.Close()

	cfg := api.DefaultConfig(mock.URL())
	cfg.Redis = redisClient
	cfg.CacheTTL = time.Minute

	client, err := api.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ldr := loader.New(client, nil)
	loadCfg := loader.Config{
		Strategy:  loader.StrategySequential,
		BatchSize: 100,
	}

	first, err := ldr.Load(context.Background(), loadCfg)
	if err != nil {
		t.Fatalf("First load failed: %v", err)
	}
	requestsAfterFirst := mock.GetRequestCount()
	if requestsAfterFirst != 4 { // count + 3 batches
		t.Errorf("RequestCount = %d, want 4", requestsAfterFirst)
	}

	second, err := ldr.Load(context.Background(), loadCfg)
	if err != nil {
		t.Fatalf("Second load failed: %v", err)
	}
	if got := mock.GetRequestCount(); got != requestsAfterFirst {
		t.Errorf("RequestCount = %d, want %d (second load must be all cache hits)", got, requestsAfterFirst)
	}

	if len(first.Rows) != len(second.Rows) {
		t.Fatalf("Row counts differ: %d vs %d", len(first.Rows), len(second.Rows))
	}
	for i := range first.Rows {
		if first.Rows[i] != second.Rows[i] {
			t.Fatalf("Row %d differs between loads", i)
		}
	}
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis creates a test Redis client, skipping when unavailable.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestStore_SetGet(t *testing.T) {
	store := NewStore(setupTestRedis(t), time.Minute)
	ctx := context.Background()
	key := Key{Endpoint: "/data/count"}

	body := []byte(`{"count": 100000}`)
	if err := store.Set(ctx, key, body); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != string(body) {
		t.Errorf("Get = %q, want %q", got, body)
	}
}

func TestStore_Miss(t *testing.T) {
	store := NewStore(setupTestRedis(t), time.Minute)

	_, err := store.Get(context.Background(), Key{Endpoint: "/nope"})
	if err != ErrCacheMiss {
		t.Errorf("Get = %v, want ErrCacheMiss", err)
	}
}

func TestStore_Expiry(t *testing.T) {
	store := NewStore(setupTestRedis(t), 50*time.Millisecond)
	ctx := context.Background()
	key := Key{Endpoint: "/data/count"}

	if err := store.Set(ctx, key, []byte("x")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(80 * time.Millisecond)

	if _, err := store.Get(ctx, key); err != ErrCacheMiss {
		t.Errorf("Get after expiry = %v, want ErrCacheMiss", err)
	}
}

func TestStore_Delete(t *testing.T) {
	store := NewStore(setupTestRedis(t), time.Minute)
	ctx := context.Background()
	key := Key{Endpoint: "/data"}

	if err := store.Set(ctx, key, []byte("x")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, key); err != ErrCacheMiss {
		t.Errorf("Get after delete = %v, want ErrCacheMiss", err)
	}
}

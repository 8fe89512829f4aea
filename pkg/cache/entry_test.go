package cache

import (
	"testing"
	"time"
)

func TestEntry_IsExpired(t *testing.T) {
	fresh := Entry{Expires: time.Now().Add(time.Minute)}
	if fresh.IsExpired() {
		t.Error("Fresh entry reported expired")
	}

	stale := Entry{Expires: time.Now().Add(-time.Minute)}
	if !stale.IsExpired() {
		t.Error("Stale entry reported fresh")
	}
}

func TestEntry_TTL(t *testing.T) {
	entry := Entry{Expires: time.Now().Add(time.Minute)}
	ttl := entry.TTL()
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %v, want within (0, 1m]", ttl)
	}

	expired := Entry{Expires: time.Now().Add(-time.Minute)}
	if expired.TTL() != 0 {
		t.Errorf("TTL of expired entry = %v, want 0", expired.TTL())
	}
}

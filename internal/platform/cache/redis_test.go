package cache

import (
	"context"
	"testing"
	"time"
)

func TestNewRedisStore_RejectsBadURL(t *testing.T) {
	t.Parallel()

	if _, err := NewRedisStore(context.Background(), "not-a-redis-url", "pl:", time.Minute); err == nil {
		t.Fatalf("expected error for invalid redis url")
	}
}

func TestNewRedisStore_FailsWhenUnreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := NewRedisStore(ctx, "redis://127.0.0.1:1/0", "pl:", time.Minute); err == nil {
		t.Fatalf("expected ping error for unreachable redis")
	}
}

func TestRedisStore_PrefixesKeys(t *testing.T) {
	t.Parallel()

	store := NewRedisStoreFromClient(nil, "prediction-league:", time.Minute)
	if got := store.key("fixtures:ids:1-2"); got != "prediction-league:fixtures:ids:1-2" {
		t.Fatalf("unexpected key: got=%q want=%q", got, "prediction-league:fixtures:ids:1-2")
	}
}

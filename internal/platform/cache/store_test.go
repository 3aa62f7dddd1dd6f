package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_ExpiresEntriesAfterTTL(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	store := NewStoreWithClock(time.Minute, clock)
	ctx := context.Background()

	store.Set(ctx, "fixtures:1-2", []int{1, 2})
	if _, ok := store.Get(ctx, "fixtures:1-2"); !ok {
		t.Fatalf("expected fresh entry")
	}

	clock.Advance(59 * time.Second)
	if _, ok := store.Get(ctx, "fixtures:1-2"); !ok {
		t.Fatalf("entry expired too early")
	}

	clock.Advance(time.Second)
	if _, ok := store.Get(ctx, "fixtures:1-2"); ok {
		t.Fatalf("expected entry to expire at ttl")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	ctx := context.Background()
	store.Set(ctx, "competition:1", 1)
	store.Set(ctx, "competition:2", 2)
	store.Set(ctx, "season:1", 3)

	store.DeletePrefix(ctx, "competition:")
	if _, ok := store.Get(ctx, "competition:1"); ok {
		t.Fatalf("expected competition:1 removed")
	}
	if _, ok := store.Get(ctx, "season:1"); !ok {
		t.Fatalf("expected season:1 kept")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")

package ratelimit

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fetcharr/internal/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func sqliteLedger(t *testing.T, limit int, window time.Duration) *SQLiteLedger {
	t.Helper()
	d, err := database.InitDB(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return NewSQLiteLedger(d.DB, limit, window)
}

func redisLedger(t *testing.T, limit int, window time.Duration) *RedisLedger {
	t.Helper()
	mr := miniredis.RunT(t)
	l := NewRedisLedger(redis.NewClient(&redis.Options{Addr: mr.Addr()}), limit, window)
	t.Cleanup(func() { l.Close() })
	return l
}

func ledgers(t *testing.T, limit int, window time.Duration) map[string]Ledger {
	return map[string]Ledger{
		"sqlite": sqliteLedger(t, limit, window),
		"redis":  redisLedger(t, limit, window),
	}
}

func TestSlidingWindow(t *testing.T) {
	t.Parallel()

	for name, l := range ledgers(t, 2, time.Minute) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

			steps := []struct {
				at      time.Duration
				allowed bool
			}{
				{0, true},
				{10 * time.Second, true},
				{20 * time.Second, false},
				{59 * time.Second, false},
				{60 * time.Second, true},
				{65 * time.Second, false},
				{70 * time.Second, true},
			}
			for _, s := range steps {
				dec, err := l.Allow(ctx, "203.0.113.7", t0.Add(s.at))
				if err != nil {
					t.Fatalf("Allow at +%v: %v", s.at, err)
				}
				if dec.Allowed != s.allowed {
					t.Fatalf("Allow at +%v = %v, want %v", s.at, dec.Allowed, s.allowed)
				}
			}
		})
	}
}

func TestRejectionReportsRetryAfter(t *testing.T) {
	t.Parallel()

	for name, l := range ledgers(t, 1, time.Minute) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

			dec, err := l.Allow(ctx, "a", t0)
			if err != nil || !dec.Allowed || dec.Remaining != 0 {
				t.Fatalf("first Allow = %+v, %v", dec, err)
			}
			dec, err = l.Allow(ctx, "a", t0.Add(15*time.Second))
			if err != nil || dec.Allowed {
				t.Fatalf("second Allow = %+v, %v", dec, err)
			}
			if dec.RetryAfter != 45*time.Second {
				t.Fatalf("RetryAfter = %v, want 45s", dec.RetryAfter)
			}

			other, err := l.Allow(ctx, "b", t0.Add(15*time.Second))
			if err != nil || !other.Allowed {
				t.Fatalf("addresses must be counted separately: %+v, %v", other, err)
			}
		})
	}
}

func TestConcurrentQuota(t *testing.T) {
	t.Parallel()

	const (
		limit   = 10
		callers = 40
	)
	for name, l := range ledgers(t, limit, time.Hour) {
		t.Run(name, func(t *testing.T) {
			var (
				wg      sync.WaitGroup
				allowed atomic.Int32
				failed  atomic.Int32
			)
			now := time.Now()
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					dec, err := l.Allow(context.Background(), "198.51.100.1", now)
					if err != nil {
						failed.Add(1)
						return
					}
					if dec.Allowed {
						allowed.Add(1)
					}
				}()
			}
			wg.Wait()

			if failed.Load() != 0 {
				t.Fatalf("%d Allow calls errored", failed.Load())
			}
			if got := allowed.Load(); got != limit {
				t.Fatalf("admitted %d concurrent requests, want exactly %d", got, limit)
			}
		})
	}
}

func TestSQLitePrune(t *testing.T) {
	t.Parallel()

	l := sqliteLedger(t, 5, time.Minute)
	ctx := context.Background()
	t0 := time.Now()

	for _, addr := range []string{"a", "b", "c"} {
		if _, err := l.Allow(ctx, addr, t0); err != nil {
			t.Fatalf("Allow: %v", err)
		}
	}
	if _, err := l.Allow(ctx, "a", t0.Add(50*time.Second)); err != nil {
		t.Fatalf("Allow: %v", err)
	}

	n, err := l.Prune(ctx, t0.Add(90*time.Second))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 3 {
		t.Fatalf("pruned %d hits, want 3", n)
	}
}

func TestUnlimited(t *testing.T) {
	t.Parallel()

	var l Ledger = Unlimited{}
	for i := 0; i < 100; i++ {
		if dec, _ := l.Allow(context.Background(), "x", time.Now()); !dec.Allowed {
			t.Fatal("Unlimited rejected a request")
		}
	}
}

package app

import (
	"context"
	"fmt"

	"fetcharr/internal/config"
	"fetcharr/internal/database"
	"fetcharr/internal/ratelimit"

	"github.com/redis/go-redis/v9"
)

// openLedger returns the configured rate-limit ledger.
//
// db is only used by the SQLite backend and may be nil otherwise.
func openLedger(ctx context.Context, s config.Settings, db *database.Database) (ratelimit.Ledger, error) {
	if s.RateLimit <= 0 {
		return ratelimit.Unlimited{}, nil
	}

	switch s.LedgerBackend {
	case config.LedgerRedis:
		client := redis.NewClient(&redis.Options{Addr: s.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("could not reach redis at %q: %w", s.RedisAddr, err)
		}
		return ratelimit.NewRedisLedger(client, s.RateLimit, s.RateWindow), nil
	default:
		if db == nil {
			return nil, fmt.Errorf("sqlite ledger requires an open database")
		}
		return ratelimit.NewSQLiteLedger(db.DB, s.RateLimit, s.RateWindow), nil
	}
}

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"fetcharr/internal/domain/consts"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// allowScript trims the sorted set to the window, then admits and records the hit if room remains.
//
// Scores are Unix milliseconds. Returns {allowed, count, oldest}.
var allowScript = redis.NewScript(`
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit  = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  local score = 0
  if oldest[2] then score = tonumber(oldest[2]) end
  return {0, count, score}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, count + 1, 0}
`)

// RedisLedger shares one ledger between server replicas.
type RedisLedger struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
	prefix string
}

// NewRedisLedger returns a ledger backed by client.
func NewRedisLedger(client redis.UniversalClient, limit int, window time.Duration) *RedisLedger {
	return &RedisLedger{
		client: client,
		limit:  limit,
		window: window,
		prefix: consts.ProgramName + ":ratelimit:",
	}
}

// Allow runs the check-and-record script atomically on the server.
func (l *RedisLedger) Allow(ctx context.Context, addr string, now time.Time) (Decision, error) {
	dec := Decision{Limit: l.limit}

	vals, err := allowScript.Run(ctx, l.client,
		[]string{l.prefix + addr},
		now.UnixMilli(), l.window.Milliseconds(), l.limit, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return dec, fmt.Errorf("rate limit script failed for %q: %w", addr, err)
	}
	if len(vals) != 3 {
		return dec, fmt.Errorf("rate limit script returned %d values", len(vals))
	}

	if vals[0] == 0 {
		if vals[2] > 0 {
			dec.RetryAfter = retryAfter(time.UnixMilli(vals[2]), now, l.window)
		}
		return dec, nil
	}
	dec.Allowed = true
	dec.Remaining = l.limit - int(vals[1])
	return dec, nil
}

// Prune is a no-op; keys expire on their own.
func (l *RedisLedger) Prune(context.Context, time.Time) (int64, error) { return 0, nil }

// Close closes the client.
func (l *RedisLedger) Close() error { return l.client.Close() }

package budget

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DistributedWindow is a Redis-backed rolling-window budget, used when
// several cooperating processes (e.g. a conversational core and a
// diagnostics sidecar) must share one limit. Grounded on the teacher's
// internal/workspaces.RedisGenerationCache: a sorted set keyed by name
// holds one member per event, scored by its Unix-nanosecond timestamp, and
// ZREMRANGEBYSCORE prunes anything older than the window on every call.
type DistributedWindow struct {
	client redis.UniversalClient
	key    string
	limit  int
	window time.Duration
}

// NewDistributedWindow builds a DistributedWindow backed by client. Errors
// talking to Redis degrade to "allowed" (fail-open) rather than blocking
// the control loop on a cache outage; callers needing fail-closed behavior
// should check client connectivity separately.
func NewDistributedWindow(client redis.UniversalClient, key string, limit int, window time.Duration) *DistributedWindow {
	return &DistributedWindow{client: client, key: key, limit: limit, window: window}
}

func (d *DistributedWindow) pruneAndCount(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-d.window).UnixNano()
	pipe := d.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, d.key, "-inf", strconv.FormatInt(cutoff, 10))
	count := pipe.ZCard(ctx, d.key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return count.Val(), nil
}

// Allow reports whether another event is currently permitted.
func (d *DistributedWindow) Allow(now time.Time) bool {
	if d.limit <= 0 {
		return true
	}
	n, err := d.pruneAndCount(context.Background(), now)
	if err != nil {
		log.Warn().Err(err).Str("key", d.key).Msg("budget_redis_allow_failed")
		return true
	}
	return n < int64(d.limit)
}

// Record appends now to the window, ignoring transport errors (logged).
func (d *DistributedWindow) Record(now time.Time) {
	if d.limit <= 0 {
		return
	}
	ctx := context.Background()
	member := strconv.FormatInt(now.UnixNano(), 10)
	if err := d.client.ZAdd(ctx, d.key, redis.Z{Score: float64(now.UnixNano()), Member: member}).Err(); err != nil {
		log.Warn().Err(err).Str("key", d.key).Msg("budget_redis_record_failed")
		return
	}
	d.client.Expire(ctx, d.key, d.window+time.Second)
}

// TryRecord checks Allow and Records atomically enough for this budget's
// purposes: a Lua-free best-effort check-then-add. Under heavy concurrent
// contention this can overshoot the limit by a small margin; callers that
// require a hard cap should prefer the in-process Window.
func (d *DistributedWindow) TryRecord(now time.Time) bool {
	if !d.Allow(now) {
		return false
	}
	d.Record(now)
	return true
}

// Remaining returns how many more events are allowed within the window.
func (d *DistributedWindow) Remaining(now time.Time) int {
	if d.limit <= 0 {
		return -1
	}
	n, err := d.pruneAndCount(context.Background(), now)
	if err != nil {
		log.Warn().Err(err).Str("key", d.key).Msg("budget_redis_remaining_failed")
		return d.limit
	}
	remaining := d.limit - int(n)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

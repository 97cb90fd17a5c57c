// Package ratelimiter enforces per-user evaluation quotas with a Redis token
// bucket, optionally mirrored to PostgreSQL so buckets survive a Redis flush.
package ratelimiter

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces quota buckets in Redis.
const KeyPrefix = "quota:"

// BucketStore is the subset of a pgx pool used to mirror buckets.
type BucketStore interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// BucketConfig sizes a token bucket.
type BucketConfig struct {
	Capacity   int64
	RefillRate float64 // tokens per second
}

// NewBucketConfigFromPerDay returns a bucket holding perDay tokens that refills
// evenly over 24h. Non-positive values disable the quota.
func NewBucketConfigFromPerDay(perDay int) BucketConfig {
	if perDay <= 0 {
		return BucketConfig{}
	}
	return BucketConfig{
		Capacity:   int64(perDay),
		RefillRate: float64(perDay) / (24 * time.Hour).Seconds(),
	}
}

// Enabled reports whether the bucket limits anything.
func (c BucketConfig) Enabled() bool { return c.Capacity > 0 && c.RefillRate > 0 }

// QuotaLimiter implements domain.QuotaLimiter. Every user shares the default
// bucket size unless an override is set for them.
type QuotaLimiter struct {
	redis     *redis.Client
	store     BucketStore
	defaults  BucketConfig
	overrides map[string]BucketConfig
	script    *redis.Script
	now       func() time.Time
	mu        sync.RWMutex
}

// NewQuotaLimiter returns nil when rdb is nil; a nil limiter allows everything.
func NewQuotaLimiter(rdb *redis.Client, store BucketStore, defaults BucketConfig) *QuotaLimiter {
	if rdb == nil {
		return nil
	}
	return &QuotaLimiter{
		redis:     rdb,
		store:     store,
		defaults:  defaults,
		overrides: map[string]BucketConfig{},
		script:    redis.NewScript(luaTokenBucketScript),
		now:       time.Now,
	}
}

// Fractional values are returned as strings; Redis truncates Lua numbers to integers.
const luaTokenBucketScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill_rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local tokens = capacity
local last_refill = now

local data = redis.call("HMGET", key, "tokens", "last_refill")
if data[1] then
  tokens = tonumber(data[1])
end
if data[2] then
  last_refill = tonumber(data[2])
end

local delta = now - last_refill
if delta < 0 then
  delta = 0
end

tokens = math.min(capacity, tokens + delta * refill_rate)

local allowed = 0
local retry_after = 0

if tokens >= cost then
  tokens = tokens - cost
  allowed = 1
else
  retry_after = (cost - tokens) / refill_rate
end

redis.call("HSET", key, "tokens", tostring(tokens), "last_refill", tostring(now))
redis.call("EXPIRE", key, ttl)

return { allowed, tostring(tokens), tostring(now), tostring(retry_after) }
`

// Allow consumes cost tokens from the user's bucket. Redis errors fail open
// and are returned so callers can log them.
func (l *QuotaLimiter) Allow(ctx context.Context, userID string, cost int64) (bool, time.Duration, error) {
	if l == nil || l.redis == nil {
		return true, 0, nil
	}
	cfg := l.bucketFor(userID)
	if !cfg.Enabled() {
		return true, 0, nil
	}
	if cost <= 0 {
		cost = 1
	}

	nowSec := float64(l.now().UnixNano()) / 1e9
	// A bucket untouched for a full refill cycle is back at capacity, so it can expire.
	ttl := int64(float64(cfg.Capacity)/cfg.RefillRate) + 1

	res, err := l.script.Run(ctx, l.redis, []string{KeyPrefix + userID}, cfg.Capacity, cfg.RefillRate, nowSec, cost, ttl).Result()
	if err != nil {
		slog.Error("redis quota script error", slog.String("user_id", userID), slog.Any("error", err))
		return true, 0, err
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) < 4 {
		slog.Error("redis quota unexpected script result", slog.String("user_id", userID), slog.Any("result", res))
		return true, 0, nil
	}

	allowed := toInt64(vals[0]) == 1
	tokens := toFloat64(vals[1])
	lastRefill := toFloat64(vals[2])
	retryAfter := time.Duration(toFloat64(vals[3]) * float64(time.Second))

	if l.store != nil {
		l.mirror(ctx, userID, cfg, tokens, lastRefill)
	}
	return allowed, retryAfter, nil
}

// Remaining reports the tokens left for userID without consuming any.
// Users without an enforced bucket get +Inf.
func (l *QuotaLimiter) Remaining(ctx context.Context, userID string) (float64, error) {
	if l == nil || l.redis == nil {
		return math.Inf(1), nil
	}
	cfg := l.bucketFor(userID)
	if !cfg.Enabled() {
		return math.Inf(1), nil
	}
	vals, err := l.redis.HMGet(ctx, KeyPrefix+userID, "tokens", "last_refill").Result()
	if err != nil {
		return 0, err
	}
	if len(vals) < 2 || vals[0] == nil || vals[1] == nil {
		return float64(cfg.Capacity), nil
	}
	tokens := toFloat64(vals[0])
	last := toFloat64(vals[1])
	delta := float64(l.now().UnixNano())/1e9 - last
	if delta < 0 {
		delta = 0
	}
	return min(float64(cfg.Capacity), tokens+delta*cfg.RefillRate), nil
}

// SetUserQuota overrides the bucket for one user. It is safe for concurrent use.
func (l *QuotaLimiter) SetUserQuota(userID string, cfg BucketConfig) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.overrides[userID] = cfg
}

// ApplyOverrides sets per-user daily quotas; zero or negative means unlimited.
func (l *QuotaLimiter) ApplyOverrides(perDay map[string]int) {
	for userID, n := range perDay {
		l.SetUserQuota(userID, NewBucketConfigFromPerDay(n))
	}
}

func (l *QuotaLimiter) bucketFor(userID string) BucketConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if cfg, ok := l.overrides[userID]; ok {
		return cfg
	}
	return l.defaults
}

func (l *QuotaLimiter) mirror(ctx context.Context, userID string, cfg BucketConfig, tokens, lastRefillSec float64) {
	_, err := l.store.Exec(ctx,
		`INSERT INTO quota_buckets (user_id, capacity, refill_rate, tokens, last_refill)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE SET
		   capacity = EXCLUDED.capacity,
		   refill_rate = EXCLUDED.refill_rate,
		   tokens = EXCLUDED.tokens,
		   last_refill = EXCLUDED.last_refill`,
		userID, cfg.Capacity, cfg.RefillRate, tokens, secondsToTime(lastRefillSec),
	)
	if err != nil {
		slog.Error("failed to mirror quota bucket to postgres", slog.String("user_id", userID), slog.Any("error", err))
	}
}

// WarmFromStore copies mirrored buckets back into Redis, typically at startup.
func (l *QuotaLimiter) WarmFromStore(ctx context.Context) error {
	if l == nil || l.store == nil || l.redis == nil {
		return nil
	}
	rows, err := l.store.Query(ctx, `SELECT user_id, tokens, EXTRACT(EPOCH FROM last_refill)::float8 FROM quota_buckets`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		var tokens, lastRefillSec float64
		if err := rows.Scan(&userID, &tokens, &lastRefillSec); err != nil {
			return err
		}
		err := l.redis.HSet(ctx, KeyPrefix+userID,
			"tokens", strconv.FormatFloat(tokens, 'f', -1, 64),
			"last_refill", strconv.FormatFloat(lastRefillSec, 'f', -1, 64)).Err()
		if err != nil {
			slog.Error("failed to warm redis quota bucket", slog.String("user_id", userID), slog.Any("error", err))
		}
	}
	return rows.Err()
}

func secondsToTime(sec float64) time.Time {
	whole := int64(sec)
	nsec := int64((sec - float64(whole)) * 1e9)
	if nsec < 0 {
		nsec = 0
	}
	return time.Unix(whole, nsec).UTC()
}

func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseFloat(t, 64)
		return int64(n)
	default:
		return 0
	}
}

func toFloat64(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Package ratelimit implements a Redis-backed sliding-window rate limiter.
// Each policy keeps a per-identifier ZSET of request timestamps pruned to the
// trailing window. A nil Limiter (no Redis configured) allows everything.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result describes a rate-limit decision.
type Result struct {
	Allowed   bool
	Remaining int
	// Reset is when the oldest counted request leaves the window.
	Reset time.Time
}

// Limiter applies one sliding-window policy.
type Limiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// New creates a limiter for one policy. A nil client yields a disabled
// limiter whose Allow always reports "not configured".
func New(client *redis.Client, prefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// Enabled reports whether a backing store is configured.
func (l *Limiter) Enabled() bool {
	return l != nil && l.client != nil
}

// Allow records one request for the identifier and decides whether it fits
// the window. It returns (nil, nil) when the limiter is not configured; the
// caller must treat that as allow.
func (l *Limiter) Allow(ctx context.Context, identifier string) (*Result, error) {
	if !l.Enabled() {
		return nil, nil
	}

	key := l.prefix + ":" + identifier
	now := time.Now()
	windowStart := now.Add(-l.window)

	member := strconv.FormatInt(now.UnixNano(), 10)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: member})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}

	count := int(card.Val())
	if count > l.limit {
		// Over the cap: discard this request's member so rejected requests
		// do not extend the window.
		l.client.ZRem(ctx, key, member)
		return &Result{
			Allowed:   false,
			Remaining: 0,
			Reset:     l.resetAt(ctx, key, now),
		}, nil
	}

	return &Result{
		Allowed:   true,
		Remaining: l.limit - count,
		Reset:     now.Add(l.window),
	}, nil
}

// resetAt computes when the oldest counted entry slides out of the window.
func (l *Limiter) resetAt(ctx context.Context, key string, now time.Time) time.Time {
	oldest, err := l.client.ZRangeWithScores(ctx, key, 0, 0).Result()
	if err != nil || len(oldest) == 0 {
		return now.Add(l.window)
	}
	return time.Unix(0, int64(oldest[0].Score)).Add(l.window)
}

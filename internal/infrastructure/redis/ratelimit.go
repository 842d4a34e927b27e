package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// attemptWindow is the per-phone verification attempt counter.
type attemptWindow struct {
	Count        int   `json:"count"`
	FirstAttempt int64 `json:"firstAttempt"`
}

// RateLimitRepo tracks code-verification attempts per caller phone number
// in a fixed window keyed ratelimit:verify:{phoneNumber}. The key carries a
// TTL so abandoned windows clean themselves up.
type RateLimitRepo struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

func NewRateLimitRepo(client *redis.Client, maxAttempts int, window time.Duration) *RateLimitRepo {
	return &RateLimitRepo{client: client, maxAttempts: maxAttempts, window: window, now: time.Now}
}

func rateLimitKey(phoneNumber string) string { return "ratelimit:verify:" + phoneNumber }

// Allow records one attempt for the phone number and reports whether it is
// within budget, plus the attempts remaining after this one.
func (r *RateLimitRepo) Allow(ctx context.Context, phoneNumber string) (bool, int, error) {
	key := rateLimitKey(phoneNumber)
	now := r.now()

	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, 0, err
	}

	var w attemptWindow
	if err == nil {
		if uerr := json.Unmarshal(raw, &w); uerr != nil {
			w = attemptWindow{}
		}
	}

	windowStart := time.UnixMilli(w.FirstAttempt)
	if w.Count == 0 || now.Sub(windowStart) > r.window {
		w = attemptWindow{Count: 1, FirstAttempt: now.UnixMilli()}
		if err := r.set(ctx, key, w, r.window); err != nil {
			return false, 0, err
		}
		return true, r.maxAttempts - 1, nil
	}

	if w.Count >= r.maxAttempts {
		return false, 0, nil
	}

	w.Count++
	remaining := r.window - now.Sub(windowStart)
	if err := r.set(ctx, key, w, remaining); err != nil {
		return false, 0, err
	}
	return true, r.maxAttempts - w.Count, nil
}

func (r *RateLimitRepo) set(ctx context.Context, key string, w attemptWindow, ttl time.Duration) error {
	buf, err := json.Marshal(w)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, buf, ttl).Err()
}

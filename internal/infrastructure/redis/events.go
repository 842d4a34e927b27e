package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ricknaldos/buzentry-main-sub001/internal/domain"
)

// EventRepo owns the event:{callSid}:{ingestMillis} records (TTL-bounded)
// and the user:{userId}:events time-ordered index. The record write and the
// index write are independent; a crash between them leaves a retrievable
// event missing from the chronological view, which is acceptable for
// diagnostic data.
type EventRepo struct {
	client    *redis.Client
	retention time.Duration
	now       func() time.Time
}

func NewEventRepo(client *redis.Client, retention time.Duration) *EventRepo {
	return &EventRepo{client: client, retention: retention, now: time.Now}
}

func eventKey(eventID string) string     { return "event:" + eventID }
func userEventsKey(userID string) string { return "user:" + userID + ":events" }

// Record persists the event with the retention TTL, then indexes it under
// the user's sorted set scored by the event timestamp when the user is known.
func (r *EventRepo) Record(ctx context.Context, ev *domain.AccessEvent) error {
	buf, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.EventID, err)
	}
	key := eventKey(ev.EventID)
	if err := r.client.Set(ctx, key, buf, r.retention).Err(); err != nil {
		return err
	}
	if ev.UserID == "" {
		return nil
	}
	return r.client.ZAdd(ctx, userEventsKey(ev.UserID), redis.Z{
		Score:  float64(ev.Timestamp),
		Member: key,
	}).Err()
}

// ListForUser returns the user's events ascending by timestamp, bounded
// below by the retention cutoff. Index members whose records have expired
// are skipped; aged index entries are pruned opportunistically.
func (r *EventRepo) ListForUser(ctx context.Context, userID string, from, to int64, limit int) ([]domain.AccessEvent, error) {
	cutoff := r.now().Add(-r.retention).UnixMilli()
	if from < cutoff {
		from = cutoff
	}

	idx := userEventsKey(userID)
	// Physical deletion of expired records is the store's TTL; this only
	// trims the index so it cannot grow unbounded.
	_ = r.client.ZRemRangeByScore(ctx, idx, "-inf", "("+strconv.FormatInt(cutoff, 10)).Err()

	rng := &redis.ZRangeBy{Min: strconv.FormatInt(from, 10), Max: "+inf"}
	if to > 0 {
		rng.Max = strconv.FormatInt(to, 10)
	}
	if limit > 0 {
		rng.Count = int64(limit)
	}
	keys, err := r.client.ZRangeByScore(ctx, idx, rng).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []domain.AccessEvent{}, nil
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	events := make([]domain.AccessEvent, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue // record expired ahead of its index entry
		}
		var ev domain.AccessEvent
		if err := json.Unmarshal([]byte(s), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

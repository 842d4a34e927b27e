package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ricknaldos/buzentry-main-sub001/internal/domain"
	"github.com/ricknaldos/buzentry-main-sub001/pkg/logger"
	"go.uber.org/zap"
)

// mutateRetries bounds the optimistic write loop before the conflict is
// surfaced to the caller as transient.
const mutateRetries = 5

// ProfileRepo owns the profile:{userId} records and the
// profile:email:{email} index. The store offers no multi-key transactions,
// so the two keys are written in an order that keeps a crash between them
// repairable (see Create and GetByEmail).
type ProfileRepo struct {
	client *redis.Client
	now    func() time.Time
}

func NewProfileRepo(client *redis.Client) *ProfileRepo {
	return &ProfileRepo{client: client, now: time.Now}
}

func profileKey(userID string) string { return "profile:" + userID }
func emailKey(email string) string    { return "profile:email:" + email }

func (r *ProfileRepo) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	raw, err := r.client.Get(ctx, profileKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("profile %s: %w", userID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var p domain.UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("unmarshal profile %s: %w", userID, err)
	}
	return &p, nil
}

// GetByEmail resolves through the email index, then loads the profile.
// An index miss falls back to a direct profile read (userId equals email in
// this deployment) and heals the missing index entry, which is the repair
// path for a crash between Create's two writes.
func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	userID, err := r.client.Get(ctx, emailKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		p, gerr := r.Get(ctx, email)
		if gerr != nil {
			return nil, fmt.Errorf("profile for %s: %w", email, domain.ErrNotFound)
		}
		if serr := r.client.Set(ctx, emailKey(email), p.UserID, 0).Err(); serr != nil {
			logger.L().Warn("email index heal failed", zap.String("email", email), zap.Error(serr))
		}
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, userID)
}

// Create writes the profile record, then the email index. Retrying after a
// partial failure rewrites both halves; an email index owned by another
// userId is a conflict, never overwritten.
func (r *ProfileRepo) Create(ctx context.Context, p *domain.UserProfile) error {
	owner, err := r.client.Get(ctx, emailKey(p.Email)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if err == nil && owner != p.UserID {
		return fmt.Errorf("email %s already registered: %w", p.Email, domain.ErrConflict)
	}

	now := r.now().UnixMilli()
	if p.CreatedAt == 0 {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Passcodes == nil {
		p.Passcodes = []domain.Passcode{}
	}

	buf, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile %s: %w", p.UserID, err)
	}
	if err := r.client.Set(ctx, profileKey(p.UserID), buf, 0).Err(); err != nil {
		return err
	}
	return r.client.Set(ctx, emailKey(p.Email), p.UserID, 0).Err()
}

// Mutate performs an optimistic read-modify-write of the whole profile:
// WATCH the key, apply the mutation in memory, and commit inside MULTI/EXEC.
// A concurrent writer aborts the EXEC and the loop re-reads and retries, so
// field merges and usage counters stay exact. apply returning an error
// aborts without writing.
func (r *ProfileRepo) Mutate(ctx context.Context, userID string, apply func(*domain.UserProfile) error) (*domain.UserProfile, error) {
	key := profileKey(userID)
	for attempt := 0; attempt < mutateRetries; attempt++ {
		var updated *domain.UserProfile
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return fmt.Errorf("profile %s: %w", userID, domain.ErrNotFound)
			}
			if err != nil {
				return err
			}
			var p domain.UserProfile
			if err := json.Unmarshal(raw, &p); err != nil {
				return fmt.Errorf("unmarshal profile %s: %w", userID, err)
			}
			if err := apply(&p); err != nil {
				return err
			}
			p.UpdatedAt = r.now().UnixMilli()
			buf, err := json.Marshal(&p)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, buf, 0)
				return nil
			})
			if err == nil {
				updated = &p
			}
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("profile %s: %w", userID, domain.ErrConcurrentUpdate)
}

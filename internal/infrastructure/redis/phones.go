package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/ricknaldos/buzentry-main-sub001/internal/domain"
)

// PhoneRepo owns the phone:{phoneNumber} → userId index. Each entry exists
// for at most one user at a time; claims are conditional writes so racing
// claims for the same number have exactly one winner.
type PhoneRepo struct {
	client *redis.Client
}

func NewPhoneRepo(client *redis.Client) *PhoneRepo {
	return &PhoneRepo{client: client}
}

func phoneKey(phoneNumber string) string { return "phone:" + phoneNumber }

// Resolve returns the owning userId of a phone number.
func (r *PhoneRepo) Resolve(ctx context.Context, phoneNumber string) (string, error) {
	userID, err := r.client.Get(ctx, phoneKey(phoneNumber)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("phone %s: %w", phoneNumber, domain.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// Claim conditionally creates the index entry. Returns false when the key
// already exists, in which case the caller re-reads the owner.
func (r *PhoneRepo) Claim(ctx context.Context, phoneNumber, userID string) (bool, error) {
	return r.client.SetNX(ctx, phoneKey(phoneNumber), userID, 0).Result()
}

// Release deletes the index entry. Idempotent.
func (r *PhoneRepo) Release(ctx context.Context, phoneNumber string) error {
	return r.client.Del(ctx, phoneKey(phoneNumber)).Err()
}

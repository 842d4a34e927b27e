package phone

import (
	"context"
	"errors"
	"fmt"

	"github.com/ricknaldos/buzentry-main-sub001/internal/domain"
)

type Service interface {
	// Assign binds the phone number exclusively to the user. Numbers owned
	// by another user are never silently stolen.
	Assign(ctx context.Context, userID, phoneNumber string) (*domain.UserProfile, error)
	// Release drops the user's current number binding. Idempotent.
	Release(ctx context.Context, userID string) (*domain.UserProfile, error)
	// Resolve returns the owning userId of a phone number.
	Resolve(ctx context.Context, phoneNumber string) (string, error)
}

type phoneIndex interface {
	Resolve(ctx context.Context, phoneNumber string) (string, error)
	Claim(ctx context.Context, phoneNumber, userID string) (bool, error)
	Release(ctx context.Context, phoneNumber string) error
}

type profileStore interface {
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
	Mutate(ctx context.Context, userID string, apply func(*domain.UserProfile) error) (*domain.UserProfile, error)
}

type service struct {
	phones   phoneIndex
	profiles profileStore
}

func NewService(phones phoneIndex, profiles profileStore) Service {
	return &service{phones: phones, profiles: profiles}
}

// Assign performs the ordered write sequence: check the current owner,
// release the user's old index entry, claim the new index entry, then
// update the profile field. The index is written before the profile because
// an index entry with no matching profile field self-heals on the next
// read, whereas the reverse order could let a profile claim a number whose
// index points elsewhere.
func (s *service) Assign(ctx context.Context, userID, phoneNumber string) (*domain.UserProfile, error) {
	if !domain.ValidPhoneNumber(phoneNumber) {
		return nil, fmt.Errorf("phone number must be E.164: %w", domain.ErrBadRequest)
	}

	owner, err := s.phones.Resolve(ctx, phoneNumber)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err == nil && owner != userID {
		return nil, fmt.Errorf("phone %s: %w", phoneNumber, domain.ErrAlreadyAssigned)
	}

	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.SignalwirePhoneNumber != "" && p.SignalwirePhoneNumber != phoneNumber {
		if err := s.phones.Release(ctx, p.SignalwirePhoneNumber); err != nil {
			return nil, err
		}
	}

	if owner != userID {
		claimed, err := s.phones.Claim(ctx, phoneNumber, userID)
		if err != nil {
			return nil, err
		}
		if !claimed {
			// Lost a race for the same number; re-read to see who won.
			cur, rerr := s.phones.Resolve(ctx, phoneNumber)
			if rerr != nil || cur != userID {
				return nil, fmt.Errorf("phone %s: %w", phoneNumber, domain.ErrAlreadyAssigned)
			}
		}
	}

	return s.profiles.Mutate(ctx, userID, func(p *domain.UserProfile) error {
		p.SignalwirePhoneNumber = phoneNumber
		return nil
	})
}

func (s *service) Release(ctx context.Context, userID string) (*domain.UserProfile, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.SignalwirePhoneNumber == "" {
		return p, nil
	}
	if err := s.phones.Release(ctx, p.SignalwirePhoneNumber); err != nil {
		return nil, err
	}
	return s.profiles.Mutate(ctx, userID, func(p *domain.UserProfile) error {
		p.SignalwirePhoneNumber = ""
		return nil
	})
}

func (s *service) Resolve(ctx context.Context, phoneNumber string) (string, error) {
	return s.phones.Resolve(ctx, phoneNumber)
}

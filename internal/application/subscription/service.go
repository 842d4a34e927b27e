package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/ricknaldos/buzentry-main-sub001/internal/domain"
)

type Service interface {
	// Refresh pulls the current status from the billing collaborator and
	// persists it on the profile so subsequent reads are cheap.
	Refresh(ctx context.Context, userID string) (*domain.Subscription, error)
}

type billingClient interface {
	GetCustomerWithSubscription(customerID string) (*domain.Subscription, error)
}

type profileStore interface {
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
	Mutate(ctx context.Context, userID string, apply func(*domain.UserProfile) error) (*domain.UserProfile, error)
}

type service struct {
	billing  billingClient
	profiles profileStore
}

func NewService(billing billingClient, profiles profileStore) Service {
	return &service{billing: billing, profiles: profiles}
}

// Refresh is a pull-through cache read. A billing report that the customer
// no longer exists is definitive: both Stripe references are cleared and
// the status set to canceled, so a second refresh is a no-op returning the
// same cleared state. Transient billing failures surface unchanged and
// leave the cached status untouched.
func (s *service) Refresh(ctx context.Context, userID string) (*domain.Subscription, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.StripeCustomerID == "" {
		return &domain.Subscription{Status: p.SubscriptionStatus}, nil
	}

	sub, err := s.billing.GetCustomerWithSubscription(p.StripeCustomerID)
	if errors.Is(err, domain.ErrNotFound) {
		if _, merr := s.profiles.Mutate(ctx, userID, func(p *domain.UserProfile) error {
			p.StripeCustomerID = ""
			p.StripeSubscriptionID = ""
			p.SubscriptionStatus = domain.SubscriptionCanceled
			return nil
		}); merr != nil {
			return nil, merr
		}
		return &domain.Subscription{Status: domain.SubscriptionCanceled}, nil
	}
	if err != nil {
		return nil, err
	}
	if sub == nil {
		// Customer exists but carries no subscription; cached state stays.
		return nil, fmt.Errorf("customer %s has no subscription: %w", p.StripeCustomerID, domain.ErrNotFound)
	}

	if _, err := s.profiles.Mutate(ctx, userID, func(p *domain.UserProfile) error {
		p.SubscriptionStatus = sub.Status
		return nil
	}); err != nil {
		return nil, err
	}
	return sub, nil
}

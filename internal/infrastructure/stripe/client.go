package stripe

import (
	"errors"
	"fmt"

	"github.com/ricknaldos/buzentry-main-sub001/internal/config"
	"github.com/ricknaldos/buzentry-main-sub001/internal/domain"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Client is the billing collaborator adapter.
type Client struct {
	api *client.API
}

func NewClient(cfg *config.Config) *Client {
	api := &client.API{}
	api.Init(cfg.StripeSecretKey, nil)
	return &Client{api: api}
}

// GetCustomerWithSubscription fetches the customer's current subscription.
// A missing or deleted customer maps to domain.ErrNotFound — the definitive
// signal for the caller to self-heal its cached billing references. A
// customer without any subscription returns (nil, nil). Every other failure
// is transient and wrapped as domain.ErrCollaboratorUnavailable.
func (c *Client) GetCustomerWithSubscription(customerID string) (*domain.Subscription, error) {
	params := &stripe.CustomerParams{}
	params.AddExpand("subscriptions")

	cust, err := c.api.Customers.Get(customerID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return nil, fmt.Errorf("stripe customer %s: %w", customerID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stripe customer %s: %v: %w", customerID, err, domain.ErrCollaboratorUnavailable)
	}
	if cust.Deleted {
		return nil, fmt.Errorf("stripe customer %s deleted: %w", customerID, domain.ErrNotFound)
	}
	if cust.Subscriptions == nil || len(cust.Subscriptions.Data) == 0 {
		return nil, nil
	}

	sub := cust.Subscriptions.Data[0]
	return &domain.Subscription{
		Status:            string(sub.Status),
		CurrentPeriodEnd:  sub.CurrentPeriodEnd * 1000,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}, nil
}

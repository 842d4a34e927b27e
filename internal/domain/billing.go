package domain

// Subscription is the billing collaborator's view of a customer, cached on
// the profile as SubscriptionStatus.
type Subscription struct {
	Status            string `json:"status"`
	CurrentPeriodEnd  int64  `json:"currentPeriodEnd"` // epoch millis
	CancelAtPeriodEnd bool   `json:"cancelAtPeriodEnd"`
}

package domain

import "regexp"

// Subscription statuses mirror the billing provider's vocabulary.
const (
	SubscriptionActive     = "active"
	SubscriptionTrialing   = "trialing"
	SubscriptionPastDue    = "past_due"
	SubscriptionCanceled   = "canceled"
	SubscriptionIncomplete = "incomplete"
	SubscriptionUnpaid     = "unpaid"
)

// UserProfile is the per-user access-control record, persisted as one JSON
// value under profile:{userId}. UserID equals the user's email in this
// deployment and is immutable once created. All timestamps are epoch millis.
type UserProfile struct {
	UserID                string     `json:"userId"`
	Email                 string     `json:"email"`
	SignalwirePhoneNumber string     `json:"signalwirePhoneNumber,omitempty"`
	DoorCode              string     `json:"doorCode,omitempty"`
	AccessCode            string     `json:"accessCode,omitempty"` // 4-digit PIN; empty disables the feature
	IsPaused              bool       `json:"isPaused"`
	PauseForwardingNumber string     `json:"pauseForwardingNumber,omitempty"`
	Passcodes             []Passcode `json:"passcodes"`
	StripeCustomerID      string     `json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID  string     `json:"stripeSubscriptionId,omitempty"`
	SubscriptionStatus    string     `json:"subscriptionStatus,omitempty"`
	NotifyEmail           bool       `json:"notifyEmail"`
	NotifySMS             bool       `json:"notifySms"`
	NotifyPhoneNumber     string     `json:"notifyPhoneNumber,omitempty"`
	QuietHoursEnabled     bool       `json:"quietHoursEnabled"`
	QuietHoursStart       string     `json:"quietHoursStart,omitempty"` // "HH:MM"
	QuietHoursEnd         string     `json:"quietHoursEnd,omitempty"`
	CreatedAt             int64      `json:"createdAt"`
	UpdatedAt             int64      `json:"updatedAt"`
}

// CreateProfileRequest creates a profile for the authenticated email.
type CreateProfileRequest struct {
	Email    string `json:"email" validate:"required,email"`
	DoorCode string `json:"door_code"`
}

// UpdateProfileRequest is a partial update; nil fields are left untouched.
type UpdateProfileRequest struct {
	DoorCode              *string `json:"door_code"`
	AccessCode            *string `json:"access_code"`
	IsPaused              *bool   `json:"is_paused"`
	PauseForwardingNumber *string `json:"pause_forwarding_number"`
	NotifyEmail           *bool   `json:"notify_email"`
	NotifySMS             *bool   `json:"notify_sms"`
	NotifyPhoneNumber     *string `json:"notify_phone_number"`
	QuietHoursEnabled     *bool   `json:"quiet_hours_enabled"`
	QuietHoursStart       *string `json:"quiet_hours_start"`
	QuietHoursEnd         *string `json:"quiet_hours_end"`
}

var (
	accessCodeRe = regexp.MustCompile(`^\d{4}$`)
	e164Re       = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	clockTimeRe  = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// ValidAccessCode reports whether s is exactly four digits.
func ValidAccessCode(s string) bool { return accessCodeRe.MatchString(s) }

// ValidPhoneNumber reports whether s is an E.164 phone number.
func ValidPhoneNumber(s string) bool { return e164Re.MatchString(s) }

// ValidClockTime reports whether s is a 24h "HH:MM" string.
func ValidClockTime(s string) bool { return clockTimeRe.MatchString(s) }

package http

import (
	jwtinfra "github.com/ricknaldos/buzentry-main-sub001/internal/infrastructure/jwt"
	redisinfra "github.com/ricknaldos/buzentry-main-sub001/internal/infrastructure/redis"
	"github.com/ricknaldos/buzentry-main-sub001/internal/infrastructure/smtp"
	"github.com/ricknaldos/buzentry-main-sub001/internal/infrastructure/sns"
	stripeinfra "github.com/ricknaldos/buzentry-main-sub001/internal/infrastructure/stripe"
	"github.com/ricknaldos/buzentry-main-sub001/internal/infrastructure/webhook"
)

// Deps holds all infrastructure dependencies for the router. Optional
// collaborators (Mailer, SMSSender, Forwarder, JWTProvider) may be nil and
// the affected features degrade gracefully.
type Deps struct {
	ProfileRepo   *redisinfra.ProfileRepo
	PhoneRepo     *redisinfra.PhoneRepo
	EventRepo     *redisinfra.EventRepo
	RateLimitRepo *redisinfra.RateLimitRepo
	Billing       *stripeinfra.Client
	Mailer        smtp.Mailer
	SMSSender     sns.SMSSender
	Forwarder     *webhook.Forwarder
	JWTProvider   *jwtinfra.Provider
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ricknaldos/buzentry-main-sub001/internal/application/event"
	"github.com/ricknaldos/buzentry-main-sub001/internal/application/notification"
	"github.com/ricknaldos/buzentry-main-sub001/internal/application/passcode"
	"github.com/ricknaldos/buzentry-main-sub001/internal/application/phone"
	"github.com/ricknaldos/buzentry-main-sub001/internal/application/profile"
	"github.com/ricknaldos/buzentry-main-sub001/internal/application/subscription"
	"github.com/ricknaldos/buzentry-main-sub001/internal/config"
	"github.com/ricknaldos/buzentry-main-sub001/internal/transport/http/handler"
	appmiddleware "github.com/ricknaldos/buzentry-main-sub001/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(appmiddleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to the public telephony
	// callbacks on top of the per-phone attempt limiter.
	telephonyRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	profileSvc := profile.NewService(deps.ProfileRepo)
	phoneSvc := phone.NewService(deps.PhoneRepo, deps.ProfileRepo)
	passcodeSvc := passcode.NewService(deps.ProfileRepo)
	subscriptionSvc := subscription.NewService(deps.Billing, deps.ProfileRepo)
	notificationSvc := notification.NewService(deps.ProfileRepo, deps.Mailer, deps.SMSSender)
	eventSvc := event.NewService(deps.EventRepo, deps.Forwarder, notificationSvc)

	healthH := handler.NewHealthHandler()
	profileH := handler.NewProfileHandler(profileSvc)
	phoneH := handler.NewPhoneHandler(phoneSvc)
	passcodeH := handler.NewPasscodeHandler(passcodeSvc)
	subscriptionH := handler.NewSubscriptionHandler(subscriptionSvc)
	eventH := handler.NewEventHandler(eventSvc)
	telephonyH := handler.NewTelephonyHandler(phoneSvc, passcodeSvc, eventSvc, deps.RateLimitRepo)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(telephonyRL.Limit).Post("/telephony/verify", telephonyH.Verify)
		r.With(telephonyRL.Limit).Post("/telephony/events", telephonyH.RecordEvent)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/profile", profileH.Get)
			r.Post("/profile", profileH.Create)
			r.Put("/profile", profileH.Update)
			r.Post("/profile/pause", profileH.SetPause)
			r.Post("/profile/pause-forwarding", profileH.SetPauseForwarding)
			r.Post("/profile/door-code", profileH.SetDoorCode)
			r.Post("/profile/access-code", profileH.SetAccessCode)
			r.Post("/profile/notifications", profileH.SetNotifications)
			r.Post("/profile/quiet-hours", profileH.SetQuietHours)

			r.Post("/phone-number", phoneH.Assign)
			r.Delete("/phone-number", phoneH.Release)
			r.Get("/phone-number/resolve", phoneH.Resolve)

			r.Get("/passcodes", passcodeH.List)
			r.Post("/passcodes", passcodeH.Create)
			r.Patch("/passcodes", passcodeH.Toggle)
			r.Post("/passcodes/{id}/revoke", passcodeH.Revoke)
			r.Delete("/passcodes/{id}", passcodeH.Delete)

			r.Get("/subscription", subscriptionH.Get)

			r.Get("/events", eventH.List)
			r.Get("/analytics", eventH.Stats)
		})
	})

	return r
}

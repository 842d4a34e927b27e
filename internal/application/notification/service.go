package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/ricknaldos/buzentry-main-sub001/internal/domain"
	"github.com/ricknaldos/buzentry-main-sub001/pkg/logger"
	"go.uber.org/zap"
)

// Service dispatches unlock-event notifications per the profile's
// preferences, gated by quiet hours. Every delivery is best-effort: errors
// are logged and swallowed, never surfaced to the event pipeline.
type Service interface {
	NotifyUnlock(ctx context.Context, userID string, ev *domain.AccessEvent)
}

type profileStore interface {
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	profiles profileStore
	mailer   mailer
	sms      smsSender
	now      func() time.Time
}

func NewService(profiles profileStore, mailer mailer, sms smsSender) Service {
	return &service{profiles: profiles, mailer: mailer, sms: sms, now: time.Now}
}

func (s *service) NotifyUnlock(ctx context.Context, userID string, ev *domain.AccessEvent) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		logger.L().Warn("notification skipped, profile load failed",
			zap.String("user_id", userID), zap.Error(err))
		return
	}
	if InQuietHours(p, s.now()) {
		logger.L().Debug("notification skipped, quiet hours",
			zap.String("user_id", userID))
		return
	}

	subject, body := eventMessage(ev)

	if p.NotifyEmail && s.mailer != nil {
		if err := s.mailer.SendEmail(p.Email, subject, body); err != nil {
			logger.L().Warn("email notification failed",
				zap.String("user_id", userID), zap.Error(err))
		}
	}
	if p.NotifySMS && p.NotifyPhoneNumber != "" && s.sms != nil {
		if err := s.sms.SendSMS(ctx, p.NotifyPhoneNumber, subject); err != nil {
			logger.L().Warn("sms notification failed",
				zap.String("user_id", userID), zap.Error(err))
		}
	}
}

// InQuietHours reports whether now falls inside the profile's quiet-hours
// window. Windows may wrap past midnight (e.g. 22:00-07:00).
func InQuietHours(p *domain.UserProfile, now time.Time) bool {
	if !p.QuietHoursEnabled || p.QuietHoursStart == "" || p.QuietHoursEnd == "" {
		return false
	}
	cur := now.Format("15:04")
	start, end := p.QuietHoursStart, p.QuietHoursEnd
	if start > end {
		return cur >= start || cur < end
	}
	return cur >= start && cur < end
}

func eventMessage(ev *domain.AccessEvent) (subject, body string) {
	switch ev.EventType {
	case domain.EventUnlockSuccess, domain.EventAccessGranted:
		subject = "BuzEntry: door unlocked"
	case domain.EventAccessDenied:
		subject = "BuzEntry: access denied"
	case domain.EventUnlockFailure:
		subject = "BuzEntry: unlock failed"
	default:
		subject = "BuzEntry: access event"
	}
	body = fmt.Sprintf("%s from %s at %s.",
		subject, ev.PhoneNumber, time.UnixMilli(ev.Timestamp).UTC().Format(time.RFC1123))
	return subject, body
}

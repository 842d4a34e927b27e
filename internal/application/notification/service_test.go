package notification

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ricknaldos/buzentry-main-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

type mockSMS struct{ mock.Mock }

func (m *mockSMS) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

type stubStore struct {
	p   *domain.UserProfile
	err error
}

func (s *stubStore) Get(context.Context, string) (*domain.UserProfile, error) {
	return s.p, s.err
}

func notifyProfile() *domain.UserProfile {
	return &domain.UserProfile{
		UserID:            "alice@example.com",
		Email:             "alice@example.com",
		NotifyEmail:       true,
		NotifySMS:         true,
		NotifyPhoneNumber: "+15559876543",
	}
}

func unlockEvent() *domain.AccessEvent {
	return &domain.AccessEvent{
		EventID:     "CA1:1700000000000",
		EventType:   domain.EventUnlockSuccess,
		UserID:      "alice@example.com",
		PhoneNumber: "+15551234567",
		CallSid:     "CA1",
		Timestamp:   1700000000000,
	}
}

func fixedService(store *stubStore, mailer *mockMailer, sms *mockSMS, now time.Time) *service {
	svc := NewService(store, mailer, sms).(*service)
	svc.now = func() time.Time { return now }
	return svc
}

func TestNotifyUnlock_SendsBothChannels(t *testing.T) {
	mailer := &mockMailer{}
	sms := &mockSMS{}
	mailer.On("SendEmail", "alice@example.com", mock.Anything, mock.Anything).Return(nil)
	sms.On("SendSMS", mock.Anything, "+15559876543", mock.Anything).Return(nil)

	svc := fixedService(&stubStore{p: notifyProfile()}, mailer, sms, time.Now())
	svc.NotifyUnlock(context.Background(), "alice@example.com", unlockEvent())

	mailer.AssertExpectations(t)
	sms.AssertExpectations(t)
}

func TestNotifyUnlock_RespectsPreferences(t *testing.T) {
	p := notifyProfile()
	p.NotifySMS = false
	mailer := &mockMailer{}
	sms := &mockSMS{}
	mailer.On("SendEmail", "alice@example.com", mock.Anything, mock.Anything).Return(nil)

	svc := fixedService(&stubStore{p: p}, mailer, sms, time.Now())
	svc.NotifyUnlock(context.Background(), "alice@example.com", unlockEvent())

	mailer.AssertExpectations(t)
	sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotifyUnlock_EmailFailureStillSendsSMS(t *testing.T) {
	mailer := &mockMailer{}
	sms := &mockSMS{}
	mailer.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	sms.On("SendSMS", mock.Anything, "+15559876543", mock.Anything).Return(nil)

	svc := fixedService(&stubStore{p: notifyProfile()}, mailer, sms, time.Now())
	svc.NotifyUnlock(context.Background(), "alice@example.com", unlockEvent())

	sms.AssertExpectations(t)
}

func TestNotifyUnlock_ProfileLoadFailureIsSwallowed(t *testing.T) {
	mailer := &mockMailer{}
	sms := &mockSMS{}
	store := &stubStore{err: fmt.Errorf("profile: %w", domain.ErrNotFound)}

	svc := fixedService(store, mailer, sms, time.Now())
	svc.NotifyUnlock(context.Background(), "alice@example.com", unlockEvent())

	mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
	sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotifyUnlock_QuietHoursSuppress(t *testing.T) {
	p := notifyProfile()
	p.QuietHoursEnabled = true
	p.QuietHoursStart = "22:00"
	p.QuietHoursEnd = "07:00"
	mailer := &mockMailer{}
	sms := &mockSMS{}

	night := time.Date(2026, 1, 10, 23, 30, 0, 0, time.Local)
	svc := fixedService(&stubStore{p: p}, mailer, sms, night)
	svc.NotifyUnlock(context.Background(), "alice@example.com", unlockEvent())

	mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
	sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestInQuietHours(t *testing.T) {
	day := func(hour, min int) time.Time {
		return time.Date(2026, 1, 10, hour, min, 0, 0, time.Local)
	}
	quiet := func(start, end string) *domain.UserProfile {
		return &domain.UserProfile{QuietHoursEnabled: true, QuietHoursStart: start, QuietHoursEnd: end}
	}

	tests := []struct {
		name string
		p    *domain.UserProfile
		now  time.Time
		want bool
	}{
		{"disabled", &domain.UserProfile{QuietHoursStart: "22:00", QuietHoursEnd: "07:00"}, day(23, 0), false},
		{"missing bounds", &domain.UserProfile{QuietHoursEnabled: true}, day(23, 0), false},
		{"daytime window inside", quiet("13:00", "15:00"), day(14, 0), true},
		{"daytime window outside", quiet("13:00", "15:00"), day(16, 0), false},
		{"window start inclusive", quiet("13:00", "15:00"), day(13, 0), true},
		{"window end exclusive", quiet("13:00", "15:00"), day(15, 0), false},
		{"overnight before midnight", quiet("22:00", "07:00"), day(23, 30), true},
		{"overnight after midnight", quiet("22:00", "07:00"), day(6, 30), true},
		{"overnight daytime outside", quiet("22:00", "07:00"), day(12, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InQuietHours(tt.p, tt.now))
		})
	}
}

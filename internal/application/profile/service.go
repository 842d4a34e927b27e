package profile

import (
	"context"
	"fmt"

	"github.com/ricknaldos/buzentry-main-sub001/internal/domain"
)

type Service interface {
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error)
	Create(ctx context.Context, req domain.CreateProfileRequest) (*domain.UserProfile, error)
	Update(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.UserProfile, error)
}

type profileStore interface {
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error)
	Create(ctx context.Context, p *domain.UserProfile) error
	Mutate(ctx context.Context, userID string, apply func(*domain.UserProfile) error) (*domain.UserProfile, error)
}

type service struct {
	repo profileStore
}

func NewService(repo profileStore) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	return s.repo.GetByEmail(ctx, email)
}

// Create builds a profile for the email. The userId equals the email in
// this deployment; retrying a partially failed create is safe because the
// store rewrites both the record and the index.
func (s *service) Create(ctx context.Context, req domain.CreateProfileRequest) (*domain.UserProfile, error) {
	p := &domain.UserProfile{
		UserID:    req.Email,
		Email:     req.Email,
		DoorCode:  req.DoorCode,
		Passcodes: []domain.Passcode{},
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update merges only the supplied fields under one optimistic
// read-modify-write, so concurrent updates to disjoint fields never clobber
// each other. Same-field races are last-write-wins, acceptable for
// human-paced settings edits.
func (s *service) Update(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.UserProfile, error) {
	if err := validateUpdate(req); err != nil {
		return nil, err
	}
	return s.repo.Mutate(ctx, userID, func(p *domain.UserProfile) error {
		applyUpdate(p, req)
		if p.NotifySMS && p.NotifyPhoneNumber == "" {
			return fmt.Errorf("sms notifications require a notify phone number: %w", domain.ErrBadRequest)
		}
		if p.QuietHoursEnabled && (p.QuietHoursStart == "" || p.QuietHoursEnd == "") {
			return fmt.Errorf("quiet hours require start and end times: %w", domain.ErrBadRequest)
		}
		return nil
	})
}

func validateUpdate(req domain.UpdateProfileRequest) error {
	if req.AccessCode != nil && *req.AccessCode != "" && !domain.ValidAccessCode(*req.AccessCode) {
		return fmt.Errorf("access code must be exactly 4 digits: %w", domain.ErrBadRequest)
	}
	if req.PauseForwardingNumber != nil && *req.PauseForwardingNumber != "" && !domain.ValidPhoneNumber(*req.PauseForwardingNumber) {
		return fmt.Errorf("pause forwarding number must be E.164: %w", domain.ErrBadRequest)
	}
	if req.NotifyPhoneNumber != nil && *req.NotifyPhoneNumber != "" && !domain.ValidPhoneNumber(*req.NotifyPhoneNumber) {
		return fmt.Errorf("notify phone number must be E.164: %w", domain.ErrBadRequest)
	}
	if req.QuietHoursStart != nil && *req.QuietHoursStart != "" && !domain.ValidClockTime(*req.QuietHoursStart) {
		return fmt.Errorf("quiet hours start must be HH:MM: %w", domain.ErrBadRequest)
	}
	if req.QuietHoursEnd != nil && *req.QuietHoursEnd != "" && !domain.ValidClockTime(*req.QuietHoursEnd) {
		return fmt.Errorf("quiet hours end must be HH:MM: %w", domain.ErrBadRequest)
	}
	return nil
}

func applyUpdate(p *domain.UserProfile, req domain.UpdateProfileRequest) {
	if req.DoorCode != nil {
		p.DoorCode = *req.DoorCode
	}
	if req.AccessCode != nil {
		p.AccessCode = *req.AccessCode // empty disables the PIN
	}
	if req.IsPaused != nil {
		p.IsPaused = *req.IsPaused
	}
	if req.PauseForwardingNumber != nil {
		p.PauseForwardingNumber = *req.PauseForwardingNumber
	}
	if req.NotifyEmail != nil {
		p.NotifyEmail = *req.NotifyEmail
	}
	if req.NotifySMS != nil {
		p.NotifySMS = *req.NotifySMS
	}
	if req.NotifyPhoneNumber != nil {
		p.NotifyPhoneNumber = *req.NotifyPhoneNumber
	}
	if req.QuietHoursEnabled != nil {
		p.QuietHoursEnabled = *req.QuietHoursEnabled
	}
	if req.QuietHoursStart != nil {
		p.QuietHoursStart = *req.QuietHoursStart
	}
	if req.QuietHoursEnd != nil {
		p.QuietHoursEnd = *req.QuietHoursEnd
	}
}

package passcode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ricknaldos/buzentry-main-sub001/internal/domain"
	"github.com/ricknaldos/buzentry-main-sub001/internal/pkg/id"
)

// Verification methods reported to callers.
const (
	MethodAccessCode = "access_code"
	MethodPasscode   = "passcode"
)

// VerifyResult is the outcome of a verification attempt.
type VerifyResult struct {
	Granted    bool   `json:"granted"`
	Method     string `json:"method,omitempty"`
	PasscodeID string `json:"passcodeId,omitempty"`
	Label      string `json:"label,omitempty"`
}

type Service interface {
	List(ctx context.Context, userID string) ([]domain.Passcode, error)
	Create(ctx context.Context, userID string, req domain.CreatePasscodeRequest) (*domain.Passcode, error)
	Revoke(ctx context.Context, userID, passcodeID string) error
	Toggle(ctx context.Context, userID string, req domain.TogglePasscodeRequest) ([]domain.Passcode, error)
	Delete(ctx context.Context, userID, passcodeID string) error
	// VerifyAndConsume checks the code against the profile's access code and
	// usable guest passcodes; a matching guest passcode's usage is consumed
	// in the same write. Denied attempts write nothing.
	VerifyAndConsume(ctx context.Context, userID, code string, now time.Time) (*VerifyResult, error)
}

type profileStore interface {
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
	Mutate(ctx context.Context, userID string, apply func(*domain.UserProfile) error) (*domain.UserProfile, error)
}

// Mutation-callback sentinels: abort the store write while signalling a
// non-error outcome to the service layer.
var (
	errNoMatch = errors.New("no matching passcode")
	errNoWrite = errors.New("verified without consuming")
)

type service struct {
	profiles profileStore
	now      func() time.Time
}

func NewService(profiles profileStore) Service {
	return &service{profiles: profiles, now: time.Now}
}

func (s *service) List(ctx context.Context, userID string) ([]domain.Passcode, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.Passcodes, nil
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreatePasscodeRequest) (*domain.Passcode, error) {
	if req.Label == "" {
		return nil, fmt.Errorf("label is required: %w", domain.ErrBadRequest)
	}

	var created domain.Passcode
	_, err := s.profiles.Mutate(ctx, userID, func(p *domain.UserProfile) error {
		now := s.now().UnixMilli()
		code, err := generateCode(p, now)
		if err != nil {
			return err
		}
		var expiresAt int64
		if req.ExpiresInHours > 0 {
			expiresAt = now + int64(req.ExpiresInHours)*time.Hour.Milliseconds()
		}
		created = domain.Passcode{
			ID:        "passcode_" + id.New(),
			Code:      code,
			Label:     req.Label,
			CreatedAt: now,
			ExpiresAt: expiresAt,
			MaxUsages: req.MaxUsages,
			IsActive:  true,
		}
		p.Passcodes = append(p.Passcodes, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *service) Revoke(ctx context.Context, userID, passcodeID string) error {
	_, err := s.profiles.Mutate(ctx, userID, func(p *domain.UserProfile) error {
		for i := range p.Passcodes {
			if p.Passcodes[i].ID == passcodeID {
				p.Passcodes[i].IsActive = false
				return nil
			}
		}
		return fmt.Errorf("passcode %s: %w", passcodeID, domain.ErrNotFound)
	})
	return err
}

func (s *service) Toggle(ctx context.Context, userID string, req domain.TogglePasscodeRequest) ([]domain.Passcode, error) {
	p, err := s.profiles.Mutate(ctx, userID, func(p *domain.UserProfile) error {
		for i := range p.Passcodes {
			if p.Passcodes[i].ID != req.PasscodeID {
				continue
			}
			if req.IsActive != nil {
				p.Passcodes[i].IsActive = *req.IsActive
			} else {
				p.Passcodes[i].IsActive = !p.Passcodes[i].IsActive
			}
			return nil
		}
		return fmt.Errorf("passcode %s: %w", req.PasscodeID, domain.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return p.Passcodes, nil
}

func (s *service) Delete(ctx context.Context, userID, passcodeID string) error {
	_, err := s.profiles.Mutate(ctx, userID, func(p *domain.UserProfile) error {
		kept := p.Passcodes[:0]
		for _, pc := range p.Passcodes {
			if pc.ID != passcodeID {
				kept = append(kept, pc)
			}
		}
		if len(kept) == len(p.Passcodes) {
			return fmt.Errorf("passcode %s: %w", passcodeID, domain.ErrNotFound)
		}
		p.Passcodes = kept
		return nil
	})
	return err
}

func (s *service) VerifyAndConsume(ctx context.Context, userID, code string, now time.Time) (*VerifyResult, error) {
	var res VerifyResult
	_, err := s.profiles.Mutate(ctx, userID, func(p *domain.UserProfile) error {
		nowMs := now.UnixMilli()

		// The access code is a standing PIN; matching it consumes nothing.
		if p.AccessCode != "" && code == p.AccessCode {
			res = VerifyResult{Granted: true, Method: MethodAccessCode}
			return errNoWrite
		}

		for i := range p.Passcodes {
			pc := &p.Passcodes[i]
			if pc.Code != code || !pc.Usable(nowMs) {
				continue
			}
			pc.UsageCount++
			pc.LastUsedAt = nowMs
			if pc.MaxUsages != 0 && pc.UsageCount >= pc.MaxUsages {
				// Quota reached: terminal in the same write.
				pc.IsActive = false
			}
			res = VerifyResult{Granted: true, Method: MethodPasscode, PasscodeID: pc.ID, Label: pc.Label}
			return nil
		}
		return errNoMatch
	})
	switch {
	case err == nil, errors.Is(err, errNoWrite):
		return &res, nil
	case errors.Is(err, errNoMatch):
		return &VerifyResult{Granted: false}, nil
	default:
		return nil, err
	}
}

// generateCode picks a random 4-digit code that collides with neither the
// profile's access code nor any currently-usable guest passcode. Uniqueness
// is scoped to the owning profile, not global.
func generateCode(p *domain.UserProfile, nowMillis int64) (string, error) {
	for attempt := 0; attempt < 25; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(9000))
		if err != nil {
			return "", err
		}
		code := strconv.FormatInt(1000+n.Int64(), 10)
		if code == p.AccessCode {
			continue
		}
		collision := false
		for _, pc := range p.Passcodes {
			if pc.Code == code && pc.Usable(nowMillis) {
				collision = true
				break
			}
		}
		if !collision {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique passcode")
}

package domain

// Passcode is a time-boxed, usage-limited guest code embedded in a profile.
// Its code is unique only within the owning profile's currently-usable set.
type Passcode struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Label      string `json:"label"` // e.g. "Delivery", "Guest - John"
	CreatedAt  int64  `json:"createdAt"`
	ExpiresAt  int64  `json:"expiresAt"`  // 0 = never expires
	UsageCount int    `json:"usageCount"` // monotonically non-decreasing
	MaxUsages  int    `json:"maxUsages"`  // 0 = unlimited
	LastUsedAt int64  `json:"lastUsedAt"` // 0 = never used
	IsActive   bool   `json:"isActive"`
}

// Usable reports whether the passcode can grant access at the given instant.
// The passcode's state is a pure function of its stored fields and now; no
// background sweep flips it.
func (p Passcode) Usable(nowMillis int64) bool {
	if !p.IsActive {
		return false
	}
	if p.ExpiresAt != 0 && nowMillis >= p.ExpiresAt {
		return false
	}
	if p.MaxUsages != 0 && p.UsageCount >= p.MaxUsages {
		return false
	}
	return true
}

// CreatePasscodeRequest creates a guest passcode for the caller's profile.
type CreatePasscodeRequest struct {
	Label          string `json:"label" validate:"required"`
	ExpiresInHours int    `json:"expires_in_hours" validate:"gte=0"`
	MaxUsages      int    `json:"max_usages" validate:"gte=0"`
}

// TogglePasscodeRequest flips or sets a passcode's active flag.
type TogglePasscodeRequest struct {
	PasscodeID string `json:"passcode_id" validate:"required"`
	IsActive   *bool  `json:"is_active"`
}

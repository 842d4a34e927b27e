package domain

// Access event types recorded by the ledger.
const (
	EventUnlockSuccess = "unlock_success"
	EventUnlockFailure = "unlock_failure"
	EventAccessDenied  = "access_denied"
	EventAccessGranted = "access_granted"
)

// AccessEvent is one entry in the append-only unlock ledger. Events are
// diagnostic, not authoritative access-control state; they expire after the
// retention window.
type AccessEvent struct {
	EventID     string            `json:"eventId"` // "{callSid}:{ingestMillis}"
	EventType   string            `json:"eventType"`
	UserID      string            `json:"userId,omitempty"`
	PhoneNumber string            `json:"phoneNumber"`
	CallSid     string            `json:"callSid"`
	Timestamp   int64             `json:"timestamp"` // epoch millis
	Details     map[string]string `json:"details,omitempty"`
}

// RecordEventRequest is supplied by the telephony collaborator.
type RecordEventRequest struct {
	EventType   string            `json:"event_type" validate:"required,oneof=unlock_success unlock_failure access_denied access_granted"`
	UserID      string            `json:"user_id"`
	PhoneNumber string            `json:"phone_number" validate:"required"`
	CallSid     string            `json:"call_sid" validate:"required"`
	Timestamp   int64             `json:"timestamp"` // 0 = ingestion time
	Details     map[string]string `json:"details"`
}

// EventStats summarizes a user's recent ledger activity.
type EventStats struct {
	TotalEvents   int           `json:"totalEvents"`
	UnlockSuccess int           `json:"unlockSuccess"`
	UnlockFailure int           `json:"unlockFailure"`
	AccessGranted int           `json:"accessGranted"`
	AccessDenied  int           `json:"accessDenied"`
	EventsByDay   []DayCount    `json:"eventsByDay"`
	RecentEvents  []AccessEvent `json:"recentEvents"`
}

// DayCount is one day's event count, date formatted "2006-01-02".
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

package event

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ricknaldos/buzentry-main-sub001/internal/domain"
	"github.com/ricknaldos/buzentry-main-sub001/pkg/logger"
	"go.uber.org/zap"
)

const recentEventsCap = 10

type Service interface {
	// Record appends the event to the ledger, then fans out to the webhook
	// and notification channels best-effort.
	Record(ctx context.Context, req domain.RecordEventRequest) (*domain.AccessEvent, error)
	// ListForUser returns events ascending by timestamp within [from, to].
	// Zero bounds mean the retention window edge and now respectively.
	ListForUser(ctx context.Context, userID string, from, to int64, limit int) ([]domain.AccessEvent, error)
	Stats(ctx context.Context, userID string, days int) (*domain.EventStats, error)
}

type eventStore interface {
	Record(ctx context.Context, ev *domain.AccessEvent) error
	ListForUser(ctx context.Context, userID string, from, to int64, limit int) ([]domain.AccessEvent, error)
}

type forwarder interface {
	Forward(ctx context.Context, ev *domain.AccessEvent) error
}

type notifier interface {
	NotifyUnlock(ctx context.Context, userID string, ev *domain.AccessEvent)
}

type service struct {
	repo      eventStore
	forwarder forwarder
	notifier  notifier
	now       func() time.Time
}

func NewService(repo eventStore, fw forwarder, n notifier) Service {
	return &service{repo: repo, forwarder: fw, notifier: n, now: time.Now}
}

func (s *service) Record(ctx context.Context, req domain.RecordEventRequest) (*domain.AccessEvent, error) {
	ingest := s.now().UnixMilli()
	ts := req.Timestamp
	if ts == 0 {
		ts = ingest
	}
	ev := &domain.AccessEvent{
		EventID:     fmt.Sprintf("%s:%d", req.CallSid, ingest),
		EventType:   req.EventType,
		UserID:      req.UserID,
		PhoneNumber: req.PhoneNumber,
		CallSid:     req.CallSid,
		Timestamp:   ts,
		Details:     req.Details,
	}
	if err := s.repo.Record(ctx, ev); err != nil {
		return nil, err
	}

	// Fan-out is failure-isolated: the ledger write above is authoritative
	// and is never rolled back or blocked by delivery problems.
	if s.forwarder != nil {
		if err := s.forwarder.Forward(ctx, ev); err != nil {
			logger.L().Warn("webhook forward failed",
				zap.String("event_id", ev.EventID), zap.Error(err))
		}
	}
	if s.notifier != nil && ev.UserID != "" {
		s.notifier.NotifyUnlock(ctx, ev.UserID, ev)
	}
	return ev, nil
}

func (s *service) ListForUser(ctx context.Context, userID string, from, to int64, limit int) ([]domain.AccessEvent, error) {
	return s.repo.ListForUser(ctx, userID, from, to, limit)
}

func (s *service) Stats(ctx context.Context, userID string, days int) (*domain.EventStats, error) {
	if days < 1 {
		days = 30
	}
	from := s.now().AddDate(0, 0, -days).UnixMilli()
	events, err := s.repo.ListForUser(ctx, userID, from, 0, 0)
	if err != nil {
		return nil, err
	}

	stats := &domain.EventStats{TotalEvents: len(events)}
	byDay := map[string]int{}
	for _, ev := range events {
		switch ev.EventType {
		case domain.EventUnlockSuccess:
			stats.UnlockSuccess++
		case domain.EventUnlockFailure:
			stats.UnlockFailure++
		case domain.EventAccessGranted:
			stats.AccessGranted++
		case domain.EventAccessDenied:
			stats.AccessDenied++
		}
		day := time.UnixMilli(ev.Timestamp).UTC().Format("2006-01-02")
		byDay[day]++
	}
	for day, count := range byDay {
		stats.EventsByDay = append(stats.EventsByDay, domain.DayCount{Date: day, Count: count})
	}
	sort.Slice(stats.EventsByDay, func(i, j int) bool {
		return stats.EventsByDay[i].Date < stats.EventsByDay[j].Date
	})

	// Most recent first.
	recent := len(events)
	if recent > recentEventsCap {
		recent = recentEventsCap
	}
	stats.RecentEvents = make([]domain.AccessEvent, 0, recent)
	for i := len(events) - 1; i >= len(events)-recent; i-- {
		stats.RecentEvents = append(stats.RecentEvents, events[i])
	}
	return stats, nil
}

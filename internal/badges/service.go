package badges

import (
	"context"
	"time"

	"github.com/abhisek/skiquiz/internal/store"
)

// Award is a badge unlocked during a quiz session.
type Award struct {
	ID        ID
	SessionID string
	AwardedAt time.Time
}

// Journal is the subset of the event journal the badge service writes to.
type Journal interface {
	AppendBadgeEvent(ctx context.Context, data store.BadgeEventData) error
}

// Service records badge unlocks. It holds no per-quiz state; the quiz
// result carries the badges a run unlocked.
type Service struct {
	journal Journal
	clock   func() time.Time
}

// NewService creates a Service. With a nil journal, Record only builds the
// awards.
func NewService(journal Journal) *Service {
	return &Service{journal: journal, clock: time.Now}
}

// Record stores one award per id and returns them in the same order.
func (s *Service) Record(ctx context.Context, sessionID string, ids []ID) []Award {
	awards := make([]Award, 0, len(ids))
	for _, id := range ids {
		award := Award{ID: id, SessionID: sessionID, AwardedAt: s.clock()}
		s.persist(ctx, award)
		awards = append(awards, award)
	}
	return awards
}

func (s *Service) persist(ctx context.Context, award Award) {
	if s.journal == nil {
		return
	}
	_ = s.journal.AppendBadgeEvent(ctx, store.BadgeEventData{
		SessionID: award.SessionID,
		BadgeID:   string(award.ID),
	})
}

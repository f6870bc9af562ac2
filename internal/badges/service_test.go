package badges

import (
	"context"
	"testing"

	"github.com/abhisek/skiquiz/internal/store"
)

type mockJournal struct {
	events []store.BadgeEventData
}

func (m *mockJournal) AppendBadgeEvent(_ context.Context, data store.BadgeEventData) error {
	m.events = append(m.events, data)
	return nil
}

func TestRecordPersistsEachAward(t *testing.T) {
	j := &mockJournal{}
	svc := NewService(j)

	awards := svc.Record(context.Background(), "sess-1", []ID{FirstRun, HighFlyer})

	if len(awards) != 2 {
		t.Fatalf("got %d awards, want 2", len(awards))
	}
	if awards[1].ID != HighFlyer || awards[1].SessionID != "sess-1" {
		t.Errorf("unexpected award %+v", awards[1])
	}
	if len(j.events) != 2 {
		t.Fatalf("persisted %d events, want 2", len(j.events))
	}
	if j.events[0].BadgeID != "first_run" {
		t.Errorf("persisted badge = %q, want first_run", j.events[0].BadgeID)
	}
}

func TestRecordWithoutJournal(t *testing.T) {
	svc := NewService(nil)
	awards := svc.Record(context.Background(), "sess-2", []ID{StreakWeek})
	if len(awards) != 1 {
		t.Fatalf("got %d awards, want 1", len(awards))
	}
}

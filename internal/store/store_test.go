package store

import (
	"context"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// journal_mode reports "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSequenceIsSharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendTicketEvent(ctx, TicketEventData{Kind: TicketPurchase, Delta: 5, Ref: "pack_5", Balance: 10}); err != nil {
		t.Fatalf("append ticket: %v", err)
	}
	if err := repo.AppendBadgeEvent(ctx, BadgeEventData{SessionID: "s1", BadgeID: "sharpshooter"}); err != nil {
		t.Fatalf("append badge: %v", err)
	}
	if err := repo.AppendGameEvent(ctx, GameEventData{SessionID: "s1", Score: 450, Correct: 3, Total: 5}); err != nil {
		t.Fatalf("append game: %v", err)
	}

	games, err := repo.RecentGames(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("recent games: %v", err)
	}
	badges, err := repo.BadgeUnlocks(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("badge unlocks: %v", err)
	}
	if len(games) != 1 || len(badges) != 1 {
		t.Fatalf("got %d games and %d badges, want 1 each", len(games), len(badges))
	}
	if games[0].Sequence != 3 || badges[0].Sequence != 2 {
		t.Errorf("sequences = game %d, badge %d; want 3, 2", games[0].Sequence, badges[0].Sequence)
	}
	if games[0].Badges != 1 {
		t.Errorf("game badges = %d, want 1", games[0].Badges)
	}
}

func TestRecentGamesNewestFirstWithLimit(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i, score := range []int{100, 200, 300} {
		err := repo.AppendGameEvent(ctx, GameEventData{
			SessionID: string(rune('a' + i)),
			Score:     score,
			Total:     5,
		})
		if err != nil {
			t.Fatalf("append game %d: %v", i, err)
		}
	}

	games, err := repo.RecentGames(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("recent games: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("got %d games, want 2", len(games))
	}
	if games[0].Score != 300 || games[1].Score != 200 {
		t.Errorf("scores = %d, %d; want 300, 200", games[0].Score, games[1].Score)
	}

	older, err := repo.RecentGames(ctx, QueryOpts{Before: games[1].Sequence})
	if err != nil {
		t.Fatalf("recent games before: %v", err)
	}
	if len(older) != 1 || older[0].Score != 100 {
		t.Errorf("older games = %+v, want the 100-point game", older)
	}
}

func TestLifetimeStats(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	empty, err := repo.LifetimeStats(ctx)
	if err != nil {
		t.Fatalf("empty stats: %v", err)
	}
	if empty.Games != 0 || empty.AverageScore() != 0 || empty.Accuracy() != 0 {
		t.Errorf("empty stats = %+v", empty)
	}

	games := []GameEventData{
		{SessionID: "a", Score: 700, Correct: 5, Total: 5, Perfect: true, PersonalBest: true},
		{SessionID: "b", Free: true, Score: 150, Correct: 1, Total: 5},
	}
	for _, g := range games {
		if err := repo.AppendGameEvent(ctx, g); err != nil {
			t.Fatalf("append game: %v", err)
		}
	}
	answers := []AnswerEventData{
		{SessionID: "b", QuestionID: "q1", Selected: "__timeout__", TimedOut: true},
		{SessionID: "b", QuestionID: "q2", Selected: "Alps", Correct: true, Points: 150},
	}
	for _, a := range answers {
		if err := repo.AppendAnswerEvent(ctx, a); err != nil {
			t.Fatalf("append answer: %v", err)
		}
	}
	tickets := []TicketEventData{
		{Kind: TicketPurchase, Delta: 5, Balance: 10},
		{Kind: TicketPurchase, Delta: 15, Balance: 25},
		{Kind: TicketReplay, Delta: -1, Balance: 24},
	}
	for _, tk := range tickets {
		if err := repo.AppendTicketEvent(ctx, tk); err != nil {
			t.Fatalf("append ticket: %v", err)
		}
	}

	st, err := repo.LifetimeStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Games != 2 || st.FreeGames != 1 || st.BestScore != 700 || st.PerfectGames != 1 {
		t.Errorf("game aggregates = %+v", st)
	}
	if st.AverageScore() != 425 {
		t.Errorf("average score = %d, want 425", st.AverageScore())
	}
	if st.Accuracy() != 60 {
		t.Errorf("accuracy = %d, want 60", st.Accuracy())
	}
	if st.Timeouts != 1 {
		t.Errorf("timeouts = %d, want 1", st.Timeouts)
	}
	if st.Tickets[TicketPurchase] != 20 || st.Tickets[TicketReplay] != -1 {
		t.Errorf("ticket flow = %v", st.Tickets)
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "anthropic", Model: "claude-sonnet-4-20250514", Purpose: "question-gen", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true, RequestBody: "{}"},
		{Provider: "anthropic", Model: "claude-sonnet-4-20250514", Purpose: "question-gen", InputTokens: 300, OutputTokens: 150, LatencyMs: 400, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "trivia-check", InputTokens: 10, OutputTokens: 5, LatencyMs: 50, ErrorMessage: "rate limited"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append llm request: %v", err)
		}
	}

	list, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 10})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(list) != 3 || list[0].Model != "gpt-4o-mini" {
		t.Fatalf("events = %+v", list)
	}

	got, err := repo.GetLLMEvent(ctx, list[2].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.RequestBody != "{}" || !got.Success {
		t.Errorf("event = %+v", got)
	}

	missing, err := repo.GetLLMEvent(ctx, 999)
	if err != nil || missing != nil {
		t.Errorf("missing event = %+v, %v; want nil, nil", missing, err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("purposes = %+v", byPurpose)
	}
	top := byPurpose[0]
	if top.Purpose != "question-gen" || top.Calls != 2 || top.InputTokens != 400 || top.AvgLatencyMs != 300 {
		t.Errorf("top purpose = %+v", top)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].Model != "claude-sonnet-4-20250514" {
		t.Errorf("models = %+v", byModel)
	}
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendGameEvent(ctx, GameEventData{SessionID: "a", Score: 100, Total: 5}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.SnapshotRepo().Save(ctx, &Snapshot{Data: SnapshotData{Version: 1}}); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	if err := repo.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	st, err := repo.LifetimeStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Games != 0 {
		t.Errorf("games after reset = %d", st.Games)
	}
	snap, err := s.SnapshotRepo().Latest(ctx)
	if err != nil || snap != nil {
		t.Errorf("snapshot after reset = %+v, %v", snap, err)
	}
}

func TestSnapshotSaveAndLatest(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	snap, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest (empty): %v", err)
	}
	if snap != nil {
		t.Fatal("expected nil snapshot when none exist")
	}

	now := time.Now().Truncate(time.Millisecond)
	err = repo.Save(ctx, &Snapshot{
		Sequence:  42,
		Timestamp: now,
		Data: SnapshotData{
			Version:   1,
			Username:  "Guest Skier",
			Tickets:   4,
			HighScore: 700,
			Badges:    []string{"first_run", "high_flyer"},
		},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	snap, err = repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap == nil {
		t.Fatal("expected snapshot")
	}
	if snap.Sequence != 42 || !snap.Timestamp.Equal(now) {
		t.Errorf("sequence/timestamp = %d/%v, want 42/%v", snap.Sequence, snap.Timestamp, now)
	}
	if snap.Data.HighScore != 700 || len(snap.Data.Badges) != 2 {
		t.Errorf("data = %+v", snap.Data)
	}
}

func TestSnapshotPrune(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	base := time.Now().Truncate(time.Millisecond)
	for i := 0; i < 5; i++ {
		err := repo.Save(ctx, &Snapshot{
			Sequence:  int64(i + 1),
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Data:      SnapshotData{Version: 1, Tickets: i},
		})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	if err := repo.Prune(ctx, 2); err != nil {
		t.Fatalf("prune: %v", err)
	}

	var count int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("snapshot count = %d, want 2", count)
	}

	snap, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap.Data.Tickets != 4 {
		t.Errorf("latest tickets = %d, want 4", snap.Data.Tickets)
	}
}

func TestRecorderFlushesOnClose(t *testing.T) {
	s := openTestStore(t)
	rec := NewRecorder(s.EventRepo(), 2)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := rec.AppendAnswerEvent(ctx, AnswerEventData{SessionID: "a", QuestionID: "q", TimedOut: true}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := rec.AppendAnswerEvent(ctx, AnswerEventData{}); err != ErrRecorderClosed {
		t.Errorf("append after close = %v, want ErrRecorderClosed", err)
	}

	st, err := s.EventRepo().LifetimeStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Timeouts != 10 {
		t.Errorf("timeouts = %d, want 10", st.Timeouts)
	}
}

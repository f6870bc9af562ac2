package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/skiquiz/internal/badges"
	"github.com/abhisek/skiquiz/internal/content"
	"github.com/abhisek/skiquiz/internal/countdown"
	"github.com/abhisek/skiquiz/internal/ledger"
	"github.com/abhisek/skiquiz/internal/store"
)

type fixedSampler struct {
	questions []content.Question
	err       error
}

func (f fixedSampler) Sample(n int) ([]content.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]content.Question(nil), f.questions[:min(n, len(f.questions))]...), nil
}

type mockJournal struct {
	mu      sync.Mutex
	games   []store.GameEventData
	answers []store.AnswerEventData
	badges  []store.BadgeEventData
	tickets []store.TicketEventData
}

func (m *mockJournal) AppendGameEvent(_ context.Context, d store.GameEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games = append(m.games, d)
	return nil
}

func (m *mockJournal) AppendAnswerEvent(_ context.Context, d store.AnswerEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers = append(m.answers, d)
	return nil
}

func (m *mockJournal) AppendBadgeEvent(_ context.Context, d store.BadgeEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.badges = append(m.badges, d)
	return nil
}

func (m *mockJournal) AppendTicketEvent(_ context.Context, d store.TicketEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets = append(m.tickets, d)
	return nil
}

func testQuestions() []content.Question {
	qs := make([]content.Question, 5)
	for i := range qs {
		qs[i] = content.Question{
			ID:      fmt.Sprintf("q%d", i+1),
			Text:    fmt.Sprintf("Question %d?", i+1),
			Options: []string{"Right", "Wrong", "Also wrong"},
			Answer:  "Right",
		}
	}
	return qs
}

type harness struct {
	ctrl    *Controller
	ledger  *ledger.Ledger
	sched   *countdown.FakeScheduler
	journal *mockJournal
}

func newHarness(t *testing.T, start ledger.Progress, rules Rules) *harness {
	t.Helper()
	h := &harness{
		ledger:  ledger.New(start),
		sched:   countdown.NewFake(),
		journal: &mockJournal{},
	}
	ids := 0
	h.ctrl = NewController(h.ledger, fixedSampler{questions: testQuestions()}, h.sched, rules,
		WithJournal(h.journal),
		WithSessionIDs(func() string { ids++; return fmt.Sprintf("s%d", ids) }),
	)
	return h
}

// ticksPerQuestion is the default five-second budget at 100ms ticks.
const ticksPerQuestion = 50

func TestRulesPoints(t *testing.T) {
	r := DefaultRules()
	tests := []struct {
		name      string
		correct   bool
		remaining int
		want      int
	}{
		{"full time", true, 50, 120},
		{"half time", true, 25, 110},
		{"small remainder rounds down", true, 1, 100},
		{"rounds up past half", true, 2, 101},
		{"no time", true, 0, 100},
		{"over budget clamps", true, 80, 120},
		{"negative clamps", true, -3, 100},
		{"wrong", false, 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Points(tt.correct, tt.remaining, ticksPerQuestion); got != tt.want {
				t.Errorf("Points(%v, %d) = %d, want %d", tt.correct, tt.remaining, got, tt.want)
			}
		})
	}
}

func TestStartQuiz_SpendsTicket(t *testing.T) {
	h := newHarness(t, ledger.Progress{Tickets: 5}, DefaultRules())

	out, err := h.ctrl.StartQuiz(false)
	if err != nil || out != Started {
		t.Fatalf("StartQuiz = %v, %v; want Started", out, err)
	}
	if got := h.ledger.Get().Tickets; got != 4 {
		t.Errorf("tickets = %d, want 4", got)
	}
	snap := h.ctrl.Snapshot()
	if !snap.Active || snap.Index != 0 || snap.Total != 5 || snap.Score != 0 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Remaining != 5*time.Second {
		t.Errorf("remaining = %v, want 5s", snap.Remaining)
	}
	if len(h.journal.tickets) != 1 || h.journal.tickets[0].Delta != -1 || h.journal.tickets[0].Balance != 4 {
		t.Errorf("ticket events = %+v", h.journal.tickets)
	}
}

func TestStartQuiz_NeedTickets(t *testing.T) {
	start := ledger.Progress{Tickets: 0, HighScore: 300, TotalGamesPlayed: 2}
	h := newHarness(t, start, DefaultRules())
	before := h.ledger.Get()

	out, err := h.ctrl.StartQuiz(false)
	if err != nil || out != NeedTickets {
		t.Fatalf("StartQuiz = %v, %v; want NeedTickets", out, err)
	}
	after := h.ledger.Get()
	if after.Tickets != before.Tickets || after.TotalGamesPlayed != before.TotalGamesPlayed {
		t.Errorf("ledger changed: %+v -> %+v", before, after)
	}
	if h.ctrl.State() != StateIdle {
		t.Errorf("state = %v, want idle", h.ctrl.State())
	}
	if h.sched.Active() != 0 {
		t.Errorf("timer tasks = %d, want 0", h.sched.Active())
	}
}

func TestStartQuiz_FreePlayOncePerDay(t *testing.T) {
	h := newHarness(t, ledger.Progress{Tickets: 0}, DefaultRules())

	out, err := h.ctrl.StartQuiz(true)
	if err != nil || out != Started {
		t.Fatalf("first free play = %v, %v", out, err)
	}
	p := h.ledger.Get()
	if !p.DailyFreePlayUsed || p.Tickets != 0 {
		t.Errorf("after free play: used=%v tickets=%d", p.DailyFreePlayUsed, p.Tickets)
	}

	out, err = h.ctrl.StartQuiz(true)
	if err != nil || out != FreePlayUsed {
		t.Fatalf("second free play = %v, %v; want FreePlayUsed", out, err)
	}
	// The refused start leaves the running quiz abandoned but the ledger intact.
	if h.ledger.Get().TotalGamesPlayed != 0 {
		t.Error("refused start must not record a game")
	}
}

func TestStartQuiz_SampleError(t *testing.T) {
	l := ledger.New(ledger.Progress{Tickets: 3})
	sampleErr := errors.New("not enough questions in pool")
	c := NewController(l, fixedSampler{err: sampleErr}, countdown.NewFake(), DefaultRules())

	_, err := c.StartQuiz(false)
	if !errors.Is(err, sampleErr) {
		t.Fatalf("err = %v, want wrapped sample error", err)
	}
	if l.Get().Tickets != 3 {
		t.Error("failed start must not spend a ticket")
	}
}

func TestPerfectGame(t *testing.T) {
	h := newHarness(t, ledger.Progress{Tickets: 5}, DefaultRules())
	if _, err := h.ctrl.StartQuiz(false); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 4; i++ {
		if out := h.ctrl.SubmitAnswer("Right"); out != Next {
			t.Fatalf("answer %d = %v, want Next", i, out)
		}
	}
	if out := h.ctrl.SubmitAnswer("Right"); out != Finished {
		t.Fatalf("last answer = %v, want Finished", out)
	}

	res, ok := h.ctrl.Result()
	if !ok {
		t.Fatal("expected a result")
	}
	if res.Score != 700 {
		t.Errorf("score = %d, want 700", res.Score)
	}
	if !res.Perfect || res.Correct != 5 || res.Accuracy() != 100 {
		t.Errorf("result = %+v", res)
	}
	if !res.PersonalBest {
		t.Error("700 should be a personal best")
	}
	wantBadges := []badges.ID{badges.FirstRun, badges.HighFlyer}
	if fmt.Sprint(res.NewBadges) != fmt.Sprint(wantBadges) {
		t.Errorf("badges = %v, want %v", res.NewBadges, wantBadges)
	}

	p := h.ledger.Get()
	if p.HighScore != 700 || p.TotalScore != 700 || p.PerfectGames != 1 ||
		p.TotalCorrectAnswers != 5 || p.TotalGamesPlayed != 1 {
		t.Errorf("ledger = %+v", p)
	}
	if !p.Badges.Has(badges.HighFlyer) || !p.Badges.Has(badges.FirstRun) {
		t.Errorf("ledger badges = %v", p.Badges.Sorted())
	}

	if h.ctrl.State() != StateFinished {
		t.Errorf("state = %v, want finished", h.ctrl.State())
	}
	if h.sched.Active() != 0 {
		t.Errorf("timer tasks = %d after finish, want 0", h.sched.Active())
	}

	if len(h.journal.answers) != 5 || len(h.journal.games) != 1 || len(h.journal.badges) != 2 {
		t.Errorf("journal: %d answers, %d games, %d badges",
			len(h.journal.answers), len(h.journal.games), len(h.journal.badges))
	}
	if g := h.journal.games[0]; g.Score != 700 || !g.Perfect || !g.PersonalBest {
		t.Errorf("game event = %+v", g)
	}
}

func TestAllTimeouts(t *testing.T) {
	start := ledger.Progress{Tickets: 5, HighScore: 400, TotalCorrectAnswers: 45, PerfectGames: 2}
	h := newHarness(t, start, DefaultRules())
	if _, err := h.ctrl.StartQuiz(false); err != nil {
		t.Fatal(err)
	}

	h.sched.TickN(5 * ticksPerQuestion)

	res, ok := h.ctrl.Result()
	if !ok {
		t.Fatalf("quiz did not finish; state = %v", h.ctrl.State())
	}
	if res.Score != 0 || res.Correct != 0 || res.PersonalBest {
		t.Errorf("result = %+v", res)
	}

	p := h.ledger.Get()
	if p.TotalCorrectAnswers != 45 || p.PerfectGames != 2 || p.HighScore != 400 {
		t.Errorf("ledger = %+v", p)
	}
	if p.TotalGamesPlayed != 1 {
		t.Errorf("games = %d, want 1", p.TotalGamesPlayed)
	}
	for _, a := range h.journal.answers {
		if !a.TimedOut || a.Selected != Timeout || a.Points != 0 {
			t.Errorf("answer event = %+v", a)
		}
	}
}

func TestTimeoutMatchesWrongAnswer(t *testing.T) {
	wrong := newHarness(t, ledger.Progress{Tickets: 1}, DefaultRules())
	timeout := newHarness(t, ledger.Progress{Tickets: 1}, DefaultRules())
	for _, h := range []*harness{wrong, timeout} {
		if _, err := h.ctrl.StartQuiz(false); err != nil {
			t.Fatal(err)
		}
	}

	wrong.ctrl.SubmitAnswer("Wrong")
	timeout.sched.TickN(ticksPerQuestion)

	a, b := wrong.ctrl.Snapshot(), timeout.ctrl.Snapshot()
	if a.Index != b.Index || a.Score != b.Score || fmt.Sprint(a.Answers) != fmt.Sprint(b.Answers) {
		t.Errorf("wrong answer %+v differs from timeout %+v", a, b)
	}
	if b.Index != 1 || b.Remaining != 5*time.Second {
		t.Errorf("after timeout: index %d remaining %v", b.Index, b.Remaining)
	}
}

func TestSpeedBonusFollowsRemainingTime(t *testing.T) {
	h := newHarness(t, ledger.Progress{Tickets: 1}, DefaultRules())
	if _, err := h.ctrl.StartQuiz(false); err != nil {
		t.Fatal(err)
	}

	h.sched.TickN(ticksPerQuestion / 2)
	h.ctrl.SubmitAnswer("Right")

	if got := h.ctrl.Snapshot().Score; got != 110 {
		t.Errorf("score = %d, want 110", got)
	}
}

func TestSubmitWhenInactiveIsIgnored(t *testing.T) {
	h := newHarness(t, ledger.Progress{Tickets: 1}, DefaultRules())

	if out := h.ctrl.SubmitAnswer("Right"); out != Ignored {
		t.Errorf("idle submit = %v, want Ignored", out)
	}

	h.ctrl.StartQuiz(false)
	for i := 0; i < 5; i++ {
		h.ctrl.SubmitAnswer("Right")
	}
	before := h.ledger.Get()
	snap := h.ctrl.Snapshot()

	if out := h.ctrl.SubmitAnswer("Right"); out != Ignored {
		t.Errorf("finished submit = %v, want Ignored", out)
	}
	h.sched.TickN(ticksPerQuestion)

	if got := h.ctrl.Snapshot(); got.Score != snap.Score || len(got.Answers) != len(snap.Answers) {
		t.Errorf("snapshot changed: %+v -> %+v", snap, got)
	}
	if after := h.ledger.Get(); after.TotalGamesPlayed != before.TotalGamesPlayed || after.TotalScore != before.TotalScore {
		t.Error("ledger changed after finish")
	}
}

func TestAbandon_NoLedgerUpdate(t *testing.T) {
	h := newHarness(t, ledger.Progress{Tickets: 2}, DefaultRules())
	h.ctrl.StartQuiz(false)
	h.ctrl.SubmitAnswer("Right")

	h.ctrl.Abandon()

	if h.ctrl.State() != StateIdle {
		t.Errorf("state = %v, want idle", h.ctrl.State())
	}
	if h.sched.Active() != 0 {
		t.Errorf("timer tasks = %d, want 0", h.sched.Active())
	}
	p := h.ledger.Get()
	if p.TotalGamesPlayed != 0 || p.TotalScore != 0 || p.Tickets != 1 {
		t.Errorf("ledger = %+v", p)
	}
	if _, ok := h.ctrl.Result(); ok {
		t.Error("abandoned quiz must not produce a result")
	}
}

func TestRestartDiscardsOldTimer(t *testing.T) {
	h := newHarness(t, ledger.Progress{Tickets: 2}, DefaultRules())
	h.ctrl.StartQuiz(false)
	h.sched.TickN(ticksPerQuestion - 1)

	// The first quiz's one remaining tick is stale once a new quiz starts.
	h.ctrl.Abandon()
	h.ctrl.StartQuiz(false)
	h.sched.TickN(ticksPerQuestion - 1)

	snap := h.ctrl.Snapshot()
	if snap.Index != 0 || len(snap.Answers) != 0 {
		t.Errorf("stale ticks resolved a question: %+v", snap)
	}
	if snap.Remaining != countdown.DefaultInterval {
		t.Errorf("remaining = %v, want one tick", snap.Remaining)
	}
	if snap.SessionID != "s2" {
		t.Errorf("session = %q, want s2", snap.SessionID)
	}
	if h.ledger.Get().TotalGamesPlayed != 0 {
		t.Error("abandoned quiz must not be recorded")
	}
}

func TestStartQuiz_WhileRunningKeepsQuiz(t *testing.T) {
	for _, free := range []bool{false, true} {
		t.Run(fmt.Sprintf("free=%v", free), func(t *testing.T) {
			h := newHarness(t, ledger.Progress{Tickets: 1}, DefaultRules())
			if out, err := h.ctrl.StartQuiz(false); out != Started || err != nil {
				t.Fatalf("start = %v, %v", out, err)
			}
			h.ctrl.SubmitAnswer("Right")
			before := h.ctrl.Snapshot()
			ledgerBefore := h.ledger.Get()

			out, err := h.ctrl.StartQuiz(free)
			if err != nil || out != AlreadyRunning {
				t.Fatalf("second start = %v, %v; want already_running", out, err)
			}

			after := h.ctrl.Snapshot()
			if !after.Active || after.Index != 1 || after.SessionID != before.SessionID {
				t.Fatalf("quiz changed: before %+v after %+v", before, after)
			}
			if h.sched.Active() != 1 {
				t.Fatalf("active timers = %d, want 1", h.sched.Active())
			}
			if got := h.ledger.Get(); got.Tickets != ledgerBefore.Tickets || got.DailyFreePlayUsed != ledgerBefore.DailyFreePlayUsed {
				t.Fatalf("ledger changed: %+v", got)
			}
			if got := h.ctrl.SubmitAnswer("Right"); got != Next {
				t.Fatalf("answer after rejected start = %v, want next", got)
			}
		})
	}
}

func TestStartQuiz_RejectedKeepsFinishedResult(t *testing.T) {
	h := newHarness(t, ledger.Progress{Tickets: 1, DailyFreePlayUsed: true}, DefaultRules())
	h.ctrl.StartQuiz(false)
	for range 5 {
		h.ctrl.SubmitAnswer("Right")
	}
	res, ok := h.ctrl.Result()
	if !ok {
		t.Fatal("no result after the last answer")
	}

	if out, err := h.ctrl.StartQuiz(false); out != NeedTickets || err != nil {
		t.Fatalf("paid start = %v, %v; want need_tickets", out, err)
	}
	if out, err := h.ctrl.StartQuiz(true); out != FreePlayUsed || err != nil {
		t.Fatalf("free start = %v, %v; want free_play_used", out, err)
	}

	if h.ctrl.State() != StateFinished {
		t.Fatalf("state = %v, want finished", h.ctrl.State())
	}
	if got, ok := h.ctrl.Result(); !ok || got.SessionID != res.SessionID {
		t.Fatalf("result replaced: %+v", got)
	}
}

func TestAbandonSession(t *testing.T) {
	h := newHarness(t, ledger.Progress{Tickets: 2}, DefaultRules())
	h.ctrl.StartQuiz(false)

	h.ctrl.AbandonSession("s9")
	h.ctrl.AbandonSession("")
	if h.ctrl.State() != StateInProgress {
		t.Fatal("another session id ended the quiz")
	}

	h.ctrl.AbandonSession("s1")
	if h.ctrl.State() != StateIdle || h.sched.Active() != 0 {
		t.Fatalf("state %v timers %d, want idle with none", h.ctrl.State(), h.sched.Active())
	}
}

func TestCurrent(t *testing.T) {
	h := newHarness(t, ledger.Progress{Tickets: 1}, DefaultRules())
	if _, ok := h.ctrl.Current(); ok {
		t.Fatal("idle controller reported a question")
	}

	h.ctrl.StartQuiz(false)
	q, ok := h.ctrl.Current()
	if !ok || q.ID != "q1" {
		t.Fatalf("current = %+v, %v; want q1", q, ok)
	}
	h.ctrl.SubmitAnswer("Wrong")
	if q, _ := h.ctrl.Current(); q.ID != "q2" {
		t.Fatalf("current = %q, want q2", q.ID)
	}

	for range 4 {
		h.ctrl.SubmitAnswer("Right")
	}
	if _, ok := h.ctrl.Current(); ok {
		t.Fatal("finished quiz reported a question")
	}
}

func TestCompletionPolicy(t *testing.T) {
	rules := DefaultRules()
	rules.Completion = CompletionPerGame
	rules.TicketsPerGame = 2
	h := newHarness(t, ledger.Progress{Tickets: 1}, rules)

	h.ctrl.StartQuiz(false)
	for i := 0; i < 5; i++ {
		h.ctrl.SubmitAnswer("Wrong")
	}

	res, _ := h.ctrl.Result()
	if res.TicketsEarned != 2 {
		t.Errorf("tickets earned = %d, want 2", res.TicketsEarned)
	}
	if got := h.ledger.Get().Tickets; got != 2 {
		t.Errorf("tickets = %d, want 2", got)
	}
	last := h.journal.tickets[len(h.journal.tickets)-1]
	if last.Kind != store.TicketReward || last.Delta != 2 {
		t.Errorf("reward event = %+v", last)
	}
}

func TestBadges_EliteClubUsesPriorRank(t *testing.T) {
	start := ledger.Progress{
		Tickets:             1,
		Rank:                5,
		StreakDays:          7,
		TotalCorrectAnswers: 99,
		Badges:              badges.NewSet(badges.FirstRun),
	}
	h := newHarness(t, start, DefaultRules())
	h.ctrl.StartQuiz(false)
	h.ctrl.SubmitAnswer("Right")
	for i := 0; i < 4; i++ {
		h.ctrl.SubmitAnswer("Wrong")
	}

	res, _ := h.ctrl.Result()
	want := []badges.ID{badges.StreakWeek, badges.Sharpshooter, badges.EliteClub}
	if fmt.Sprint(res.NewBadges) != fmt.Sprint(want) {
		t.Errorf("badges = %v, want %v", res.NewBadges, want)
	}
}

func TestCountersNeverDecrease(t *testing.T) {
	h := newHarness(t, ledger.Progress{Tickets: 10}, DefaultRules())
	answers := [][]string{
		{"Right", "Right", "Right", "Right", "Right"},
		{"Wrong", "Wrong", "Wrong", "Wrong", "Wrong"},
		{"Right", "Wrong", "Right", "Wrong", "Right"},
	}

	prev := h.ledger.Get()
	for _, game := range answers {
		h.ctrl.StartQuiz(false)
		for _, a := range game {
			h.ctrl.SubmitAnswer(a)
		}
		p := h.ledger.Get()
		if p.TotalGamesPlayed < prev.TotalGamesPlayed || p.TotalCorrectAnswers < prev.TotalCorrectAnswers ||
			p.HighScore < prev.HighScore || p.PerfectGames < prev.PerfectGames || !p.Badges.ContainsAll(prev.Badges) {
			t.Fatalf("progress went backwards: %+v -> %+v", prev, p)
		}
		prev = p
	}
	if prev.HighScore != 700 || prev.TotalGamesPlayed != 3 {
		t.Errorf("final = %+v", prev)
	}
}

func TestAnswerRacingExpiry(t *testing.T) {
	rules := DefaultRules()
	rules.TimePerQuestion = 3 * time.Millisecond
	rules.TickInterval = time.Millisecond
	c := NewController(ledger.New(ledger.Progress{Tickets: 1}),
		fixedSampler{questions: testQuestions()}, countdown.TickerScheduler{}, rules)

	if _, err := c.StartQuiz(false); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			deadline := time.Now().Add(5 * time.Second)
			for c.State() == StateInProgress && time.Now().Before(deadline) {
				c.SubmitAnswer("Right")
			}
		}()
	}
	wg.Wait()

	res, ok := c.Result()
	if !ok {
		t.Fatalf("quiz did not finish; state = %v", c.State())
	}
	if len(res.Answers) != res.Total {
		t.Errorf("answers = %d, want exactly %d", len(res.Answers), res.Total)
	}
}

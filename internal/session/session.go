// Package session runs a quiz: it draws questions, times each one, scores
// answers and folds the finished game into the progress ledger.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/skiquiz/internal/badges"
	"github.com/abhisek/skiquiz/internal/content"
	"github.com/abhisek/skiquiz/internal/countdown"
	"github.com/abhisek/skiquiz/internal/ledger"
	"github.com/abhisek/skiquiz/internal/store"
)

// Sampler draws the questions for one quiz.
type Sampler interface {
	Sample(n int) ([]content.Question, error)
}

// Journal receives the events a quiz produces.
type Journal interface {
	badges.Journal
	AppendGameEvent(ctx context.Context, data store.GameEventData) error
	AppendAnswerEvent(ctx context.Context, data store.AnswerEventData) error
	AppendTicketEvent(ctx context.Context, data store.TicketEventData) error
}

var (
	errNeedTickets  = errors.New("not enough tickets")
	errFreePlayUsed = errors.New("free play used")
)

// Controller owns the quiz state machine. Timer ticks arrive on the
// scheduler's goroutine and intents on the UI's; one mutex serializes both.
// The controller takes the ledger's lock while holding its own, never the
// reverse.
type Controller struct {
	mu sync.Mutex

	ledger  *ledger.Ledger
	bank    Sampler
	timer   *countdown.Timer
	rules   Rules
	journal Journal
	awards  *badges.Service
	clock   func() time.Time
	newID   func() string

	state     State
	sessionID string
	free      bool
	questions []content.Question
	index     int
	score     int
	answers   []bool
	startedAt time.Time
	result    *Result
	err       error
}

// Option configures a Controller.
type Option func(*Controller)

// WithJournal records quiz events. Writes happen after the controller lock
// is released.
func WithJournal(j Journal) Option {
	return func(c *Controller) { c.journal = j }
}

// WithClock sets the time source for game durations.
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithSessionIDs sets the session id generator.
func WithSessionIDs(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

// NewController creates an idle controller.
func NewController(l *ledger.Ledger, bank Sampler, sched countdown.Scheduler, rules Rules, opts ...Option) *Controller {
	c := &Controller{
		ledger: l,
		bank:   bank,
		timer:  countdown.NewTimer(sched, rules.TimePerQuestion, rules.TickInterval),
		rules:  rules,
		clock:  time.Now,
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	var bj badges.Journal
	if c.journal != nil {
		bj = c.journal
	}
	c.awards = badges.NewService(bj)
	return c
}

// StartQuiz begins a new quiz, paying with a ticket or the daily free play.
// While a quiz is in progress it reports AlreadyRunning and changes
// nothing. Running short of tickets or free plays is an outcome, not an
// error, and leaves the previous result in place.
func (c *Controller) StartQuiz(free bool) (StartOutcome, error) {
	var events []func(context.Context)
	defer func() { c.flush(events) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateInProgress {
		return AlreadyRunning, nil
	}

	questions, err := c.bank.Sample(c.rules.QuestionsPerGame)
	if err != nil {
		return Started, fmt.Errorf("sample questions: %w", err)
	}
	if len(questions) == 0 {
		return Started, fmt.Errorf("sample questions: empty pool")
	}

	cost := c.rules.ReplayCost
	after, err := c.ledger.Apply(func(p *ledger.Progress) error {
		if free {
			if p.DailyFreePlayUsed {
				return errFreePlayUsed
			}
			p.DailyFreePlayUsed = true
			return nil
		}
		if p.Tickets < cost {
			return errNeedTickets
		}
		p.Tickets -= cost
		return nil
	})
	switch {
	case errors.Is(err, errNeedTickets):
		return NeedTickets, nil
	case errors.Is(err, errFreePlayUsed):
		return FreePlayUsed, nil
	case err != nil:
		return Started, fmt.Errorf("pay for quiz: %w", err)
	}

	c.timer.Stop()
	c.sessionID = c.newID()
	c.free = free
	c.questions = questions
	c.index = 0
	c.score = 0
	c.answers = nil
	c.result = nil
	c.err = nil
	c.startedAt = c.clock()
	c.state = StateInProgress
	c.timer.Restart(c.onTick)

	log.Printf("session %s: started (free=%v, questions=%d)", c.sessionID, free, len(questions))

	if !free && cost > 0 {
		data := store.TicketEventData{
			Kind:    store.TicketReplay,
			Delta:   -cost,
			Ref:     c.sessionID,
			Balance: after.Tickets,
		}
		events = append(events, func(ctx context.Context) { _ = c.journal.AppendTicketEvent(ctx, data) })
	}
	return Started, nil
}

// SubmitAnswer resolves the current question with selected. It is ignored
// when no quiz is active.
func (c *Controller) SubmitAnswer(selected string) AnswerOutcome {
	var events []func(context.Context)
	defer func() { c.flush(events) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInProgress {
		return Ignored
	}
	return c.resolveLocked(selected, &events)
}

// onTick is the timer callback. An expiry resolves the question exactly as
// a wrong answer would.
func (c *Controller) onTick(tok countdown.Token) {
	var events []func(context.Context)
	defer func() { c.flush(events) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInProgress {
		return
	}
	if c.timer.Tick(tok) == countdown.TickExpired {
		c.resolveLocked(Timeout, &events)
	}
}

func (c *Controller) resolveLocked(selected string, events *[]func(context.Context)) AnswerOutcome {
	remaining := c.timer.RemainingTicks()
	c.timer.Stop()

	q := c.questions[c.index]
	timedOut := selected == Timeout
	correct := !timedOut && selected == q.Answer
	points := c.rules.Points(correct, remaining, c.timer.BudgetTicks())

	c.answers = append(c.answers, correct)
	c.score += points

	answer := store.AnswerEventData{
		SessionID:   c.sessionID,
		QuestionID:  q.ID,
		Selected:    selected,
		Correct:     correct,
		TimedOut:    timedOut,
		RemainingMs: c.timer.Remaining().Milliseconds(),
		Points:      points,
	}
	*events = append(*events, func(ctx context.Context) { _ = c.journal.AppendAnswerEvent(ctx, answer) })

	if c.index+1 < len(c.questions) {
		c.index++
		c.timer.Restart(c.onTick)
		return Next
	}
	c.finishLocked(events)
	return Finished
}

func (c *Controller) finishLocked(events *[]func(context.Context)) {
	perfect := allTrue(c.answers)
	if perfect {
		c.score += c.rules.PerfectBonus
	}
	c.state = StateFinished

	done := &completion{
		score:   c.score,
		correct: countTrue(c.answers),
		perfect: perfect,
		reward:  c.rules.CompletionReward(),
	}
	after, err := c.ledger.Apply(done.mutation())
	if err != nil {
		// The quiz still finishes; the ledger keeps its previous record.
		c.err = fmt.Errorf("apply quiz result: %w", err)
		log.Printf("session %s: %v", c.sessionID, c.err)
		done.earned = nil
		done.reward = 0
		after = c.ledger.Get()
	}

	res := &Result{
		SessionID:     c.sessionID,
		Free:          c.free,
		Score:         c.score,
		Correct:       done.correct,
		Total:         len(c.questions),
		Answers:       append([]bool(nil), c.answers...),
		Perfect:       perfect,
		NewBadges:     done.earned,
		PersonalBest:  err == nil && personalBest(c.score, done.prevHigh),
		TicketsEarned: done.reward,
		Duration:      c.clock().Sub(c.startedAt),
		Progress:      after,
	}
	c.result = res

	log.Printf("session %s: finished score=%d correct=%d/%d", res.SessionID, res.Score, res.Correct, res.Total)

	game := store.GameEventData{
		SessionID:    res.SessionID,
		Free:         res.Free,
		Score:        res.Score,
		Correct:      res.Correct,
		Total:        res.Total,
		Perfect:      res.Perfect,
		PersonalBest: res.PersonalBest,
		DurationMs:   res.Duration.Milliseconds(),
	}
	*events = append(*events, func(ctx context.Context) {
		_ = c.journal.AppendGameEvent(ctx, game)
	})
	if len(res.NewBadges) > 0 {
		ids := res.NewBadges
		*events = append(*events, func(ctx context.Context) { c.awards.Record(ctx, res.SessionID, ids) })
	}
	if res.TicketsEarned > 0 {
		reward := store.TicketEventData{
			Kind:    store.TicketReward,
			Delta:   res.TicketsEarned,
			Ref:     res.SessionID,
			Balance: after.Tickets,
		}
		*events = append(*events, func(ctx context.Context) { _ = c.journal.AppendTicketEvent(ctx, reward) })
	}
}

// Abandon drops a quiz in progress without touching the ledger. A finished
// quiz keeps its result.
func (c *Controller) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.abandonLocked()
}

// AbandonSession abandons only if id is still the current session. A
// screen that outlived its quiz cannot end a newer one.
func (c *Controller) AbandonSession(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == "" || id != c.sessionID {
		return
	}
	c.abandonLocked()
}

func (c *Controller) abandonLocked() {
	c.timer.Stop()
	if c.state == StateInProgress {
		log.Printf("session %s: abandoned at question %d", c.sessionID, c.index+1)
	}
	c.state = StateIdle
}

// Snapshot returns the current quiz view.
func (c *Controller) Snapshot() Quiz {
	c.mu.Lock()
	defer c.mu.Unlock()

	q := Quiz{
		SessionID: c.sessionID,
		Free:      c.free,
		Index:     c.index,
		Total:     len(c.questions),
		Score:     c.score,
		Answers:   append([]bool(nil), c.answers...),
		Active:    c.state == StateInProgress,
		Remaining: c.timer.Remaining(),
		Fraction:  c.timer.Fraction(),
	}
	if c.index < len(c.questions) {
		q.Question = c.questions[c.index]
	}
	return q
}

// Current returns the question being asked, if a quiz is active.
func (c *Controller) Current() (content.Question, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateInProgress {
		return content.Question{}, false
	}
	return c.questions[c.index], true
}

// State returns the lifecycle phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Result returns the last finished quiz, if any.
func (c *Controller) Result() (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return Result{}, false
	}
	return *c.result, true
}

// Err returns the error from applying the last finished quiz, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Rules returns the game parameters.
func (c *Controller) Rules() Rules {
	return c.rules
}

func (c *Controller) flush(events []func(context.Context)) {
	if c.journal == nil {
		return
	}
	ctx := context.Background()
	for _, e := range events {
		e(ctx)
	}
}

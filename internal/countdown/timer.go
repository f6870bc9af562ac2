package countdown

import "time"

// DefaultInterval is the tick period of a question timer.
const DefaultInterval = 100 * time.Millisecond

// Token identifies one run of a Timer. Ticks carrying an older token are ignored.
type Token uint64

// TickResult reports what a tick did.
type TickResult int

const (
	// TickStale means the tick belonged to a cancelled or finished run.
	TickStale TickResult = iota
	// TickRunning means time was deducted and some remains.
	TickRunning
	// TickExpired means this tick used up the budget. It is reported once per run.
	TickExpired
)

// Timer counts a fixed budget down in whole ticks. It holds no lock: the
// owner must serialize Restart, Stop and Tick.
type Timer struct {
	sched    Scheduler
	interval time.Duration
	budget   int

	token     Token
	remaining int
	running   bool
	cancel    Cancel
}

// NewTimer creates a stopped timer with the given budget and tick interval.
func NewTimer(sched Scheduler, budget, interval time.Duration) *Timer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticks := int((budget + interval - 1) / interval)
	return &Timer{
		sched:     sched,
		interval:  interval,
		budget:    ticks,
		remaining: ticks,
	}
}

// Restart abandons any current run, refills the budget and schedules ticks.
// Each tick calls onTick with the token of the new run.
func (t *Timer) Restart(onTick func(Token)) Token {
	t.Stop()
	t.token++
	t.remaining = t.budget
	t.running = true
	tok := t.token
	t.cancel = t.sched.Every(t.interval, func() { onTick(tok) })
	return tok
}

// Stop cancels the current run. Outstanding ticks become stale.
func (t *Timer) Stop() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.running = false
}

// Tick deducts one interval if tok is the current run.
func (t *Timer) Tick(tok Token) TickResult {
	if !t.running || tok != t.token {
		return TickStale
	}
	t.remaining--
	if t.remaining > 0 {
		return TickRunning
	}
	t.remaining = 0
	t.Stop()
	return TickExpired
}

// RemainingTicks returns whole ticks left in the current run.
func (t *Timer) RemainingTicks() int {
	return t.remaining
}

// BudgetTicks returns the ticks in a full run.
func (t *Timer) BudgetTicks() int {
	return t.budget
}

// Remaining returns the time left in the current run.
func (t *Timer) Remaining() time.Duration {
	return time.Duration(t.remaining) * t.interval
}

// Fraction returns remaining/budget in [0, 1].
func (t *Timer) Fraction() float64 {
	if t.budget == 0 {
		return 0
	}
	return float64(t.remaining) / float64(t.budget)
}

// Package ledger owns the player's progress record for the session.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/skiquiz/internal/badges"
)

var (
	// ErrInvariant is returned when a mutation would break a ledger invariant.
	// The ledger is left unchanged.
	ErrInvariant = errors.New("ledger invariant violated")

	ErrInvalidUsername = errors.New("invalid username")
	ErrUnknownSetting  = errors.New("unknown setting")
)

// Settings are the player's preference toggles.
type Settings struct {
	SoundEnabled         bool
	HapticEnabled        bool
	NotificationsEnabled bool
}

// Progress is a snapshot of the player's record.
type Progress struct {
	Username string

	Tickets   int
	HighScore int

	DailyFreePlayUsed bool
	DailyBonusClaimed bool

	StreakDays int

	TotalGamesPlayed    int
	TotalCorrectAnswers int
	TotalScore          int
	PerfectGames        int

	Badges badges.Set
	Rank   int

	ReferralCode   string
	ReferralsCount int

	Settings Settings
}

// Clone returns a deep copy.
func (p Progress) Clone() Progress {
	out := p
	if p.Badges != nil {
		out.Badges = p.Badges.Clone()
	} else {
		out.Badges = badges.NewSet()
	}
	return out
}

// AverageScore is the rounded mean score per completed game.
func (p Progress) AverageScore() int {
	if p.TotalGamesPlayed == 0 {
		return 0
	}
	return (p.TotalScore + p.TotalGamesPlayed/2) / p.TotalGamesPlayed
}

// Accuracy is the rounded percentage of questions answered correctly,
// assuming perGame questions in every completed game.
func (p Progress) Accuracy(perGame int) int {
	asked := p.TotalGamesPlayed * perGame
	if asked == 0 {
		return 0
	}
	return (p.TotalCorrectAnswers*100 + asked/2) / asked
}

// Mutation changes a working copy of the progress record. Returning an error
// discards the copy.
type Mutation func(p *Progress) error

// DailyReset selects when the once-per-day flags clear.
type DailyReset string

const (
	// ResetCalendar clears the daily flags on the first access of a new local day.
	ResetCalendar DailyReset = "calendar"
	// ResetProcess never clears them; they hold for the process lifetime.
	ResetProcess DailyReset = "process"
)

// Ledger is the single owner of a Progress record. All access goes through
// Get and Apply, which are safe for concurrent use.
type Ledger struct {
	mu    sync.Mutex
	p     Progress
	reset DailyReset
	clock func() time.Time
	day   string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the time source used for daily rollover.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) { l.clock = clock }
}

// WithDailyReset sets the daily flag policy.
func WithDailyReset(r DailyReset) Option {
	return func(l *Ledger) { l.reset = r }
}

// New creates a ledger seeded with initial.
func New(initial Progress, opts ...Option) *Ledger {
	l := &Ledger{
		p:     initial.Clone(),
		reset: ResetCalendar,
		clock: time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	l.day = dayKey(l.clock())
	return l
}

// Get returns a copy of the current record.
func (l *Ledger) Get() Progress {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()
	return l.p.Clone()
}

// Apply runs m against a copy of the record and commits it if m succeeds and
// no invariant is broken. It returns the record as it stands afterwards.
func (l *Ledger) Apply(m Mutation) (Progress, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()

	next := l.p.Clone()
	if err := m(&next); err != nil {
		return l.p.Clone(), err
	}
	if err := checkInvariants(l.p, next); err != nil {
		return l.p.Clone(), err
	}
	l.p = next
	return l.p.Clone(), nil
}

func (l *Ledger) rollover() {
	if l.reset != ResetCalendar {
		return
	}
	today := dayKey(l.clock())
	if today == l.day {
		return
	}
	l.day = today
	l.p.DailyFreePlayUsed = false
	l.p.DailyBonusClaimed = false
}

func dayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

func checkInvariants(prev, next Progress) error {
	switch {
	case next.Tickets < 0:
		return fmt.Errorf("%w: tickets would be %d", ErrInvariant, next.Tickets)
	case next.HighScore < prev.HighScore:
		return fmt.Errorf("%w: high score decreased", ErrInvariant)
	case next.TotalGamesPlayed < prev.TotalGamesPlayed,
		next.TotalCorrectAnswers < prev.TotalCorrectAnswers,
		next.TotalScore < prev.TotalScore,
		next.PerfectGames < prev.PerfectGames,
		next.ReferralsCount < prev.ReferralsCount:
		return fmt.Errorf("%w: counter decreased", ErrInvariant)
	case next.StreakDays < 0 || next.Rank < 0:
		return fmt.Errorf("%w: negative streak or rank", ErrInvariant)
	case !next.Badges.ContainsAll(prev.Badges):
		return fmt.Errorf("%w: badge removed", ErrInvariant)
	}
	return nil
}

package session

import (
	"time"

	"github.com/abhisek/skiquiz/internal/badges"
	"github.com/abhisek/skiquiz/internal/content"
	"github.com/abhisek/skiquiz/internal/ledger"
)

// State is the controller's lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateInProgress
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateFinished:
		return "finished"
	default:
		return "idle"
	}
}

// StartOutcome reports how a StartQuiz request was handled.
type StartOutcome int

const (
	Started StartOutcome = iota
	NeedTickets
	FreePlayUsed
	// AlreadyRunning means a quiz is in progress; nothing was charged.
	AlreadyRunning
)

func (o StartOutcome) String() string {
	switch o {
	case NeedTickets:
		return "need_tickets"
	case FreePlayUsed:
		return "free_play_used"
	case AlreadyRunning:
		return "already_running"
	default:
		return "started"
	}
}

// AnswerOutcome reports what a submitted answer did.
type AnswerOutcome int

const (
	// Ignored means no quiz was active; nothing changed.
	Ignored AnswerOutcome = iota
	// Next means the quiz moved to the following question.
	Next
	// Finished means that was the last question.
	Finished
)

// Quiz is a point-in-time view of the running quiz.
type Quiz struct {
	SessionID string
	Free      bool

	Index    int
	Total    int
	Question content.Question

	Score   int
	Answers []bool
	Active  bool

	// Remaining is the time left on the current question; Fraction is the
	// same as a share of the full budget.
	Remaining time.Duration
	Fraction  float64
}

// Correct counts the correct answers so far.
func (q Quiz) Correct() int {
	return countTrue(q.Answers)
}

// Result summarises a finished quiz.
type Result struct {
	SessionID string
	Free      bool

	Score   int
	Correct int
	Total   int
	Answers []bool
	Perfect bool

	// NewBadges are the badges this quiz unlocked, in rule order.
	NewBadges     []badges.ID
	PersonalBest  bool
	TicketsEarned int
	Duration      time.Duration

	// Progress is the ledger record right after the quiz was applied.
	Progress ledger.Progress
}

// Accuracy is the rounded percentage of correct answers.
func (r Result) Accuracy() int {
	if r.Total == 0 {
		return 0
	}
	return (r.Correct*100 + r.Total/2) / r.Total
}

func countTrue(bs []bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

func allTrue(bs []bool) bool {
	return len(bs) > 0 && countTrue(bs) == len(bs)
}

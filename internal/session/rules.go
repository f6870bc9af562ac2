package session

import (
	"time"

	"github.com/abhisek/skiquiz/internal/content"
	"github.com/abhisek/skiquiz/internal/countdown"
)

// Timeout is the answer recorded when a question's time runs out. Content
// validation forbids it as an option, so it is never correct.
const Timeout = content.TimeoutAnswer

// CompletionPolicy decides whether finishing a quiz pays out tickets.
type CompletionPolicy string

const (
	CompletionNone    CompletionPolicy = "none"
	CompletionPerGame CompletionPolicy = "per_game"
)

// Rules are the tunable game parameters.
type Rules struct {
	QuestionsPerGame int
	TimePerQuestion  time.Duration
	TickInterval     time.Duration

	BaseScore     int
	MaxSpeedBonus int
	PerfectBonus  int
	ReplayCost    int

	Completion     CompletionPolicy
	TicketsPerGame int
}

// DefaultRules returns the standard five-question, five-second game.
func DefaultRules() Rules {
	return Rules{
		QuestionsPerGame: 5,
		TimePerQuestion:  5 * time.Second,
		TickInterval:     countdown.DefaultInterval,
		BaseScore:        100,
		MaxSpeedBonus:    20,
		PerfectBonus:     100,
		ReplayCost:       1,
		Completion:       CompletionNone,
		TicketsPerGame:   1,
	}
}

// Points scores one answer. A correct answer earns the base score plus a
// speed bonus proportional to the ticks left, rounded half up.
func (r Rules) Points(correct bool, remainingTicks, budgetTicks int) int {
	if !correct {
		return 0
	}
	if budgetTicks <= 0 {
		return r.BaseScore
	}
	remainingTicks = min(max(remainingTicks, 0), budgetTicks)
	bonus := (2*remainingTicks*r.MaxSpeedBonus + budgetTicks) / (2 * budgetTicks)
	return r.BaseScore + bonus
}

// CompletionReward returns the tickets granted for finishing a quiz.
func (r Rules) CompletionReward() int {
	if r.Completion == CompletionPerGame {
		return r.TicketsPerGame
	}
	return 0
}

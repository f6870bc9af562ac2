package rewards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/skiquiz/internal/ledger"
	"github.com/abhisek/skiquiz/internal/store"
)

// StreakGoal is the length of the login strip shown in the shop.
const StreakGoal = 7

// ClaimOutcome reports how a daily bonus claim was handled.
type ClaimOutcome int

const (
	Claimed ClaimOutcome = iota
	AlreadyClaimed
)

var errClaimed = errors.New("already claimed")

// Daily grants the once-per-day login bonus.
type Daily struct {
	ledger  *ledger.Ledger
	journal Journal
	bonus   int
}

// NewDaily creates the daily bonus service.
func NewDaily(l *ledger.Ledger, bonus int, journal Journal) *Daily {
	return &Daily{ledger: l, journal: journal, bonus: bonus}
}

// Claim grants the bonus unless it was already claimed in this daily window.
func (d *Daily) Claim(ctx context.Context) (ClaimOutcome, error) {
	after, err := d.ledger.Apply(func(p *ledger.Progress) error {
		if p.DailyBonusClaimed {
			return errClaimed
		}
		p.DailyBonusClaimed = true
		p.Tickets += d.bonus
		return nil
	})
	if errors.Is(err, errClaimed) {
		return AlreadyClaimed, nil
	}
	if err != nil {
		return Claimed, fmt.Errorf("claim daily bonus: %w", err)
	}

	record(ctx, d.journal, store.TicketEventData{
		Kind:    store.TicketDailyBonus,
		Delta:   d.bonus,
		Ref:     time.Now().Format(time.DateOnly),
		Balance: after.Tickets,
	})
	return Claimed, nil
}

// Bonus is the tickets granted per claim.
func (d *Daily) Bonus() int {
	return d.bonus
}

// Strip returns the StreakGoal-day login strip; days up to streak are ticked.
func Strip(streak int) []bool {
	days := make([]bool, StreakGoal)
	for i := range days {
		days[i] = i < streak
	}
	return days
}

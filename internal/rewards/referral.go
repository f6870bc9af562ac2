package rewards

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/skiquiz/internal/ledger"
	"github.com/abhisek/skiquiz/internal/store"
)

// MinCodeLen is the shortest code Redeem will look at.
const MinCodeLen = 3

// ShareURL is the link included in the share text.
const ShareURL = "https://skiquiz.app"

// RedeemOutcome reports how a referral code was handled.
type RedeemOutcome int

const (
	Redeemed RedeemOutcome = iota
	RedeemTooShort
	RedeemOwnCode
)

// Referrals handles the player's own code and codes they redeem.
type Referrals struct {
	ledger    *ledger.Ledger
	journal   Journal
	joinBonus int
	bonus     int
}

// NewReferrals creates the referral service. joinBonus is granted per
// redeemed code; bonus is what a friend's signup is advertised to earn.
func NewReferrals(l *ledger.Ledger, joinBonus, bonus int, journal Journal) *Referrals {
	return &Referrals{ledger: l, journal: journal, joinBonus: joinBonus, bonus: bonus}
}

// Redeem applies a friend's code. Codes are not checked for existence or
// reuse; any code other than the player's own grants the join bonus.
func (r *Referrals) Redeem(ctx context.Context, code string) (RedeemOutcome, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) < MinCodeLen {
		return RedeemTooShort, nil
	}

	var own bool
	after, err := r.ledger.Apply(func(p *ledger.Progress) error {
		if code == p.ReferralCode {
			own = true
			return nil
		}
		p.Tickets += r.joinBonus
		return nil
	})
	if err != nil {
		return Redeemed, fmt.Errorf("redeem %s: %w", code, err)
	}
	if own {
		return RedeemOwnCode, nil
	}

	record(ctx, r.journal, store.TicketEventData{
		Kind:    store.TicketReferral,
		Delta:   r.joinBonus,
		Ref:     code,
		Balance: after.Tickets,
	})
	return Redeemed, nil
}

// Message is the player-facing text for a redeem outcome.
func (r *Referrals) Message(o RedeemOutcome) string {
	switch o {
	case RedeemTooShort:
		return fmt.Sprintf("Codes are at least %d characters.", MinCodeLen)
	case RedeemOwnCode:
		return "You can't use your own code!"
	}
	return fmt.Sprintf("Code Redeemed! +%d Ticket added.", r.joinBonus)
}

// Bonus is the ticket reward advertised for each friend who plays.
func (r *Referrals) Bonus() int {
	return r.bonus
}

// ShareText is the invitation copied to the clipboard.
func (r *Referrals) ShareText() string {
	code := r.ledger.Get().ReferralCode
	return fmt.Sprintf("Join me on SkiQuiz! Use my code %s to get bonus tickets! %s", code, ShareURL)
}

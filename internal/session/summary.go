package session

import (
	"github.com/abhisek/skiquiz/internal/badges"
	"github.com/abhisek/skiquiz/internal/ledger"
)

// completion holds the figures a finished quiz applies to the ledger, and
// receives what the update observed.
type completion struct {
	score   int
	correct int
	perfect bool
	reward  int

	prevHigh int
	earned   []badges.ID
}

// mutation folds the quiz into the progress record in one step, so badge
// rules see a consistent record: counters after the update, rank before it.
func (c *completion) mutation() ledger.Mutation {
	return func(p *ledger.Progress) error {
		prevRank := p.Rank
		c.prevHigh = p.HighScore

		p.TotalGamesPlayed++
		p.TotalCorrectAnswers += c.correct
		p.HighScore = max(p.HighScore, c.score)
		p.TotalScore += c.score
		if c.perfect {
			p.PerfectGames++
		}

		c.earned = badges.Evaluate(badges.Facts{
			TotalGamesPlayed:    p.TotalGamesPlayed,
			TotalCorrectAnswers: p.TotalCorrectAnswers,
			StreakDays:          p.StreakDays,
			FinalScore:          c.score,
			PrevRank:            prevRank,
		}, p.Badges)
		for _, id := range c.earned {
			p.Badges.Add(id)
		}

		p.Tickets += c.reward
		return nil
	}
}

// personalBest reports whether score ties or beats the previous high score.
// A zero score never counts.
func personalBest(score, prevHigh int) bool {
	return score > 0 && score >= prevHigh
}

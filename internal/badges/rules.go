package badges

// Facts are the ledger values a badge rule is evaluated against. Counters hold
// post-update values; PrevRank is the rank before the update was applied.
type Facts struct {
	TotalGamesPlayed    int
	TotalCorrectAnswers int
	StreakDays          int
	FinalScore          int
	PrevRank            int
}

// Rule pairs a badge with its unlock predicate.
type Rule struct {
	ID    ID
	Holds func(Facts) bool
}

// Rules returns the unlock rules in evaluation order.
func Rules() []Rule {
	return []Rule{
		{ID: FirstRun, Holds: func(f Facts) bool { return f.TotalGamesPlayed >= 1 }},
		{ID: StreakWeek, Holds: func(f Facts) bool { return f.StreakDays >= StreakWeekDays }},
		{ID: Sharpshooter, Holds: func(f Facts) bool { return f.TotalCorrectAnswers >= SharpshooterAnswers }},
		{ID: HighFlyer, Holds: func(f Facts) bool { return f.FinalScore >= HighFlyerScore }},
		{ID: EliteClub, Holds: func(f Facts) bool { return f.PrevRank > 0 && f.PrevRank <= EliteRankCutoff }},
	}
}

// Evaluate returns the badges newly unlocked by f, in rule order. Badges
// already in unlocked are skipped.
func Evaluate(f Facts, unlocked Set) []ID {
	var earned []ID
	for _, r := range Rules() {
		if unlocked.Has(r.ID) {
			continue
		}
		if r.Holds(f) {
			earned = append(earned, r.ID)
		}
	}
	return earned
}

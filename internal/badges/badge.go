package badges

import "sort"

// ID identifies an unlockable achievement.
type ID string

const (
	FirstRun     ID = "first_run"
	StreakWeek   ID = "streak_week"
	Sharpshooter ID = "sharpshooter"
	HighFlyer    ID = "high_flyer"
	EliteClub    ID = "elite_club"
)

// Unlock thresholds.
const (
	StreakWeekDays      = 7
	SharpshooterAnswers = 100
	HighFlyerScore      = 600
	EliteRankCutoff     = 10
)

// All returns every badge in evaluation order.
func All() []ID {
	return []ID{FirstRun, StreakWeek, Sharpshooter, HighFlyer, EliteClub}
}

// Known reports whether id has an unlock rule.
func Known(id ID) bool {
	for _, b := range All() {
		if b == id {
			return true
		}
	}
	return false
}

// Glyph maps a catalog icon name to a terminal glyph.
func Glyph(iconName string) string {
	switch iconName {
	case "Flag":
		return "🏁"
	case "Calendar":
		return "📅"
	case "Target":
		return "🎯"
	case "Zap":
		return "⚡"
	case "Crown":
		return "👑"
	default:
		return "🏅"
	}
}

// Set is an unordered collection of unlocked badges.
type Set map[ID]struct{}

// NewSet builds a set from ids.
func NewSet(ids ...ID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Set) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Add(id ID) {
	s[id] = struct{}{}
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Sorted returns the ids in evaluation order, unknown ids last.
func (s Set) Sorted() []ID {
	order := make(map[ID]int)
	for i, id := range All() {
		order[id] = i
	}
	ids := make([]ID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		oi, okI := order[ids[i]]
		oj, okJ := order[ids[j]]
		switch {
		case okI && okJ:
			return oi < oj
		case okI != okJ:
			return okI
		default:
			return ids[i] < ids[j]
		}
	})
	return ids
}

// ContainsAll reports whether every id in other is also in s.
func (s Set) ContainsAll(other Set) bool {
	for id := range other {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

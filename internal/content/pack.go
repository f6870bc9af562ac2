// Package content holds the static game catalog: the question pool, shop
// packs, badge catalog, prize tiers and the simulated leaderboard.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/skiquiz/internal/badges"
)

//go:embed default.yaml
var defaultPack []byte

// TimeoutAnswer is the reserved answer submitted when a question's time runs
// out. No option may equal it.
const TimeoutAnswer = "__timeout__"

// ErrInvalidPack is returned when a content pack fails validation.
var ErrInvalidPack = errors.New("invalid content pack")

// Question is an immutable multiple-choice trivia item.
type Question struct {
	ID      string   `yaml:"id" validate:"required"`
	Text    string   `yaml:"text" validate:"required,max=200"`
	Options []string `yaml:"options" validate:"len=3,dive,required,max=60"`
	Answer  string   `yaml:"answer" validate:"required"`
}

// ShopItem is a purchasable ticket pack.
type ShopItem struct {
	ID      string `yaml:"id" validate:"required"`
	Tickets int    `yaml:"tickets" validate:"gt=0"`
	Price   string `yaml:"price" validate:"required"`
	Label   string `yaml:"label,omitempty"`
}

// Badge is the display metadata for an unlockable badge.
type Badge struct {
	ID          badges.ID `yaml:"id" validate:"required"`
	Name        string    `yaml:"name" validate:"required"`
	Description string    `yaml:"description" validate:"required"`
	Icon        string    `yaml:"icon"`
}

// LeaderboardEntry is one row of the simulated ranking.
type LeaderboardEntry struct {
	Rank    int    `yaml:"rank" validate:"gte=1"`
	Name    string `yaml:"name" validate:"required"`
	Score   int    `yaml:"score" validate:"gte=0"`
	Country string `yaml:"country" validate:"len=2"`
	Games   int    `yaml:"games" validate:"gte=0"`
}

// PrizeTier lists the weekly prizes unlocked once enough players join.
type PrizeTier struct {
	MinPlayers int    `yaml:"min_players" validate:"gte=0"`
	Rank1      string `yaml:"rank1" validate:"required"`
	Rank2      string `yaml:"rank2" validate:"required"`
	Rank3      string `yaml:"rank3" validate:"required"`
}

// Prizes holds the tier table and the simulated player count.
type Prizes struct {
	ActivePlayers int         `yaml:"active_players" validate:"gte=0"`
	Tiers         []PrizeTier `yaml:"tiers" validate:"min=1,dive"`
}

// You is the simulated placement of the local player on the leaderboard.
type You struct {
	Rank       int    `yaml:"rank" validate:"gte=0"`
	Percentile string `yaml:"percentile"`
}

// Pack is the full content catalog.
type Pack struct {
	Questions   []Question         `yaml:"questions" validate:"min=1,dive"`
	ShopItems   []ShopItem         `yaml:"shop_items" validate:"min=1,dive"`
	Badges      []Badge            `yaml:"badges" validate:"dive"`
	Leaderboard []LeaderboardEntry `yaml:"leaderboard" validate:"dive"`
	You         You                `yaml:"you"`
	Prizes      Prizes             `yaml:"prizes"`
}

// Default returns the embedded content pack.
func Default() (*Pack, error) {
	return Parse(defaultPack)
}

// DefaultYAML returns the raw embedded pack.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultPack))
	copy(out, defaultPack)
	return out
}

// Parse decodes and validates a complete pack.
func Parse(data []byte) (*Pack, error) {
	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: parse yaml: %v", ErrInvalidPack, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads an override file on top of the embedded pack. Sections absent
// from the file keep their default content. An empty path returns the default.
func Load(path string) (*Pack, error) {
	base, err := Default()
	if err != nil {
		return nil, fmt.Errorf("default pack: %w", err)
	}
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content pack: %w", err)
	}
	var over Pack
	if err := yaml.Unmarshal(data, &over); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidPack, path, err)
	}

	base.overlay(&over)
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return base, nil
}

func (p *Pack) overlay(o *Pack) {
	if len(o.Questions) > 0 {
		p.Questions = o.Questions
	}
	if len(o.ShopItems) > 0 {
		p.ShopItems = o.ShopItems
	}
	if len(o.Badges) > 0 {
		p.Badges = o.Badges
	}
	if len(o.Leaderboard) > 0 {
		p.Leaderboard = o.Leaderboard
	}
	if o.You != (You{}) {
		p.You = o.You
	}
	if len(o.Prizes.Tiers) > 0 {
		p.Prizes.Tiers = o.Prizes.Tiers
	}
	if o.Prizes.ActivePlayers > 0 {
		p.Prizes.ActivePlayers = o.Prizes.ActivePlayers
	}
}

// Marshal encodes the pack as YAML.
func (p *Pack) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// ShopItem looks up a shop pack by id.
func (p *Pack) ShopItem(id string) (ShopItem, bool) {
	for _, it := range p.ShopItems {
		if it.ID == id {
			return it, true
		}
	}
	return ShopItem{}, false
}

// Badge looks up catalog metadata for a badge. Unknown ids get a generic entry.
func (p *Pack) Badge(id badges.ID) Badge {
	for _, b := range p.Badges {
		if b.ID == id {
			return b
		}
	}
	return Badge{ID: id, Name: string(id)}
}

// TierFor returns the highest tier whose threshold is at most players.
func (p *Pack) TierFor(players int) PrizeTier {
	tier := p.Prizes.Tiers[0]
	for _, t := range p.Prizes.Tiers {
		if t.MinPlayers <= players {
			tier = t
		}
	}
	return tier
}

// ActiveTier returns the tier for the simulated player count.
func (p *Pack) ActiveTier() PrizeTier {
	return p.TierFor(p.Prizes.ActivePlayers)
}

// NextTier returns the first tier above the active one, if any.
func (p *Pack) NextTier() (PrizeTier, bool) {
	for _, t := range p.Prizes.Tiers {
		if t.MinPlayers > p.Prizes.ActivePlayers {
			return t, true
		}
	}
	return PrizeTier{}, false
}

package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPackIsValid(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)

	assert.Len(t, p.Questions, 15)
	assert.Len(t, p.ShopItems, 3)
	assert.Len(t, p.Badges, 5)
	assert.Len(t, p.Leaderboard, 10)
	assert.Len(t, p.Prizes.Tiers, 4)
	assert.Equal(t, 42, p.You.Rank)
}

func TestTierFor(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)

	tests := []struct {
		players int
		want    string
	}{
		{0, "Ski Goggles (€100)"},
		{99, "Ski Goggles (€100)"},
		{100, "Helmet (€150)"},
		{250, "Complete Set (€250)"},
		{1000, "Pro Gear (€700)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.TierFor(tt.players).Rank1, "players=%d", tt.players)
	}

	next, ok := p.NextTier()
	require.True(t, ok)
	assert.Equal(t, 200, next.MinPlayers)
}

func TestShopItemAndBadgeLookup(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)

	item, ok := p.ShopItem("pack_medium")
	require.True(t, ok)
	assert.Equal(t, 25, item.Tickets)
	assert.Equal(t, "Popular", item.Label)

	_, ok = p.ShopItem("pack_huge")
	assert.False(t, ok)

	assert.Equal(t, "Rookie", p.Badge("first_run").Name)
	assert.Equal(t, "mystery", p.Badge("mystery").Name)
}

func TestValidateRejectsBrokenQuestions(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Pack)
		message string
	}{
		{
			name:    "answer not in options",
			mutate:  func(p *Pack) { p.Questions[0].Answer = "Nobody" },
			message: "is not one of the options",
		},
		{
			name:    "two options",
			mutate:  func(p *Pack) { p.Questions[1].Options = p.Questions[1].Options[:2] },
			message: "len",
		},
		{
			name:    "duplicate option",
			mutate:  func(p *Pack) { p.Questions[2].Options = []string{"Black", "Black", "Red"} },
			message: "duplicate option",
		},
		{
			name:    "reserved option",
			mutate:  func(p *Pack) { p.Questions[3].Options[0] = TimeoutAnswer },
			message: "reserved value",
		},
		{
			name:    "duplicate id",
			mutate:  func(p *Pack) { p.Questions[4].ID = p.Questions[5].ID },
			message: "duplicate id",
		},
		{
			name:    "unknown badge",
			mutate:  func(p *Pack) { p.Badges[0].ID = "speed_demon" },
			message: "no unlock rule",
		},
		{
			name:    "tiers out of order",
			mutate:  func(p *Pack) { p.Prizes.Tiers[2].MinPlayers = 50 },
			message: "min_players must ascend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Default()
			require.NoError(t, err)
			tt.mutate(p)

			err = p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPack)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoadOverlaysSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pack.yaml")
	data := `questions:
  - id: q1
    text: Which country hosts the Hahnenkamm race?
    options: [Austria, Italy, France]
    answer: Austria
  - id: q2
    text: What do you call a ski lift with open chairs?
    options: [Gondola, Chairlift, T-bar]
    answer: Chairlift
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, p.Questions, 2)
	// Untouched sections come from the embedded pack.
	assert.Len(t, p.ShopItems, 3)
	assert.Len(t, p.Leaderboard, 10)
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	assert.Len(t, p.Questions, 15)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("questions: [oops"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidPack)
}

func TestMarshalRoundTripsThroughParse(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)

	data, err := p.Marshal()
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, p.Questions, again.Questions)
}

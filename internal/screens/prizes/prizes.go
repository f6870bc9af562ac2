package prizes

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skiquiz/internal/content"
	"github.com/abhisek/skiquiz/internal/screen"
	"github.com/abhisek/skiquiz/internal/ui/components"
	"github.com/abhisek/skiquiz/internal/ui/layout"
	"github.com/abhisek/skiquiz/internal/ui/theme"
)

// PrizesScreen lists the weekly prize tiers and how close the next one is.
type PrizesScreen struct {
	pack *content.Pack
}

var _ screen.Screen = (*PrizesScreen)(nil)

func New(pack *content.Pack) *PrizesScreen {
	return &PrizesScreen{pack: pack}
}

func (s *PrizesScreen) Init() tea.Cmd { return nil }

func (s *PrizesScreen) Title() string { return "Weekly Prizes" }

func (s *PrizesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	return s, nil
}

func (s *PrizesScreen) View(width, height int) string {
	cw := min(width-4, 64)
	players := s.pack.Prizes.ActivePlayers
	active := s.pack.ActiveTier()

	sections := []string{
		theme.Title.Render("WEEKLY PRIZES"),
		theme.Subtitle.Render("More skiers unlock bigger prizes"),
		"",
		s.renderProgress(cw),
		"",
	}
	for _, t := range s.pack.Prizes.Tiers {
		sections = append(sections, renderTier(t, t == active, players, cw))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, layout.Center(width, sections...))
}

func (s *PrizesScreen) renderProgress(cw int) string {
	players := s.pack.Prizes.ActivePlayers
	next, ok := s.pack.NextTier()
	if !ok {
		return theme.Correct.Render(fmt.Sprintf("%d skiers: every tier unlocked!", players))
	}
	label := fmt.Sprintf("%d/%d skiers", players, next.MinPlayers)
	pct := 0.0
	if next.MinPlayers > 0 {
		pct = float64(players) / float64(next.MinPlayers)
	}
	bar := components.NewProgressBar(label, pct, true, cw)
	bar.Fill = theme.Accent
	return bar.View() + "\n" +
		theme.Hint.Render(fmt.Sprintf("%d more to unlock a %s", next.MinPlayers-players, next.Rank1))
}

func renderTier(t content.PrizeTier, active bool, players, cw int) string {
	head := theme.Label.Render(fmt.Sprintf("%d+ SKIERS", t.MinPlayers))
	style := theme.Card.Width(cw)
	switch {
	case active:
		head = lipgloss.NewStyle().Bold(true).Foreground(theme.Accent).Render(fmt.Sprintf("%d+ SKIERS • ACTIVE", t.MinPlayers))
		style = style.BorderForeground(theme.Accent)
	case t.MinPlayers > players:
		head += "  " + theme.Hint.Render("locked")
	}
	lines := []string{
		head,
		"🥇 " + t.Rank1,
		"🥈 " + t.Rank2,
		"🥉 " + t.Rank3,
	}
	return style.Render(strings.Join(lines, "\n"))
}

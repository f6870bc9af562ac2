package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skiquiz/internal/content"
	"github.com/abhisek/skiquiz/internal/ledger"
	"github.com/abhisek/skiquiz/internal/screen"
	"github.com/abhisek/skiquiz/internal/screens/quiz"
	"github.com/abhisek/skiquiz/internal/ui/components"
	"github.com/abhisek/skiquiz/internal/ui/layout"
	"github.com/abhisek/skiquiz/internal/ui/theme"
)

// Season is the label under the title.
const Season = "Season 24/25 • Week 12"

// Progress reads the player's record.
type Progress interface {
	Get() ledger.Progress
}

// HomeScreen is the lobby: the play button, headline prize and stats.
type HomeScreen struct {
	progress   Progress
	starter    quiz.Starter
	pack       *content.Pack
	replayCost int
	menu       components.Menu
	status     screen.StatusMsg
}

var _ screen.Screen = (*HomeScreen)(nil)

func New(progress Progress, starter quiz.Starter, pack *content.Pack, replayCost int) *HomeScreen {
	h := &HomeScreen{progress: progress, starter: starter, pack: pack, replayCost: replayCost}
	h.menu = components.NewMenu(h.items(progress.Get()))
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Title() string {
	return "Lobby"
}

// items rebuilds the menu; the play entry depends on today's free run.
func (h *HomeScreen) items(p ledger.Progress) []components.MenuItem {
	nav := func(k screen.Kind) func() tea.Cmd {
		return func() tea.Cmd { return screen.Navigate(k) }
	}
	play := components.MenuItem{
		Label:  "PLAY FREE",
		Hint:   "1x daily",
		Action: func() tea.Cmd { return quiz.Start(h.starter, true) },
	}
	if p.DailyFreePlayUsed {
		play = components.MenuItem{
			Label:  "PLAY NOW",
			Hint:   fmt.Sprintf("%d ticket", h.replayCost),
			Action: func() tea.Cmd { return quiz.Start(h.starter, false) },
		}
	}
	return []components.MenuItem{
		play,
		{Label: "LEADERBOARD", Action: nav(screen.Leaderboard)},
		{Label: "PRIZES", Action: nav(screen.Prizes)},
		{Label: "SHOP", Hint: "tickets & daily bonus", Action: nav(screen.Shop)},
		{Label: "PROFILE", Action: nav(screen.Profile)},
		{Label: "BADGES", Action: nav(screen.Badges)},
		{Label: "HISTORY", Action: nav(screen.History)},
		{Label: "SETTINGS", Action: nav(screen.Settings)},
		{Label: "QUIT", Action: func() tea.Cmd { return tea.Quit }},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StatusMsg:
		h.status = msg
		return h, nil
	case tea.KeyPressMsg:
		h.status = screen.StatusMsg{}
	}
	h.menu.Items = h.items(h.progress.Get())
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	p := h.progress.Get()
	h.menu.Items = h.items(p)
	cw := min(width-4, 60)
	compact := layout.IsCompactHeight(height + 6)

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render("⛷  SKI QUIZ  ⛷")
	sections := []string{title, theme.Subtitle.Render(Season)}

	if !compact {
		sections = append(sections, "", h.renderHero(cw))
	}
	sections = append(sections, "", renderStats(p, cw), "", h.menu.View())
	if h.status.Text != "" {
		sections = append(sections, "", h.status.Render())
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, layout.Center(width, sections...))
}

func (h *HomeScreen) renderHero(cw int) string {
	prize := h.pack.ActiveTier().Rank1
	lines := []string{
		theme.Label.Render("THIS WEEK'S TOP PRIZE"),
		lipgloss.NewStyle().Bold(true).Foreground(theme.Accent).Render("🏆 Win a " + prize),
	}
	if len(h.pack.Leaderboard) > 0 {
		lead := h.pack.Leaderboard[0]
		lines = append(lines, theme.Hint.Render(fmt.Sprintf("Current 1st Place: %s • %d pts", lead.Name, lead.Score)))
	}
	return theme.HeroCard.Width(cw).Render(strings.Join(lines, "\n"))
}

func renderStats(p ledger.Progress, cw int) string {
	cell := func(label, value string) string {
		return lipgloss.JoinVertical(lipgloss.Center,
			theme.Label.Render(label),
			lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Render(value))
	}
	half := max(cw/2-2, 10)
	best := theme.Card.Width(half).Align(lipgloss.Center).Render(cell("BEST SCORE", fmt.Sprintf("%d", p.HighScore)))
	streak := theme.Card.Width(half).Align(lipgloss.Center).Render(cell("STREAK", fmt.Sprintf("%d days", p.StreakDays)))
	return lipgloss.JoinHorizontal(lipgloss.Top, best, " ", streak)
}

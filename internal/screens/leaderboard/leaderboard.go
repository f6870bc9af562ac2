// Package leaderboard renders the weekly standings. The standings are the
// content pack's mock table; nothing is computed from real players.
package leaderboard

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skiquiz/internal/content"
	"github.com/abhisek/skiquiz/internal/ledger"
	"github.com/abhisek/skiquiz/internal/screen"
	"github.com/abhisek/skiquiz/internal/ui/layout"
	"github.com/abhisek/skiquiz/internal/ui/theme"
)

type Progress interface {
	Get() ledger.Progress
}

type LeaderboardScreen struct {
	pack     *content.Pack
	progress Progress
	offset   int
}

var _ screen.Screen = (*LeaderboardScreen)(nil)
var _ screen.KeyHintProvider = (*LeaderboardScreen)(nil)

func New(pack *content.Pack, progress Progress) *LeaderboardScreen {
	return &LeaderboardScreen{pack: pack, progress: progress}
}

func (s *LeaderboardScreen) Init() tea.Cmd { return nil }

func (s *LeaderboardScreen) Title() string { return "Leaderboard" }

func (s *LeaderboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "P", Description: "Prizes"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LeaderboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyPressMsg); ok {
		switch k.String() {
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			if s.offset < len(s.rest())-1 {
				s.offset++
			}
		case "p":
			return s, screen.Navigate(screen.Prizes)
		}
	}
	return s, nil
}

// rest is everyone below the podium.
func (s *LeaderboardScreen) rest() []content.LeaderboardEntry {
	if len(s.pack.Leaderboard) <= 3 {
		return nil
	}
	return s.pack.Leaderboard[3:]
}

func (s *LeaderboardScreen) View(width, height int) string {
	cw := min(width-4, 64)
	sections := []string{
		theme.Title.Render("WEEKLY RANKING"),
		theme.Subtitle.Render(fmt.Sprintf("%d active skiers", s.pack.Prizes.ActivePlayers)),
		"",
		s.renderPodium(cw),
		"",
		s.renderYou(cw),
	}

	rows := s.rest()
	used := 16
	visible := max(height-used, 1)
	if s.offset > 0 || len(rows) > visible {
		end := min(s.offset+visible, len(rows))
		rows = rows[min(s.offset, len(rows)):end]
	}
	if len(rows) > 0 {
		sections = append(sections, "", renderRows(rows, cw))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, layout.Center(width, sections...))
}

func (s *LeaderboardScreen) renderPodium(cw int) string {
	board := s.pack.Leaderboard
	if len(board) == 0 {
		return theme.Hint.Render("No results yet this week.")
	}
	col := max(cw/3-1, 14)
	step := func(i int, medal string, c color.Color, lift int) string {
		if i >= len(board) {
			return lipgloss.NewStyle().Width(col).Render("")
		}
		e := board[i]
		body := lipgloss.JoinVertical(lipgloss.Center,
			medal,
			lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Render(e.Name),
			lipgloss.NewStyle().Foreground(c).Bold(true).Render(fmt.Sprintf("%d", e.Score)),
		)
		card := theme.Card.BorderForeground(c).Width(col).Align(lipgloss.Center).Render(body)
		return strings.Repeat("\n", lift) + card
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom,
		step(1, "🥈", theme.Silver, 1),
		step(0, "🥇", theme.Gold, 0),
		step(2, "🥉", theme.Bronze, 2),
	)
}

func (s *LeaderboardScreen) renderYou(cw int) string {
	p := s.progress.Get()
	you := s.pack.You
	rank := "unranked"
	if you.Rank > 0 {
		rank = fmt.Sprintf("#%d", you.Rank)
	}
	left := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render(rank) + "  " +
		lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Render(p.Username+" (You)")
	right := theme.Status.Render(fmt.Sprintf("%d", p.HighScore))
	if you.Percentile != "" {
		right = theme.Hint.Render(you.Percentile) + "  " + right
	}
	gap := max(cw-6-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return theme.HeroCard.Width(cw).Render(left + strings.Repeat(" ", gap) + right)
}

func renderRows(rows []content.LeaderboardEntry, cw int) string {
	lines := make([]string, len(rows))
	for i, e := range rows {
		left := theme.Label.Render(fmt.Sprintf("%3d", e.Rank)) + "  " +
			theme.Body.Render(e.Name) + "  " +
			theme.Hint.Render(fmt.Sprintf("%s • %d games", e.Country, e.Games))
		right := lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Render(fmt.Sprintf("%d", e.Score))
		gap := max(cw-2-lipgloss.Width(left)-lipgloss.Width(right), 1)
		lines[i] = left + strings.Repeat(" ", gap) + right
	}
	return strings.Join(lines, "\n")
}

package result

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skiquiz/internal/badges"
	"github.com/abhisek/skiquiz/internal/content"
	"github.com/abhisek/skiquiz/internal/screen"
	"github.com/abhisek/skiquiz/internal/screens/quiz"
	"github.com/abhisek/skiquiz/internal/session"
	"github.com/abhisek/skiquiz/internal/ui/components"
	"github.com/abhisek/skiquiz/internal/ui/layout"
	"github.com/abhisek/skiquiz/internal/ui/theme"
)

// ResultScreen shows how the last run went.
type ResultScreen struct {
	res    session.Result
	ok     bool
	err    error
	pack   *content.Pack
	menu   components.Menu
	status screen.StatusMsg
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)

// Source is the part of the controller the result screen reads.
type Source interface {
	quiz.Starter
	Result() (session.Result, bool)
	Err() error
}

func New(src Source, pack *content.Pack, replayCost int) *ResultScreen {
	res, ok := src.Result()
	s := &ResultScreen{res: res, ok: ok, err: src.Err(), pack: pack}
	s.menu = components.NewMenu([]components.MenuItem{
		{Label: "PLAY AGAIN", Hint: fmt.Sprintf("%d ticket", replayCost), Action: func() tea.Cmd { return quiz.Start(src, false) }},
		{Label: "RANKING", Action: func() tea.Cmd { return screen.Navigate(screen.Leaderboard) }},
		{Label: "HOME", Action: func() tea.Cmd { return screen.Navigate(screen.Home) }},
	})
	return s
}

func (s *ResultScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultScreen) Title() string {
	return "Finish Line"
}

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if st, ok := msg.(screen.StatusMsg); ok {
		s.status = st
		return s, nil
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *ResultScreen) View(width, height int) string {
	if !s.ok {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("No finished run yet."))
	}
	r := s.res
	cw := min(width-4, 60)

	sections := []string{
		lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render("🏁 FINISHED!"),
	}
	if r.PersonalBest {
		sections = append(sections, lipgloss.NewStyle().Bold(true).Foreground(theme.Accent).Render("★ NEW PERSONAL BEST ★"))
	}
	if r.Perfect {
		sections = append(sections, theme.Correct.Render("Perfect run!"))
	}
	sections = append(sections,
		"",
		lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Render(fmt.Sprintf("%d", r.Score)),
		theme.Label.Render("POINTS"),
		"",
		s.renderStats(cw),
	)

	if len(r.NewBadges) > 0 {
		sections = append(sections, "", s.renderBadges(cw))
	}
	if s.err != nil {
		sections = append(sections, "", theme.Incorrect.Render("Progress not saved: "+s.err.Error()))
	}
	sections = append(sections, "", s.menu.View())
	if s.status.Text != "" {
		sections = append(sections, "", s.status.Render())
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, layout.Center(width, sections...))
}

func (s *ResultScreen) renderStats(cw int) string {
	r := s.res
	cell := func(label, value string) string {
		return theme.Card.Width(max(cw/3-1, 12)).Align(lipgloss.Center).Render(
			theme.Label.Render(label) + "\n" +
				lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Render(value))
	}
	rank := "-"
	if s.pack.You.Rank > 0 {
		rank = fmt.Sprintf("#%d", s.pack.You.Rank)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		cell("CORRECT", fmt.Sprintf("%d/%d", r.Correct, r.Total)),
		cell("RANK", rank),
		cell("TICKETS", fmt.Sprintf("+%d", r.TicketsEarned)),
	)
}

func (s *ResultScreen) renderBadges(cw int) string {
	lines := []string{theme.Label.Render("BADGES UNLOCKED")}
	for _, id := range s.res.NewBadges {
		b := s.pack.Badge(id)
		lines = append(lines, fmt.Sprintf("%s %s  %s", badges.Glyph(b.Icon),
			lipgloss.NewStyle().Bold(true).Foreground(theme.Accent).Render(b.Name),
			theme.Hint.Render(b.Description)))
	}
	return theme.Card.Width(cw).Render(strings.Join(lines, "\n"))
}

package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/skiquiz/internal/badges"
	"github.com/abhisek/skiquiz/internal/content"
	"github.com/abhisek/skiquiz/internal/screen"
	"github.com/abhisek/skiquiz/internal/store"
	"github.com/abhisek/skiquiz/internal/ui/layout"
	"github.com/abhisek/skiquiz/internal/ui/theme"
)

// Limit is how many past runs the screen loads.
const Limit = 50

// Journal is the read side of the event journal.
type Journal interface {
	RecentGames(ctx context.Context, opts store.QueryOpts) ([]store.GameEventRecord, error)
	BadgeUnlocks(ctx context.Context, opts store.QueryOpts) ([]store.BadgeEventRecord, error)
}

type historyLoadedMsg struct {
	Games  []store.GameEventRecord
	Badges map[string][]store.BadgeEventRecord // sessionID → unlocks
	Err    error
}

// HistoryScreen lists journaled runs, newest first.
type HistoryScreen struct {
	journal  Journal
	pack     *content.Pack
	games    []store.GameEventRecord
	badges   map[string][]store.BadgeEventRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a HistoryScreen. A nil journal means journaling is off.
func New(journal Journal, pack *content.Pack) *HistoryScreen {
	return &HistoryScreen{
		journal:  journal,
		pack:     pack,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	if s.journal == nil {
		s.loaded = true
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()

		games, err := s.journal.RecentGames(ctx, store.QueryOpts{Limit: Limit})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}

		bySession := make(map[string][]store.BadgeEventRecord)
		unlocks, err := s.journal.BadgeUnlocks(ctx, store.QueryOpts{})
		if err != nil {
			return historyLoadedMsg{Games: games, Badges: bySession}
		}
		for _, u := range unlocks {
			bySession[u.SessionID] = append(bySession[u.SessionID], u)
		}
		return historyLoadedMsg{Games: games, Badges: bySession}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.games = msg.Games
			s.badges = msg.Badges
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.games)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	dim := lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(theme.TextDim)
	switch {
	case s.journal == nil:
		return dim.Render("\n\n  History is off. Run without --no-journal to keep a record.")
	case s.errMsg != "":
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	case !s.loaded:
		return dim.Render("\n\n  Loading history...")
	case len(s.games) == 0:
		return dim.Italic(true).Render("\n\n  No runs yet. Hit the slopes!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, g := range s.games {
		dateStr := g.Timestamp.Format("Jan 02 15:04")
		secs := g.DurationMs / 1000

		tags := ""
		if g.Free {
			tags += "  free"
		}
		if g.Perfect {
			tags += "  perfect"
		}
		if g.PersonalBest {
			tags += "  best!"
		}
		if g.Badges > 0 {
			tags += fmt.Sprintf("  %d badge", g.Badges)
			if g.Badges > 1 {
				tags += "s"
			}
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %4d pts  %d/%d correct  %d:%02d%s",
			prefix, dateStr, g.Score, g.Correct, g.Total, secs/60, secs%60, tags)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			unlocks := s.badges[g.SessionID]
			if len(unlocks) == 0 {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
						Render("    No badges this run")))
				b.WriteString("\n")
			} else {
				for _, u := range unlocks {
					meta := s.pack.Badge(badges.ID(u.BadgeID))
					badgeLine := fmt.Sprintf("    %s %s: %s", badges.Glyph(meta.Icon), meta.Name, meta.Description)
					b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
						lipgloss.NewStyle().Foreground(theme.Accent).Render(badgeLine)))
					b.WriteString("\n")
				}
			}
		}
	}

	return b.String()
}

// Package badgecase shows every badge in the catalog and which ones the
// player has unlocked.
package badgecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skiquiz/internal/badges"
	"github.com/abhisek/skiquiz/internal/content"
	"github.com/abhisek/skiquiz/internal/ledger"
	"github.com/abhisek/skiquiz/internal/screen"
	"github.com/abhisek/skiquiz/internal/store"
	"github.com/abhisek/skiquiz/internal/ui/layout"
	"github.com/abhisek/skiquiz/internal/ui/theme"
)

type Progress interface {
	Get() ledger.Progress
}

// Journal supplies unlock dates. It is optional.
type Journal interface {
	BadgeUnlocks(ctx context.Context, opts store.QueryOpts) ([]store.BadgeEventRecord, error)
}

type filter int

const (
	filterAll filter = iota
	filterUnlocked
	filterLocked
)

var filterNames = []string{"All", "Unlocked", "Locked"}

type unlocksLoadedMsg struct {
	At map[badges.ID]time.Time
}

type BadgeCaseScreen struct {
	pack     *content.Pack
	progress Progress
	journal  Journal
	filter   filter
	unlocked map[badges.ID]time.Time
}

var _ screen.Screen = (*BadgeCaseScreen)(nil)
var _ screen.KeyHintProvider = (*BadgeCaseScreen)(nil)

func New(pack *content.Pack, progress Progress, journal Journal) *BadgeCaseScreen {
	return &BadgeCaseScreen{pack: pack, progress: progress, journal: journal}
}

func (s *BadgeCaseScreen) Init() tea.Cmd {
	if s.journal == nil {
		return nil
	}
	return func() tea.Msg {
		recs, err := s.journal.BadgeUnlocks(context.Background(), store.QueryOpts{})
		at := make(map[badges.ID]time.Time)
		if err != nil {
			return unlocksLoadedMsg{At: at}
		}
		for _, r := range recs {
			id := badges.ID(r.BadgeID)
			if first, ok := at[id]; !ok || r.Timestamp.Before(first) {
				at[id] = r.Timestamp
			}
		}
		return unlocksLoadedMsg{At: at}
	}
}

func (s *BadgeCaseScreen) Title() string {
	return "Badges"
}

func (s *BadgeCaseScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Filter"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *BadgeCaseScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case unlocksLoadedMsg:
		s.unlocked = msg.At
	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			s.filter = (s.filter + 1) % filter(len(filterNames))
		case "shift+tab":
			s.filter = (s.filter + filter(len(filterNames)) - 1) % filter(len(filterNames))
		}
	}
	return s, nil
}

func (s *BadgeCaseScreen) View(width, height int) string {
	have := s.progress.Get().Badges
	cw := min(width-4, 60)

	tabs := make([]string, len(filterNames))
	for i, name := range filterNames {
		if filter(i) == s.filter {
			tabs[i] = theme.Selected.Render("[" + name + "]")
		} else {
			tabs[i] = theme.Hint.Render(" " + name + " ")
		}
	}

	sections := []string{
		theme.Title.Render("TROPHY CASE"),
		theme.Subtitle.Render(fmt.Sprintf("%d of %d unlocked", countHeld(s.pack.Badges, have), len(s.pack.Badges))),
		"",
		strings.Join(tabs, " "),
		"",
	}

	shown := 0
	for _, b := range s.pack.Badges {
		held := have.Has(b.ID)
		if (s.filter == filterUnlocked && !held) || (s.filter == filterLocked && held) {
			continue
		}
		sections = append(sections, s.renderBadge(b, held, cw))
		shown++
	}
	if shown == 0 {
		sections = append(sections, theme.Hint.Render("Nothing here yet."))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, layout.Center(width, sections...))
}

func (s *BadgeCaseScreen) renderBadge(b content.Badge, held bool, cw int) string {
	style := theme.Card.Width(cw)
	name := lipgloss.NewStyle().Bold(true).Foreground(theme.Accent).Render(badges.Glyph(b.Icon) + " " + b.Name)
	note := theme.Hint.Render("locked")
	if held {
		style = style.BorderForeground(theme.Accent)
		note = theme.Correct.Render("unlocked")
		if at, ok := s.unlocked[b.ID]; ok {
			note = theme.Correct.Render("unlocked " + at.Format("Jan 02"))
		}
	} else {
		name = theme.Hint.Render("🔒 " + b.Name)
	}
	return style.Render(name + "  " + note + "\n" + theme.Body.Render(b.Description))
}

func countHeld(catalog []content.Badge, have badges.Set) int {
	n := 0
	for _, b := range catalog {
		if have.Has(b.ID) {
			n++
		}
	}
	return n
}

package settings

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skiquiz/internal/ledger"
	"github.com/abhisek/skiquiz/internal/screen"
	"github.com/abhisek/skiquiz/internal/ui/layout"
	"github.com/abhisek/skiquiz/internal/ui/theme"
)

type Ledger interface {
	Get() ledger.Progress
	Apply(m ledger.Mutation) (ledger.Progress, error)
}

type row struct {
	key   ledger.SettingKey
	label string
	on    func(ledger.Settings) bool
}

var rows = []row{
	{ledger.SettingSound, "Sound effects", func(s ledger.Settings) bool { return s.SoundEnabled }},
	{ledger.SettingHaptic, "Haptic feedback", func(s ledger.Settings) bool { return s.HapticEnabled }},
	{ledger.SettingNotifications, "Daily reminders", func(s ledger.Settings) bool { return s.NotificationsEnabled }},
}

type SettingsScreen struct {
	ledger Ledger
	cursor int
	status screen.StatusMsg
}

var _ screen.Screen = (*SettingsScreen)(nil)
var _ screen.KeyHintProvider = (*SettingsScreen)(nil)

func New(l Ledger) *SettingsScreen {
	return &SettingsScreen{ledger: l}
}

func (s *SettingsScreen) Init() tea.Cmd { return nil }

func (s *SettingsScreen) Title() string { return "Settings" }

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Space", Description: "Toggle"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	k, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}
	switch k.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(rows)-1 {
			s.cursor++
		}
	case "space", " ", "enter":
		if _, err := s.ledger.Apply(ledger.ToggleSetting(rows[s.cursor].key)); err != nil {
			s.status = screen.StatusMsg{Text: err.Error(), Error: true}
		} else {
			s.status = screen.StatusMsg{}
		}
	}
	return s, nil
}

func (s *SettingsScreen) View(width, height int) string {
	settings := s.ledger.Get().Settings
	cw := min(width-4, 50)

	lines := make([]string, len(rows))
	for i, r := range rows {
		state := theme.Hint.Render("OFF")
		if r.on(settings) {
			state = theme.Correct.Render("ON ")
		}
		label := theme.Unselected.Render("  " + r.label)
		if i == s.cursor {
			label = theme.Selected.Render("▸ " + r.label)
		}
		gap := max(cw-6-lipgloss.Width(label)-lipgloss.Width(state), 1)
		lines[i] = label + strings.Repeat(" ", gap) + state
	}

	sections := []string{
		theme.Title.Render("SETTINGS"),
		"",
		theme.Card.Width(cw).Render(strings.Join(lines, "\n")),
	}
	if s.status.Text != "" {
		sections = append(sections, "", s.status.Render())
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, layout.Center(width, sections...))
}

package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skiquiz/internal/ui/layout"
	"github.com/abhisek/skiquiz/internal/ui/theme"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Leaver is implemented by screens that must release something when they
// are removed from the stack.
type Leaver interface {
	Leave()
}

// InputCapturer is implemented by screens that want every key, Esc
// included, while CapturingInput reports true.
type InputCapturer interface {
	CapturingInput() bool
}

// Kind names each navigable screen.
type Kind int

const (
	Home Kind = iota
	Quiz
	Result
	Leaderboard
	Shop
	Profile
	Settings
	Prizes
	History
	Badges
)

var kindNames = [...]string{
	Home:        "home",
	Quiz:        "quiz",
	Result:      "result",
	Leaderboard: "leaderboard",
	Shop:        "shop",
	Profile:     "profile",
	Settings:    "settings",
	Prizes:      "prizes",
	History:     "history",
	Badges:      "badges",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// NavigateMsg asks the app to show the screen of the given kind. A non-empty
// Status is delivered to the new screen as a StatusMsg.
type NavigateMsg struct {
	To     Kind
	Status string
}

// Navigate returns a command emitting NavigateMsg{To: k}.
func Navigate(k Kind) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{To: k} }
}

// StatusMsg is a transient one-line message shown by the active screen.
type StatusMsg struct {
	Text  string
	Error bool
}

// Render draws the status line, or nothing when empty.
func (m StatusMsg) Render() string {
	if m.Text == "" {
		return ""
	}
	if m.Error {
		return theme.Incorrect.Render(m.Text)
	}
	return theme.Status.Render(m.Text)
}

// Package welcome is the splash shown before the lobby.
package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skiquiz/internal/screen"
	"github.com/abhisek/skiquiz/internal/ui/theme"
)

const frameRate = 100 * time.Millisecond

// Frame counts at which each part of the splash appears. The counter stops
// at lastFrame so an idle splash does not grow without bound.
const (
	snowFrom   = 5
	bannerFrom = 15
	lastFrame  = 45
)

const peaks = `        /\
       /  \    /\
      / /\ \  /  \
     / /  \ \/ /\ \
    /_/    \__/  \_\`

var snowfall = [...]string{"·  *   ·    *", " *   ·   *  · ", "·   *  ·   *  "}

type frameMsg struct{}

// WelcomeScreen waits for any key, then hands over to the lobby.
type WelcomeScreen struct {
	frame int
	ticks int
	done  bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

func New() *WelcomeScreen {
	return &WelcomeScreen{}
}

func (w *WelcomeScreen) Title() string { return "" }

func (w *WelcomeScreen) Init() tea.Cmd { return nextFrame() }

func nextFrame() tea.Cmd {
	return tea.Tick(frameRate, func(time.Time) tea.Msg { return frameMsg{} })
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case frameMsg:
		if w.done {
			return w, nil
		}
		w.ticks++
		w.frame = min(w.frame+1, lastFrame)
		return w, nextFrame()
	case tea.KeyPressMsg:
		if w.done {
			return w, nil
		}
		w.done = true
		return w, screen.Navigate(screen.Home)
	}
	return w, nil
}

func (w *WelcomeScreen) View(width, height int) string {
	var lines []string
	if w.frame >= snowFrom {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Text).Render(snowfall[w.ticks%len(snowfall)]))
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(theme.Primary).Render(peaks))

	if w.frame >= bannerFrom {
		lines = append(lines,
			"",
			RenderBanner(width),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(tagline),
		)
	}

	lines = append(lines, "", theme.Hint.Italic(true).Render("press any key to continue"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(lines, "\n"))
}

const tagline = "Fresh powder, fast answers!"

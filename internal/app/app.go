// Package app is the root Bubble Tea model: it owns the screen stack and
// turns navigation intents into screens.
package app

import (
	"fmt"
	"log"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skiquiz/internal/content"
	"github.com/abhisek/skiquiz/internal/ledger"
	"github.com/abhisek/skiquiz/internal/rewards"
	"github.com/abhisek/skiquiz/internal/router"
	"github.com/abhisek/skiquiz/internal/screen"
	"github.com/abhisek/skiquiz/internal/screens/badgecase"
	"github.com/abhisek/skiquiz/internal/screens/history"
	"github.com/abhisek/skiquiz/internal/screens/home"
	"github.com/abhisek/skiquiz/internal/screens/leaderboard"
	"github.com/abhisek/skiquiz/internal/screens/prizes"
	"github.com/abhisek/skiquiz/internal/screens/profile"
	"github.com/abhisek/skiquiz/internal/screens/quiz"
	"github.com/abhisek/skiquiz/internal/screens/result"
	"github.com/abhisek/skiquiz/internal/screens/settings"
	"github.com/abhisek/skiquiz/internal/screens/shop"
	"github.com/abhisek/skiquiz/internal/screens/welcome"
	"github.com/abhisek/skiquiz/internal/session"
	"github.com/abhisek/skiquiz/internal/store"
	"github.com/abhisek/skiquiz/internal/ui/layout"
)

// Options carries the services the screens run on.
type Options struct {
	Ledger     *ledger.Ledger
	Controller *session.Controller
	Shop       *rewards.Shop
	Daily      *rewards.Daily
	Referrals  *rewards.Referrals
	Pack       *content.Pack

	// Journal backs the history and badge screens. Nil hides history.
	Journal store.EventRepo

	// SkipSplash opens on the lobby instead of the welcome animation.
	SkipSplash bool
	// AutoStart begins a quiz as soon as the program starts.
	AutoStart bool
	// Free pays for the AutoStart quiz with the daily free run.
	Free bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	opts   Options
	router *router.Router
	width  int
	height int
}

func newAppModel(opts Options) AppModel {
	m := AppModel{opts: opts}
	var first screen.Screen
	if opts.SkipSplash || opts.AutoStart {
		first = m.screenFor(screen.Home)
	} else {
		first = welcome.New()
	}
	m.router = router.New(first)
	return m
}

// screenFor builds a fresh screen for k.
func (m AppModel) screenFor(k screen.Kind) screen.Screen {
	o := m.opts
	rules := o.Controller.Rules()
	switch k {
	case screen.Quiz:
		return quiz.New(o.Controller)
	case screen.Result:
		return result.New(o.Controller, o.Pack, rules.ReplayCost)
	case screen.Leaderboard:
		return leaderboard.New(o.Pack, o.Ledger)
	case screen.Shop:
		return shop.New(o.Shop, o.Daily, o.Ledger)
	case screen.Profile:
		return profile.New(o.Ledger, o.Referrals, rules.QuestionsPerGame)
	case screen.Settings:
		return settings.New(o.Ledger)
	case screen.Prizes:
		return prizes.New(o.Pack)
	case screen.History:
		return history.New(o.Journal, o.Pack)
	case screen.Badges:
		return badgecase.New(o.Pack, o.Ledger, o.Journal)
	default:
		return home.New(o.Ledger, o.Controller, o.Pack, rules.ReplayCost)
	}
}

func (m AppModel) Init() tea.Cmd {
	cmd := m.router.Active().Init()
	if m.opts.AutoStart {
		return tea.Batch(cmd, quiz.Start(m.opts.Controller, m.opts.Free))
	}
	return cmd
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.NavigateMsg:
		return m, m.navigate(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.Close()
			return m, tea.Quit
		case "esc":
			if c, ok := m.router.Active().(screen.InputCapturer); ok && c.CapturingInput() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// navigate shows the screen for msg.To. Home clears the stack; anything
// else stacks once on top of the lobby.
func (m AppModel) navigate(msg screen.NavigateMsg) tea.Cmd {
	log.Printf("navigate: %s (depth %d)", msg.To, m.router.Depth())
	if _, showing := m.router.Active().(*quiz.QuizScreen); showing && msg.To == screen.Quiz {
		// A second screen for the same run would end it on replace.
		return nil
	}
	next := m.screenFor(msg.To)
	var cmd tea.Cmd
	switch {
	case msg.To == screen.Home:
		cmd = m.router.Reset(next)
	case m.router.Depth() > 1:
		cmd = m.router.Replace(next)
	case isLobby(m.router.Active()):
		cmd = m.router.Push(next)
	default:
		// The splash is still showing; put the lobby underneath.
		m.router.Reset(m.screenFor(screen.Home))
		cmd = m.router.Push(next)
	}
	if msg.Status != "" {
		status := screen.StatusMsg{Text: msg.Status}
		cmd = tea.Batch(cmd, func() tea.Msg { return status })
	}
	return cmd
}

func isLobby(s screen.Screen) bool {
	_, ok := s.(*home.HomeScreen)
	return ok
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the full frame for the current window size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	p := m.opts.Ledger.Get()
	header := layout.RenderHeader(title, p.Tickets, p.StreakDays, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if hp, ok := active.(screen.KeyHintProvider); ok {
		if hints := hp.KeyHints(); len(hints) > 0 {
			return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
		}
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

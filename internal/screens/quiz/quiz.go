// Package quiz is the in-game screen: one question at a time against the
// countdown.
package quiz

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skiquiz/internal/screen"
	"github.com/abhisek/skiquiz/internal/session"
	"github.com/abhisek/skiquiz/internal/ui/components"
	"github.com/abhisek/skiquiz/internal/ui/layout"
	"github.com/abhisek/skiquiz/internal/ui/theme"
)

// Controller is what the quiz screen needs from the session controller.
type Controller interface {
	Snapshot() session.Quiz
	State() session.State
	SubmitAnswer(selected string) session.AnswerOutcome
	AbandonSession(id string)
	Rules() session.Rules
}

// frameMsg redraws the countdown. The controller owns the real timer; the
// screen only polls it.
type frameMsg time.Time

var optionKeys = []string{"a", "b", "c", "d"}

// QuizScreen renders the running quiz.
type QuizScreen struct {
	ctrl    Controller
	session string
	snap    session.Quiz
	cursor  int
	confirm bool
	done    bool
}

var (
	_ screen.Screen          = (*QuizScreen)(nil)
	_ screen.KeyHintProvider = (*QuizScreen)(nil)
	_ screen.Leaver          = (*QuizScreen)(nil)
	_ screen.InputCapturer   = (*QuizScreen)(nil)
)

func New(ctrl Controller) *QuizScreen {
	return &QuizScreen{ctrl: ctrl}
}

func (s *QuizScreen) Init() tea.Cmd {
	s.snap = s.ctrl.Snapshot()
	s.session = s.snap.SessionID
	return s.frame()
}

func (s *QuizScreen) Title() string {
	return "Run"
}

func (s *QuizScreen) CapturingInput() bool {
	return true
}

// Leave drops the quiz this screen was showing if the player walks away
// mid-run.
func (s *QuizScreen) Leave() {
	s.ctrl.AbandonSession(s.session)
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.confirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "Abandon run"},
			{Key: "N", Description: "Keep skiing"},
		}
	}
	return []layout.KeyHint{
		{Key: "A-C", Description: "Answer"},
		{Key: "↑↓ Enter", Description: "Pick"},
		{Key: "Esc", Description: "Quit run"},
	}
}

func (s *QuizScreen) frame() tea.Cmd {
	interval := s.ctrl.Rules().TickInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if s.done {
			return s, nil
		}
		s.refresh()
		if s.ctrl.State() == session.StateFinished {
			return s, s.finish()
		}
		return s, s.frame()

	case tea.KeyPressMsg:
		return s, s.handleKey(msg.String())
	}
	return s, nil
}

func (s *QuizScreen) handleKey(key string) tea.Cmd {
	if s.done {
		return nil
	}
	if s.confirm {
		switch key {
		case "y", "Y":
			s.done = true
			return screen.Navigate(screen.Home)
		case "n", "N", "esc":
			s.confirm = false
		}
		return nil
	}

	switch key {
	case "esc", "q":
		s.confirm = true
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.snap.Question.Options)-1 {
			s.cursor++
		}
	case "enter":
		return s.submit(s.cursor)
	case "1", "2", "3", "4":
		return s.submit(int(key[0] - '1'))
	default:
		for i, k := range optionKeys {
			if key == k {
				return s.submit(i)
			}
		}
	}
	return nil
}

func (s *QuizScreen) submit(i int) tea.Cmd {
	opts := s.snap.Question.Options
	if i < 0 || i >= len(opts) {
		return nil
	}
	out := s.ctrl.SubmitAnswer(opts[i])
	s.cursor = 0
	s.refresh()
	if out == session.Finished || s.ctrl.State() == session.StateFinished {
		return s.finish()
	}
	return nil
}

func (s *QuizScreen) finish() tea.Cmd {
	if s.done {
		return nil
	}
	s.done = true
	return screen.Navigate(screen.Result)
}

func (s *QuizScreen) refresh() {
	prev := s.snap.Index
	s.snap = s.ctrl.Snapshot()
	if s.snap.Index != prev {
		s.cursor = 0
	}
}

func (s *QuizScreen) View(width, height int) string {
	q := s.snap
	if q.Total == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("Waiting at the lift..."))
	}
	cw := min(width-4, 72)

	info := theme.Label.Render(fmt.Sprintf("QUESTION %d/%d", q.Index+1, q.Total)) +
		"   " + theme.Status.Render(fmt.Sprintf("%d pts", q.Score))
	if q.Free {
		info += "   " + theme.Hint.Render("free run")
	}

	bar := components.NewProgressBar("", q.Fraction, false, cw-8)
	bar.Fill = timerColor(q.Fraction)
	timer := bar.View() + lipgloss.NewStyle().Foreground(bar.Fill).Bold(true).
		Render(fmt.Sprintf(" %4.1fs", q.Remaining.Seconds()))

	question := theme.HeroCard.Width(cw).Render(
		lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Render(q.Question.Text))

	var opts strings.Builder
	for i, o := range q.Question.Options {
		key := strings.ToUpper(optionKeys[min(i, len(optionKeys)-1)])
		style := theme.Card.Width(cw)
		label := theme.Unselected.Render(fmt.Sprintf("%s  %s", key, o))
		if i == s.cursor {
			style = style.BorderForeground(theme.Primary)
			label = theme.Selected.Render(fmt.Sprintf("%s  %s", key, o))
		}
		opts.WriteString(style.Render(label))
		if i < len(q.Question.Options)-1 {
			opts.WriteString("\n")
		}
	}

	blocks := []string{info, "", timer, "", question, "", opts.String(), "", trail(q)}
	if s.confirm {
		blocks = append(blocks, "", theme.Incorrect.Render("Abandon this run? Your ticket is not refunded. (y/n)"))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, layout.Center(width, blocks...))
}

// trail draws one gate per question: passed, missed or still ahead.
func trail(q session.Quiz) string {
	gates := make([]string, q.Total)
	for i := range gates {
		switch {
		case i < len(q.Answers) && q.Answers[i]:
			gates[i] = theme.Correct.Render("●")
		case i < len(q.Answers):
			gates[i] = theme.Incorrect.Render("●")
		case i == q.Index:
			gates[i] = theme.Selected.Render("◉")
		default:
			gates[i] = theme.Hint.Render("○")
		}
	}
	out := strings.Join(gates, " ")
	if n := len(q.Answers); n > 0 {
		if q.Answers[n-1] {
			out += "   " + theme.Correct.Render("Clean gate!")
		} else {
			out += "   " + theme.Incorrect.Render("Missed it!")
		}
	}
	return out
}

func timerColor(fraction float64) color.Color {
	switch {
	case fraction > 0.5:
		return theme.Success
	case fraction > 0.25:
		return theme.Accent
	default:
		return theme.Error
	}
}

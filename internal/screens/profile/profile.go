package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skiquiz/internal/ledger"
	"github.com/abhisek/skiquiz/internal/rewards"
	"github.com/abhisek/skiquiz/internal/screen"
	"github.com/abhisek/skiquiz/internal/ui/components"
	"github.com/abhisek/skiquiz/internal/ui/layout"
	"github.com/abhisek/skiquiz/internal/ui/theme"
)

// Ledger is the player's record.
type Ledger interface {
	Get() ledger.Progress
	Apply(m ledger.Mutation) (ledger.Progress, error)
}

// Referrer redeems friends' codes and builds the share text.
type Referrer interface {
	Redeem(ctx context.Context, code string) (rewards.RedeemOutcome, error)
	Message(o rewards.RedeemOutcome) string
	Bonus() int
	ShareText() string
}

type mode int

const (
	modeView mode = iota
	modeRedeem
	modeRename
)

type redeemDoneMsg struct {
	outcome rewards.RedeemOutcome
	err     error
}

// ProfileScreen shows lifetime stats and the referral tools.
type ProfileScreen struct {
	ledger   Ledger
	referrer Referrer
	perGame  int
	mode     mode
	input    components.TextInput
	status   screen.StatusMsg
}

var (
	_ screen.Screen          = (*ProfileScreen)(nil)
	_ screen.KeyHintProvider = (*ProfileScreen)(nil)
	_ screen.InputCapturer   = (*ProfileScreen)(nil)
)

// New creates the profile screen. perGame is the number of questions in a
// quiz, used for the accuracy figure.
func New(l Ledger, referrer Referrer, perGame int) *ProfileScreen {
	return &ProfileScreen{ledger: l, referrer: referrer, perGame: perGame}
}

func (s *ProfileScreen) Init() tea.Cmd { return nil }

func (s *ProfileScreen) Title() string { return "Profile" }

func (s *ProfileScreen) CapturingInput() bool {
	return s.mode != modeView
}

func (s *ProfileScreen) KeyHints() []layout.KeyHint {
	if s.mode != modeView {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Confirm"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "C", Description: "Copy invite"},
		{Key: "R", Description: "Redeem code"},
		{Key: "U", Description: "Change name"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ProfileScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StatusMsg:
		s.status = msg
		return s, nil
	case redeemDoneMsg:
		s.handleRedeem(msg)
		return s, nil
	case tea.KeyPressMsg:
		if s.mode == modeView {
			return s, s.handleKey(msg.String())
		}
		switch msg.String() {
		case "esc":
			s.mode = modeView
			return s, nil
		case "enter":
			return s, s.submit()
		}
	}
	if s.mode != modeView {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ProfileScreen) handleKey(key string) tea.Cmd {
	switch key {
	case "c":
		s.status = screen.StatusMsg{Text: "Invite copied! Share it with a friend."}
		return tea.SetClipboard(s.referrer.ShareText())
	case "r":
		s.mode = modeRedeem
		s.input = components.NewTextInput("FRIEND'S CODE", true, 12)
		s.status = screen.StatusMsg{}
		return s.input.Init()
	case "u":
		s.mode = modeRename
		s.input = components.NewTextInput(s.ledger.Get().Username, false, ledger.MaxUsernameLen)
		s.status = screen.StatusMsg{}
		return s.input.Init()
	}
	return nil
}

func (s *ProfileScreen) submit() tea.Cmd {
	value := s.input.Value()
	switch s.mode {
	case modeRedeem:
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			out, err := s.referrer.Redeem(ctx, value)
			return redeemDoneMsg{outcome: out, err: err}
		}
	case modeRename:
		_, err := s.ledger.Apply(ledger.SetUsername(value))
		if errors.Is(err, ledger.ErrInvalidUsername) {
			s.input.Submit(false)
			s.status = screen.StatusMsg{Text: fmt.Sprintf("Names are 1-%d characters.", ledger.MaxUsernameLen), Error: true}
			return nil
		}
		if err != nil {
			s.status = screen.StatusMsg{Text: err.Error(), Error: true}
			return nil
		}
		s.mode = modeView
		s.status = screen.StatusMsg{Text: "Name updated."}
	}
	return nil
}

func (s *ProfileScreen) handleRedeem(msg redeemDoneMsg) {
	if msg.err != nil {
		s.status = screen.StatusMsg{Text: "Redeem failed: " + msg.err.Error(), Error: true}
		return
	}
	text := s.referrer.Message(msg.outcome)
	if msg.outcome != rewards.Redeemed {
		s.input.Submit(false)
		s.status = screen.StatusMsg{Text: text, Error: true}
		return
	}
	s.mode = modeView
	s.status = screen.StatusMsg{Text: text}
}

func (s *ProfileScreen) View(width, height int) string {
	p := s.ledger.Get()
	cw := min(width-4, 60)

	sections := []string{
		lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render("⛷ " + p.Username),
		theme.Subtitle.Render(fmt.Sprintf("%d badges • %d day streak", len(p.Badges), p.StreakDays)),
		"",
		s.renderStats(p, cw),
		"",
		s.renderReferral(p, cw),
	}
	switch s.mode {
	case modeRedeem:
		sections = append(sections, "", theme.Label.Render("REDEEM A CODE"), s.input.View())
	case modeRename:
		sections = append(sections, "", theme.Label.Render("NEW NAME"), s.input.View())
	}
	if s.status.Text != "" {
		sections = append(sections, "", s.status.Render())
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, layout.Center(width, sections...))
}

func (s *ProfileScreen) renderStats(p ledger.Progress, cw int) string {
	col := max(cw/3-1, 14)
	cell := func(label, value string) string {
		return theme.Card.Width(col).Align(lipgloss.Center).Render(
			theme.Label.Render(label) + "\n" +
				lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Render(value))
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top,
		cell("GAMES", fmt.Sprintf("%d", p.TotalGamesPlayed)),
		cell("BEST", fmt.Sprintf("%d", p.HighScore)),
		cell("AVERAGE", fmt.Sprintf("%d", p.AverageScore())),
	)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top,
		cell("ACCURACY", fmt.Sprintf("%d%%", p.Accuracy(s.perGame))),
		cell("PERFECT", fmt.Sprintf("%d", p.PerfectGames)),
		cell("TOTAL", fmt.Sprintf("%d", p.TotalScore)),
	)
	return row1 + "\n" + row2
}

func (s *ProfileScreen) renderReferral(p ledger.Progress, cw int) string {
	lines := []string{
		theme.Label.Render("INVITE FRIENDS"),
		"Your code: " + lipgloss.NewStyle().Bold(true).Foreground(theme.Accent).Render(p.ReferralCode),
		theme.Hint.Render(fmt.Sprintf("Each friend who plays earns you %d tickets", s.referrer.Bonus())),
		fmt.Sprintf("Friends joined: %d", p.ReferralsCount),
	}
	return theme.HeroCard.Width(cw).Render(strings.Join(lines, "\n"))
}

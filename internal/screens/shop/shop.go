package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skiquiz/internal/content"
	"github.com/abhisek/skiquiz/internal/ledger"
	"github.com/abhisek/skiquiz/internal/rewards"
	"github.com/abhisek/skiquiz/internal/screen"
	"github.com/abhisek/skiquiz/internal/ui/layout"
	"github.com/abhisek/skiquiz/internal/ui/theme"
)

const requestTimeout = 10 * time.Second

// Seller sells ticket packs.
type Seller interface {
	Items() []content.ShopItem
	Purchase(ctx context.Context, itemID string) (rewards.Receipt, error)
}

// Claimer grants the daily login bonus.
type Claimer interface {
	Claim(ctx context.Context) (rewards.ClaimOutcome, error)
	Bonus() int
}

type Progress interface {
	Get() ledger.Progress
}

type purchaseDoneMsg struct {
	receipt rewards.Receipt
	err     error
}

type claimDoneMsg struct {
	outcome rewards.ClaimOutcome
	err     error
}

// ShopScreen sells tickets and hands out the daily bonus.
type ShopScreen struct {
	seller   Seller
	daily    Claimer
	progress Progress
	items    []content.ShopItem
	cursor   int
	busy     bool
	status   screen.StatusMsg
}

var _ screen.Screen = (*ShopScreen)(nil)
var _ screen.KeyHintProvider = (*ShopScreen)(nil)

func New(seller Seller, daily Claimer, progress Progress) *ShopScreen {
	return &ShopScreen{seller: seller, daily: daily, progress: progress, items: seller.Items()}
}

func (s *ShopScreen) Init() tea.Cmd { return nil }

func (s *ShopScreen) Title() string { return "Ticket Shop" }

func (s *ShopScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "Enter", Description: "Buy"},
		{Key: "C", Description: "Claim daily bonus"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ShopScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StatusMsg:
		s.status = msg
	case purchaseDoneMsg:
		s.busy = false
		switch {
		case errors.Is(msg.err, rewards.ErrPaymentDeclined):
			s.status = screen.StatusMsg{Text: "Payment declined. Nothing was charged.", Error: true}
		case msg.err != nil:
			s.status = screen.StatusMsg{Text: "Purchase failed: " + msg.err.Error(), Error: true}
		default:
			s.status = screen.StatusMsg{Text: msg.receipt.Message()}
		}
	case claimDoneMsg:
		s.busy = false
		switch {
		case msg.err != nil:
			s.status = screen.StatusMsg{Text: "Claim failed: " + msg.err.Error(), Error: true}
		case msg.outcome == rewards.AlreadyClaimed:
			s.status = screen.StatusMsg{Text: "Already claimed today. See you tomorrow!", Error: true}
		default:
			s.status = screen.StatusMsg{Text: fmt.Sprintf("Daily bonus claimed! +%d ticket", s.daily.Bonus())}
		}
	case tea.KeyPressMsg:
		return s, s.handleKey(msg.String())
	}
	return s, nil
}

func (s *ShopScreen) handleKey(key string) tea.Cmd {
	switch key {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.items)-1 {
			s.cursor++
		}
	case "enter":
		if s.busy || len(s.items) == 0 {
			return nil
		}
		s.busy = true
		s.status = screen.StatusMsg{Text: "Processing..."}
		return s.purchase(s.items[s.cursor].ID)
	case "c":
		if s.busy {
			return nil
		}
		s.busy = true
		return s.claim()
	}
	return nil
}

func (s *ShopScreen) purchase(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		r, err := s.seller.Purchase(ctx, id)
		return purchaseDoneMsg{receipt: r, err: err}
	}
}

func (s *ShopScreen) claim() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		out, err := s.daily.Claim(ctx)
		return claimDoneMsg{outcome: out, err: err}
	}
}

func (s *ShopScreen) View(width, height int) string {
	p := s.progress.Get()
	cw := min(width-4, 60)

	sections := []string{
		theme.Title.Render("TICKET SHOP"),
		theme.Subtitle.Render(fmt.Sprintf("Balance: 🎟 %d", p.Tickets)),
		"",
	}
	for i, it := range s.items {
		sections = append(sections, s.renderItem(it, i == s.cursor, cw))
	}
	sections = append(sections, "", renderDaily(p, s.daily.Bonus(), cw))
	if s.status.Text != "" {
		sections = append(sections, "", s.status.Render())
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, layout.Center(width, sections...))
}

func (s *ShopScreen) renderItem(it content.ShopItem, selected bool, cw int) string {
	name := fmt.Sprintf("🎟 %d Tickets", it.Tickets)
	if it.Label != "" {
		name += "  " + lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(strings.ToUpper(it.Label))
	}
	price := lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Render(it.Price)

	style := theme.Card.Width(cw)
	left := theme.Unselected.Render(name)
	if selected {
		style = style.BorderForeground(theme.Primary)
		left = theme.Selected.Render("▸ ") + left
	}
	gap := max(cw-6-lipgloss.Width(left)-lipgloss.Width(price), 1)
	return style.Render(left + strings.Repeat(" ", gap) + price)
}

func renderDaily(p ledger.Progress, bonus, cw int) string {
	days := rewards.Strip(p.StreakDays)
	cells := make([]string, len(days))
	for i, done := range days {
		label := fmt.Sprintf("D%d", i+1)
		if done {
			cells[i] = theme.Correct.Render("✓" + label)
		} else {
			cells[i] = theme.Hint.Render("·" + label)
		}
	}
	claim := theme.Status.Render(fmt.Sprintf("Press C to claim +%d ticket", bonus))
	if p.DailyBonusClaimed {
		claim = theme.Hint.Render("Today's bonus claimed")
	}
	return theme.Card.Width(cw).Render(
		theme.Label.Render("DAILY BONUS") + "\n" + strings.Join(cells, " ") + "\n" + claim)
}

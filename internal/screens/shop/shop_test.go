package shop

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skiquiz/internal/content"
	"github.com/abhisek/skiquiz/internal/ledger"
	"github.com/abhisek/skiquiz/internal/rewards"
	"github.com/abhisek/skiquiz/internal/screen"
)

type declined struct{}

func (declined) Charge(context.Context, content.ShopItem) error { return rewards.ErrPaymentDeclined }

func items() []content.ShopItem {
	return []content.ShopItem{
		{ID: "small", Tickets: 5, Price: "€0.99"},
		{ID: "big", Tickets: 15, Price: "€1.99", Label: "Best Value"},
	}
}

func newShop(t *testing.T, gw rewards.PaymentGateway) (*ShopScreen, *ledger.Ledger) {
	t.Helper()
	l := ledger.New(ledger.Progress{Tickets: 2, StreakDays: 3, ReferralCode: "SKI-AAAA1"})
	return New(rewards.NewShop(l, items(), gw, nil), rewards.NewDaily(l, 1, nil), l), l
}

// run executes cmd and feeds its message back into the screen.
func run(t *testing.T, s *ShopScreen, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	s.Update(cmd())
}

func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	}
	return tea.KeyPressMsg{Code: []rune(s)[0], Text: s}
}

func TestShop_Purchase(t *testing.T) {
	s, l := newShop(t, nil)

	s.Update(key("down"))
	_, cmd := s.Update(key("enter"))
	if !s.busy {
		t.Fatal("purchase should mark the screen busy")
	}
	if _, again := s.Update(key("enter")); again != nil {
		t.Fatal("a second purchase must wait for the first")
	}
	run(t, s, cmd)

	if got := l.Get().Tickets; got != 17 {
		t.Fatalf("tickets = %d, want 17", got)
	}
	if !strings.Contains(s.View(80, 40), "Purchased 15 tickets!") {
		t.Error("receipt message missing")
	}
}

func TestShop_Declined(t *testing.T) {
	s, l := newShop(t, declined{})
	_, cmd := s.Update(key("enter"))
	run(t, s, cmd)

	if got := l.Get().Tickets; got != 2 {
		t.Fatalf("tickets = %d, want unchanged 2", got)
	}
	if !s.status.Error || !strings.Contains(s.status.Text, "declined") {
		t.Fatalf("status = %+v", s.status)
	}
}

func TestShop_DailyBonusOncePerDay(t *testing.T) {
	s, l := newShop(t, nil)

	_, cmd := s.Update(key("c"))
	run(t, s, cmd)
	if got := l.Get().Tickets; got != 3 {
		t.Fatalf("tickets = %d, want 3", got)
	}
	if !strings.Contains(s.View(80, 40), "Today's bonus claimed") {
		t.Error("strip should show the claim")
	}

	_, cmd = s.Update(key("c"))
	run(t, s, cmd)
	if got := l.Get().Tickets; got != 3 {
		t.Fatalf("tickets = %d after second claim, want 3", got)
	}
	if !strings.Contains(s.status.Text, "Already claimed") {
		t.Fatalf("status = %q", s.status.Text)
	}
}

func TestShop_ViewAndStatus(t *testing.T) {
	s, _ := newShop(t, nil)
	s.Update(screen.StatusMsg{Text: "Out of tickets!"})

	view := s.View(80, 40)
	for _, want := range []string{"Balance: 🎟 2", "15 Tickets", "BEST VALUE", "€1.99", "✓D3", "·D4", "Out of tickets!"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

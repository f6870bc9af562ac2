package rewards

import (
	"context"
	"fmt"

	"github.com/abhisek/skiquiz/internal/content"
	"github.com/abhisek/skiquiz/internal/ledger"
	"github.com/abhisek/skiquiz/internal/store"
)

// PaymentGateway charges the player for a shop item.
type PaymentGateway interface {
	Charge(ctx context.Context, item content.ShopItem) error
}

// SimulatedGateway approves every charge.
type SimulatedGateway struct{}

func (SimulatedGateway) Charge(ctx context.Context, _ content.ShopItem) error {
	return ctx.Err()
}

// Receipt describes a completed purchase.
type Receipt struct {
	Item    content.ShopItem
	Balance int
}

// Message is the confirmation shown to the player.
func (r Receipt) Message() string {
	return fmt.Sprintf("Purchased %d tickets!", r.Item.Tickets)
}

// Shop sells ticket packs.
type Shop struct {
	ledger  *ledger.Ledger
	items   []content.ShopItem
	gateway PaymentGateway
	journal Journal
}

// NewShop creates a shop over the catalog. A nil gateway uses SimulatedGateway.
func NewShop(l *ledger.Ledger, items []content.ShopItem, gateway PaymentGateway, journal Journal) *Shop {
	if gateway == nil {
		gateway = SimulatedGateway{}
	}
	return &Shop{ledger: l, items: items, gateway: gateway, journal: journal}
}

// Items returns the catalog in display order.
func (s *Shop) Items() []content.ShopItem {
	return append([]content.ShopItem(nil), s.items...)
}

// Purchase charges for itemID and credits its tickets.
func (s *Shop) Purchase(ctx context.Context, itemID string) (Receipt, error) {
	item, ok := s.find(itemID)
	if !ok {
		return Receipt{}, fmt.Errorf("%w: %q", ErrUnknownItem, itemID)
	}

	if err := s.gateway.Charge(ctx, item); err != nil {
		return Receipt{}, fmt.Errorf("charge %s: %w", item.ID, err)
	}

	after, err := s.ledger.Apply(func(p *ledger.Progress) error {
		p.Tickets += item.Tickets
		return nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("credit tickets: %w", err)
	}

	record(ctx, s.journal, store.TicketEventData{
		Kind:    store.TicketPurchase,
		Delta:   item.Tickets,
		Ref:     item.ID,
		Balance: after.Tickets,
	})
	return Receipt{Item: item, Balance: after.Tickets}, nil
}

func (s *Shop) find(id string) (content.ShopItem, bool) {
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return content.ShopItem{}, false
}

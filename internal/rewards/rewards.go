// Package rewards grants tickets outside the quiz: shop purchases, referral
// codes and the daily login bonus.
package rewards

import (
	"context"
	"errors"

	"github.com/abhisek/skiquiz/internal/store"
)

var (
	// ErrUnknownItem is returned for a shop item id not in the catalog.
	ErrUnknownItem = errors.New("unknown shop item")

	// ErrPaymentDeclined is returned when the payment gateway refuses a charge.
	ErrPaymentDeclined = errors.New("payment declined")
)

// Journal records ticket movements.
type Journal interface {
	AppendTicketEvent(ctx context.Context, data store.TicketEventData) error
}

func record(ctx context.Context, j Journal, data store.TicketEventData) {
	if j == nil {
		return
	}
	_ = j.AppendTicketEvent(ctx, data)
}

package booking

import (
	"context"
	"time"
)

// Checker answers whether a slot is already claimed by an active booking.
// It only reads, and must be called with the same transaction that performs
// the subsequent insert so the check and the write see the same state.
type Checker struct{}

// Taken reports whether an active booking exists for exactly (tableID, at).
func (Checker) Taken(ctx context.Context, tx Tx, tableID uint64, at time.Time) (bool, error) {
	return tx.SlotTaken(ctx, tableID, canonical(at))
}

package booking

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/restaurant-table-booking/internal/model"
)

// Storage contract errors. Store implementations must return (or wrap)
// these so the engine can classify outcomes without knowing the driver.
var (
	// ErrRecordNotFound reports a missing row.
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateSlot reports that the storage-level uniqueness constraint
	// on (table, reservation time) among active bookings rejected a write.
	ErrDuplicateSlot = errors.New("duplicate active booking for slot")
)

// Store is the Reservation Ledger as seen by the engine. Read methods run
// outside any write transaction; all mutation goes through Begin.
type Store interface {
	Begin(ctx context.Context) (Tx, error)

	ListRestaurants(ctx context.Context) ([]model.Restaurant, error)
	GetRestaurant(ctx context.Context, id uint64) (model.Restaurant, error)
	// ListTableStatuses derives each table's status from the active
	// bookings that reference it.
	ListTableStatuses(ctx context.Context, restaurantID uint64) ([]model.TableStatus, error)
	ListUserBookings(ctx context.Context, userID uint64) ([]model.UserBooking, error)
	ListRestaurantBookings(ctx context.Context, restaurantID uint64) ([]model.RestaurantBooking, error)
}

// Tx is one storage transaction. Implementations must give LockTable and
// LockActiveBooking exclusive row-lock semantics until Commit or Rollback.
// Rollback after Commit must be a harmless no-op.
type Tx interface {
	LockTable(ctx context.Context, tableID uint64) (model.Table, error)
	SlotTaken(ctx context.Context, tableID uint64, at time.Time) (bool, error)
	InsertBooking(ctx context.Context, b *model.Booking) error
	SetTableStatus(ctx context.Context, tableID uint64, status string) error

	LockActiveBooking(ctx context.Context, bookingID uint64) (model.Booking, error)
	CancelBooking(ctx context.Context, bookingID uint64) error
	TableHasActiveBookings(ctx context.Context, tableID uint64) (bool, error)

	Commit() error
	Rollback() error
}

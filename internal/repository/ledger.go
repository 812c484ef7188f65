package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/restaurant-table-booking/internal/booking"
	"github.com/iliyamo/restaurant-table-booking/internal/model"
)

// Ledger adapts the MySQL repositories to booking.Store.
type Ledger struct {
	db          *sql.DB
	restaurants *RestaurantRepo
	tables      *TableRepo
	bookings    *BookingRepo
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{
		db:          db,
		restaurants: NewRestaurantRepo(db),
		tables:      NewTableRepo(db),
		bookings:    NewBookingRepo(db),
	}
}

var _ booking.Store = (*Ledger)(nil)

// Begin opens a READ COMMITTED transaction. Row locks taken with
// SELECT ... FOR UPDATE serialize writers on the same table; the unique
// slot index rejects whatever slips past them.
func (l *Ledger) Begin(ctx context.Context) (booking.Tx, error) {
	tx, err := l.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	return &ledgerTx{tx: tx, l: l}, nil
}

func (l *Ledger) ListRestaurants(ctx context.Context) ([]model.Restaurant, error) {
	return l.restaurants.ListAll(ctx)
}

func (l *Ledger) GetRestaurant(ctx context.Context, id uint64) (model.Restaurant, error) {
	return l.restaurants.GetByID(ctx, id)
}

func (l *Ledger) ListTableStatuses(ctx context.Context, restaurantID uint64) ([]model.TableStatus, error) {
	return l.tables.ListByRestaurant(ctx, restaurantID)
}

func (l *Ledger) ListUserBookings(ctx context.Context, userID uint64) ([]model.UserBooking, error) {
	return l.bookings.ListByUser(ctx, userID)
}

func (l *Ledger) ListRestaurantBookings(ctx context.Context, restaurantID uint64) ([]model.RestaurantBooking, error) {
	return l.bookings.ListByRestaurant(ctx, restaurantID)
}

type ledgerTx struct {
	tx *sql.Tx
	l  *Ledger
}

func (t *ledgerTx) LockTable(ctx context.Context, tableID uint64) (model.Table, error) {
	return t.l.tables.LockTx(ctx, t.tx, tableID)
}

func (t *ledgerTx) SlotTaken(ctx context.Context, tableID uint64, at time.Time) (bool, error) {
	return t.l.bookings.SlotTakenTx(ctx, t.tx, tableID, at)
}

func (t *ledgerTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	return t.l.bookings.CreateTx(ctx, t.tx, b)
}

func (t *ledgerTx) SetTableStatus(ctx context.Context, tableID uint64, status string) error {
	return t.l.tables.SetStatusTx(ctx, t.tx, tableID, status)
}

func (t *ledgerTx) LockActiveBooking(ctx context.Context, bookingID uint64) (model.Booking, error) {
	return t.l.bookings.LockActiveTx(ctx, t.tx, bookingID)
}

func (t *ledgerTx) CancelBooking(ctx context.Context, bookingID uint64) error {
	return t.l.bookings.CancelTx(ctx, t.tx, bookingID)
}

func (t *ledgerTx) TableHasActiveBookings(ctx context.Context, tableID uint64) (bool, error) {
	return t.l.bookings.HasActiveForTableTx(ctx, t.tx, tableID)
}

func (t *ledgerTx) Commit() error {
	err := t.tx.Commit()
	if isDuplicateKey(err) {
		return booking.ErrDuplicateSlot
	}
	return err
}

// Rollback is safe to call after Commit.
func (t *ledgerTx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/restaurant-table-booking/internal/booking"
	"github.com/iliyamo/restaurant-table-booking/internal/model"
)

// BookingRepo provides access to the bookings table. Mutating methods
// take the caller's transaction; the *Tx suffix marks them. Reservation
// times are stored and compared in UTC.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// SlotTakenTx reports whether a confirmed booking exists for exactly
// (tableID, at).
func (r *BookingRepo) SlotTakenTx(ctx context.Context, tx *sql.Tx, tableID uint64, at time.Time) (bool, error) {
	const q = `SELECT EXISTS (
                   SELECT 1 FROM bookings
                   WHERE table_id = ? AND reservation_time = ? AND status = 'confirmed'
               )`
	var taken bool
	if err := tx.QueryRowContext(ctx, q, tableID, at.UTC()).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

// CreateTx inserts a booking and fills in its generated id. A unique
// violation on the active slot index is returned as
// booking.ErrDuplicateSlot.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, restaurant_id, table_id, reservation_time, status, created_at)
               VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.UserID, b.RestaurantID, b.TableID, b.ReservationTime.UTC(), b.Status, b.CreatedAt.UTC())
	if err != nil {
		if isDuplicateKey(err) {
			return booking.ErrDuplicateSlot
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// LockActiveTx reads a confirmed booking with an exclusive row lock.
// Missing and already cancelled bookings both yield
// booking.ErrRecordNotFound.
func (r *BookingRepo) LockActiveTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Booking, error) {
	const q = `SELECT id, user_id, restaurant_id, table_id, reservation_time, status, created_at
               FROM bookings WHERE id = ? AND status = 'confirmed' FOR UPDATE`
	var b model.Booking
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.UserID, &b.RestaurantID, &b.TableID, &b.ReservationTime, &b.Status, &b.CreatedAt,
	)
	if err != nil {
		return model.Booking{}, notFound(err)
	}
	return b, nil
}

// CancelTx marks a booking cancelled, which also releases its slot in the
// unique index.
func (r *BookingRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = 'cancelled' WHERE id = ? AND status = 'confirmed'`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrRecordNotFound
	}
	return nil
}

// HasActiveForTableTx reports whether any confirmed booking still
// references the table.
func (r *BookingRepo) HasActiveForTableTx(ctx context.Context, tx *sql.Tx, tableID uint64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM bookings WHERE table_id = ? AND status = 'confirmed')`
	var active bool
	if err := tx.QueryRowContext(ctx, q, tableID).Scan(&active); err != nil {
		return false, err
	}
	return active, nil
}

// ListByUser returns a user's bookings joined with restaurant name and
// table number, newest reservation first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.UserBooking, error) {
	const q = `SELECT b.id, b.restaurant_id, r.name, b.table_id, t.table_number, b.reservation_time, b.status
               FROM bookings b
               JOIN restaurants r ON r.id = b.restaurant_id
               JOIN restaurant_tables t ON t.id = b.table_id
               WHERE b.user_id = ?
               ORDER BY b.reservation_time DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.UserBooking{}
	for rows.Next() {
		var ub model.UserBooking
		if err := rows.Scan(&ub.BookingID, &ub.RestaurantID, &ub.RestaurantName, &ub.TableID,
			&ub.TableNumber, &ub.ReservationTime, &ub.Status); err != nil {
			return nil, err
		}
		list = append(list, ub)
	}
	return list, rows.Err()
}

// ListByRestaurant returns a restaurant's bookings joined with customer
// name and table number, newest reservation first.
func (r *BookingRepo) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]model.RestaurantBooking, error) {
	const q = `SELECT b.id, b.user_id, u.name, b.table_id, t.table_number, b.reservation_time, b.status
               FROM bookings b
               JOIN users u ON u.id = b.user_id
               JOIN restaurant_tables t ON t.id = b.table_id
               WHERE b.restaurant_id = ?
               ORDER BY b.reservation_time DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.RestaurantBooking{}
	for rows.Next() {
		var rb model.RestaurantBooking
		if err := rows.Scan(&rb.BookingID, &rb.UserID, &rb.CustomerName, &rb.TableID,
			&rb.TableNumber, &rb.ReservationTime, &rb.Status); err != nil {
			return nil, err
		}
		list = append(list, rb)
	}
	return list, rows.Err()
}

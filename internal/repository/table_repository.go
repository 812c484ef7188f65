package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-table-booking/internal/model"
)

// TableRepo accesses restaurant_tables. The status column is a cache kept
// in step with bookings by the transactions that change them.
type TableRepo struct {
	db *sql.DB
}

func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

// LockTx reads the table row with an exclusive lock held until the
// transaction ends. Concurrent booking attempts for the same table queue
// here.
func (r *TableRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Table, error) {
	const q = `SELECT id, restaurant_id, table_number, seats, status
               FROM restaurant_tables WHERE id = ? FOR UPDATE`
	var t model.Table
	err := tx.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.RestaurantID, &t.Number, &t.Seats, &t.Status)
	if err != nil {
		return model.Table{}, notFound(err)
	}
	return t, nil
}

// SetStatusTx overwrites the cached status of a table.
func (r *TableRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	_, err := tx.ExecContext(ctx, `UPDATE restaurant_tables SET status = ? WHERE id = ?`, status, id)
	return err
}

// ListByRestaurant returns the restaurant's tables ordered by number, with
// status derived from active bookings rather than the cached column.
func (r *TableRepo) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]model.TableStatus, error) {
	const q = `SELECT t.id, t.table_number, t.seats,
                      CASE WHEN EXISTS (
                          SELECT 1 FROM bookings b
                          WHERE b.table_id = t.id AND b.status = 'confirmed'
                      ) THEN 'booked' ELSE 'available' END AS status
               FROM restaurant_tables t
               WHERE t.restaurant_id = ?
               ORDER BY t.table_number`
	rows, err := r.db.QueryContext(ctx, q, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.TableStatus{}
	for rows.Next() {
		var ts model.TableStatus
		if err := rows.Scan(&ts.TableID, &ts.Number, &ts.Seats, &ts.Status); err != nil {
			return nil, err
		}
		list = append(list, ts)
	}
	return list, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-table-booking/internal/booking"
	"github.com/iliyamo/restaurant-table-booking/internal/model"
)

var at = time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)

const (
	sqlLockTable   = "FROM restaurant_tables WHERE id = ? FOR UPDATE"
	sqlSlotTaken   = "WHERE table_id = ? AND reservation_time = ? AND status = 'confirmed'"
	sqlInsert      = "INSERT INTO bookings"
	sqlSetStatus   = "UPDATE restaurant_tables SET status = ? WHERE id = ?"
	sqlLockBooking = "FROM bookings WHERE id = ? AND status = 'confirmed' FOR UPDATE"
	sqlCancel      = "UPDATE bookings SET status = 'cancelled'"
	sqlHasActive   = "SELECT EXISTS (SELECT 1 FROM bookings WHERE table_id = ? AND status = 'confirmed')"
)

func q(s string) string { return regexp.QuoteMeta(s) }

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func tableRow(id, restaurantID uint64, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "restaurant_id", "table_number", "seats", "status"}).
		AddRow(id, restaurantID, 1, 4, status)
}

func TestServiceCreateOverLedger(t *testing.T) {
	db, mock := newMock(t)
	svc := booking.NewService(NewLedger(db), booking.Options{})

	mock.ExpectBegin()
	mock.ExpectQuery(q(sqlLockTable)).WithArgs(11).WillReturnRows(tableRow(11, 1, model.TableAvailable))
	mock.ExpectQuery(q(sqlSlotTaken)).WithArgs(11, at).
		WillReturnRows(sqlmock.NewRows([]string{"taken"}).AddRow(false))
	mock.ExpectExec(q(sqlInsert)).
		WithArgs(5, 1, 11, at, model.BookingConfirmed, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(q(sqlSetStatus)).WithArgs(model.TableBooked, 11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := svc.CreateBooking(context.Background(), booking.CreateBookingRequest{
		UserID: 5, RestaurantID: 1, TableID: 11, Time: "2025-06-01T19:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(42), b.ID)
	assert.Equal(t, at, b.ReservationTime)
}

func TestServiceCreateOverLedgerSlotTaken(t *testing.T) {
	db, mock := newMock(t)
	svc := booking.NewService(NewLedger(db), booking.Options{})

	mock.ExpectBegin()
	mock.ExpectQuery(q(sqlLockTable)).WithArgs(11).WillReturnRows(tableRow(11, 1, model.TableBooked))
	mock.ExpectQuery(q(sqlSlotTaken)).WithArgs(11, at).
		WillReturnRows(sqlmock.NewRows([]string{"taken"}).AddRow(true))
	mock.ExpectRollback()

	_, err := svc.CreateBooking(context.Background(), booking.CreateBookingRequest{
		UserID: 5, RestaurantID: 1, TableID: 11, Time: "2025-06-01T19:00:00Z",
	})
	assert.ErrorIs(t, err, booking.ErrSlotTaken)
}

func TestServiceCreateOverLedgerDuplicateKey(t *testing.T) {
	db, mock := newMock(t)
	svc := booking.NewService(NewLedger(db), booking.Options{})

	mock.ExpectBegin()
	mock.ExpectQuery(q(sqlLockTable)).WithArgs(11).WillReturnRows(tableRow(11, 1, model.TableAvailable))
	mock.ExpectQuery(q(sqlSlotTaken)).WithArgs(11, at).
		WillReturnRows(sqlmock.NewRows([]string{"taken"}).AddRow(false))
	mock.ExpectExec(q(sqlInsert)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 'uq_bookings_active_slot'"})
	mock.ExpectRollback()

	_, err := svc.CreateBooking(context.Background(), booking.CreateBookingRequest{
		UserID: 5, RestaurantID: 1, TableID: 11, Time: "2025-06-01T19:00:00Z",
	})
	assert.ErrorIs(t, err, booking.ErrSlotTaken)
}

func TestServiceCreateOverLedgerRollsBackOnStatusFailure(t *testing.T) {
	db, mock := newMock(t)
	svc := booking.NewService(NewLedger(db), booking.Options{})

	mock.ExpectBegin()
	mock.ExpectQuery(q(sqlLockTable)).WithArgs(11).WillReturnRows(tableRow(11, 1, model.TableAvailable))
	mock.ExpectQuery(q(sqlSlotTaken)).WithArgs(11, at).
		WillReturnRows(sqlmock.NewRows([]string{"taken"}).AddRow(false))
	mock.ExpectExec(q(sqlInsert)).WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(q(sqlSetStatus)).WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	_, err := svc.CreateBooking(context.Background(), booking.CreateBookingRequest{
		UserID: 5, RestaurantID: 1, TableID: 11, Time: "2025-06-01T19:00:00Z",
	})
	assert.ErrorIs(t, err, booking.ErrStorage)
}

func TestServiceCreateOverLedgerTimeoutRollsBack(t *testing.T) {
	db, mock := newMock(t)
	svc := booking.NewService(NewLedger(db), booking.Options{TxTimeout: 50 * time.Millisecond})

	mock.ExpectBegin()
	mock.ExpectQuery(q(sqlLockTable)).WithArgs(11).
		WillDelayFor(time.Second).
		WillReturnRows(tableRow(11, 1, model.TableAvailable))
	mock.ExpectRollback()

	start := time.Now()
	_, err := svc.CreateBooking(context.Background(), booking.CreateBookingRequest{
		UserID: 5, RestaurantID: 1, TableID: 11, Time: "2025-06-01T19:00:00Z",
	})
	assert.ErrorIs(t, err, booking.ErrStorage)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	// database/sql may roll back from its own context watcher goroutine.
	assert.Eventually(t, func() bool { return mock.ExpectationsWereMet() == nil }, time.Second, 10*time.Millisecond)
}

func TestServiceCreateOverLedgerUnknownTable(t *testing.T) {
	db, mock := newMock(t)
	svc := booking.NewService(NewLedger(db), booking.Options{})

	mock.ExpectBegin()
	mock.ExpectQuery(q(sqlLockTable)).WithArgs(99).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.CreateBooking(context.Background(), booking.CreateBookingRequest{
		UserID: 5, RestaurantID: 1, TableID: 99, Time: "2025-06-01T19:00:00Z",
	})
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func bookingRow(id, userID, tableID uint64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "restaurant_id", "table_id", "reservation_time", "status", "created_at"}).
		AddRow(id, userID, 1, tableID, at, model.BookingConfirmed, at.Add(-time.Hour))
}

func TestServiceCancelOverLedger(t *testing.T) {
	db, mock := newMock(t)
	svc := booking.NewService(NewLedger(db), booking.Options{})

	mock.ExpectBegin()
	mock.ExpectQuery(q(sqlLockBooking)).WithArgs(42).WillReturnRows(bookingRow(42, 5, 11))
	mock.ExpectQuery(q(sqlLockTable)).WithArgs(11).WillReturnRows(tableRow(11, 1, model.TableBooked))
	mock.ExpectExec(q(sqlCancel)).WithArgs(42).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q(sqlHasActive)).WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"active"}).AddRow(false))
	mock.ExpectExec(q(sqlSetStatus)).WithArgs(model.TableAvailable, 11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := svc.CancelBooking(context.Background(), booking.CancelBookingRequest{UserID: 5, BookingID: 42})
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, b.Status)
}

func TestServiceCancelOverLedgerForbidden(t *testing.T) {
	db, mock := newMock(t)
	svc := booking.NewService(NewLedger(db), booking.Options{})

	mock.ExpectBegin()
	mock.ExpectQuery(q(sqlLockBooking)).WithArgs(42).WillReturnRows(bookingRow(42, 5, 11))
	mock.ExpectRollback()

	_, err := svc.CancelBooking(context.Background(), booking.CancelBookingRequest{UserID: 6, BookingID: 42})
	assert.ErrorIs(t, err, booking.ErrForbidden)
}

func TestServiceCancelOverLedgerMissing(t *testing.T) {
	db, mock := newMock(t)
	svc := booking.NewService(NewLedger(db), booking.Options{})

	mock.ExpectBegin()
	mock.ExpectQuery(q(sqlLockBooking)).WithArgs(42).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.CancelBooking(context.Background(), booking.CancelBookingRequest{UserID: 5, BookingID: 42})
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestCancelTxNoRows(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(q(sqlCancel)).WithArgs(42).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	err = repo.CancelTx(context.Background(), tx, 42)
	assert.ErrorIs(t, err, booking.ErrRecordNotFound)
	require.NoError(t, tx.Rollback())
}

func TestLedgerRollbackAfterCommitIsNoop(t *testing.T) {
	db, mock := newMock(t)
	l := NewLedger(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := l.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, tx.Rollback())
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(&mysql.MySQLError{Number: 1062}))
	assert.True(t, isDuplicateKey(errors.Join(errors.New("insert"), &mysql.MySQLError{Number: 1062})))
	assert.False(t, isDuplicateKey(&mysql.MySQLError{Number: 1213}))
	assert.False(t, isDuplicateKey(errors.New("Duplicate entry")))
	assert.False(t, isDuplicateKey(nil))
}

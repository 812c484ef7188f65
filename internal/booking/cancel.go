package booking

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/restaurant-table-booking/internal/metrics"
	"github.com/iliyamo/restaurant-table-booking/internal/model"
)

// CancelBooking cancels an active booking owned by the caller and refreshes
// the table's cached status. Not found and not owned are reported with the
// same message.
func (s *Service) CancelBooking(ctx context.Context, req CancelBookingRequest) (model.Booking, error) {
	b, err := s.cancelBooking(ctx, req)
	metrics.Cancellations.WithLabelValues(outcome(err, "cancelled")).Inc()
	if err != nil {
		return model.Booking{}, err
	}

	s.log.WithCtx(ctx).Info("booking cancelled", "booking_id", b.ID, "user_id", b.UserID, "table_id", b.TableID)
	s.publish(ctx, "cancelled", b)
	return b, nil
}

func (s *Service) cancelBooking(ctx context.Context, req CancelBookingRequest) (model.Booking, error) {
	if err := s.validator.check(req); err != nil {
		return model.Booking{}, err
	}

	defer metrics.ObserveTx("cancel", time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return model.Booking{}, storageError("begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := tx.LockActiveBooking(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return model.Booking{}, notFoundError(msgNoAccess)
		}
		return model.Booking{}, storageError("lock booking", err)
	}
	if b.UserID != req.UserID {
		return model.Booking{}, forbiddenError(msgNoAccess)
	}

	// Serializes the status recompute with concurrent creates on this table.
	if _, err := tx.LockTable(ctx, b.TableID); err != nil {
		return model.Booking{}, storageError("lock table", err)
	}
	if err := tx.CancelBooking(ctx, b.ID); err != nil {
		return model.Booking{}, storageError("cancel booking", err)
	}

	stillBooked, err := tx.TableHasActiveBookings(ctx, b.TableID)
	if err != nil {
		return model.Booking{}, storageError("check table bookings", err)
	}
	status := model.TableAvailable
	if stillBooked {
		status = model.TableBooked
	}
	if err := tx.SetTableStatus(ctx, b.TableID, status); err != nil {
		return model.Booking{}, storageError("set table status", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Booking{}, storageError("commit", err)
	}
	committed = true
	b.Status = model.BookingCancelled
	return b, nil
}

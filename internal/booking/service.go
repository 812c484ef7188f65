// Package booking is the booking consistency engine. It decides, under
// concurrent requests, whether a reservation succeeds and keeps the booking
// ledger and the cached table status consistent.
package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iliyamo/restaurant-table-booking/internal/logger"
	"github.com/iliyamo/restaurant-table-booking/internal/metrics"
	"github.com/iliyamo/restaurant-table-booking/internal/model"
)

// Publisher receives committed booking changes. Delivery is best effort:
// events are handed to a background worker after commit, errors are logged
// and never undo a committed transaction.
type Publisher interface {
	BookingConfirmed(ctx context.Context, b model.Booking) error
	BookingCancelled(ctx context.Context, b model.Booking) error
}

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	Locker    SlotLocker
	Publisher Publisher
	Logger    *logger.Logger
	// TxTimeout bounds one create or cancel operation, lock wait included.
	TxTimeout time.Duration
	// Location interprets reservation times sent without a zone offset.
	Location *time.Location
	// Now is used for timestamps on new bookings.
	Now func() time.Time
	// PublishTimeout bounds one event publish. EventBuffer is how many
	// events may wait for the worker before new ones are dropped.
	PublishTimeout time.Duration
	EventBuffer    int
}

// Service exposes the engine operations consumed by the HTTP layer.
type Service struct {
	store     Store
	checker   Checker
	locker    SlotLocker
	publisher Publisher
	log       *logger.Logger
	validator *requestValidator
	txTimeout time.Duration
	loc       *time.Location
	now       func() time.Time

	publishTimeout time.Duration
	events         chan eventJob
	eventsDone     chan struct{}
	eventsMu       sync.RWMutex
	eventsClosed   bool
	closeOnce      sync.Once
}

type eventJob struct {
	ctx  context.Context
	kind string
	b    model.Booking
}

func NewService(store Store, opts Options) *Service {
	s := &Service{
		store:     store,
		locker:    opts.Locker,
		publisher: opts.Publisher,
		log:       opts.Logger,
		validator: newRequestValidator(),
		txTimeout: opts.TxTimeout,
		loc:       opts.Location,
		now:       opts.Now,
	}
	if s.locker == nil {
		s.locker = NopLocker{}
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.txTimeout <= 0 {
		s.txTimeout = 5 * time.Second
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.publisher != nil {
		s.publishTimeout = opts.PublishTimeout
		if s.publishTimeout <= 0 {
			s.publishTimeout = 5 * time.Second
		}
		buf := opts.EventBuffer
		if buf <= 0 {
			buf = 256
		}
		s.events = make(chan eventJob, buf)
		s.eventsDone = make(chan struct{})
		go s.runPublisher()
	}
	return s
}

// Close stops accepting booking events and waits until the queued ones
// are published or ctx ends.
func (s *Service) Close(ctx context.Context) error {
	if s.events == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		s.eventsMu.Lock()
		s.eventsClosed = true
		close(s.events)
		s.eventsMu.Unlock()
	})
	select {
	case <-s.eventsDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CreateBooking atomically records a confirmed booking for the slot and
// marks the table booked, or changes nothing.
func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (model.Booking, error) {
	b, err := s.createBooking(ctx, req)
	metrics.BookingAttempts.WithLabelValues(outcome(err, "created")).Inc()
	if err != nil {
		return model.Booking{}, err
	}

	s.log.WithCtx(ctx).Info("booking created",
		"booking_id", b.ID, "user_id", b.UserID, "table_id", b.TableID,
		"reservation_time", b.ReservationTime.Format(time.RFC3339))
	s.publish(ctx, "confirmed", b)
	return b, nil
}

func (s *Service) createBooking(ctx context.Context, req CreateBookingRequest) (model.Booking, error) {
	if err := s.validator.check(req); err != nil {
		return model.Booking{}, err
	}
	at, err := NormalizeTime(req.Time, s.loc)
	if err != nil {
		return model.Booking{}, err
	}

	defer metrics.ObserveTx("create", time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	release, err := s.locker.Acquire(ctx, req.TableID, at)
	if err != nil {
		return model.Booking{}, storageError("acquire slot lock", err)
	}
	defer release()

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

	table, err := tx.LockTable(ctx, req.TableID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return model.Booking{}, notFoundError("table not found")
		}
		return model.Booking{}, storageError("lock table", err)
	}
	if table.RestaurantID != req.RestaurantID {
		return model.Booking{}, notFoundError("table not found in this restaurant")
	}

	taken, err := s.checker.Taken(ctx, tx, table.ID, at)
	if err != nil {
		return model.Booking{}, storageError("check slot", err)
	}
	if taken {
		return model.Booking{}, slotTakenError()
	}

	b := model.Booking{
		UserID:          req.UserID,
		RestaurantID:    table.RestaurantID,
		TableID:         table.ID,
		ReservationTime: at,
		Status:          model.BookingConfirmed,
		CreatedAt:       s.now().UTC().Truncate(time.Second),
	}
	if err := tx.InsertBooking(ctx, &b); err != nil {
		if errors.Is(err, ErrDuplicateSlot) {
			return model.Booking{}, slotTakenError()
		}
		return model.Booking{}, storageError("insert booking", err)
	}
	if err := tx.SetTableStatus(ctx, table.ID, model.TableBooked); err != nil {
		return model.Booking{}, storageError("set table status", err)
	}

	if err := tx.Commit(); err != nil {
		if errors.Is(err, ErrDuplicateSlot) {
			return model.Booking{}, slotTakenError()
		}
		return model.Booking{}, storageError("commit", err)
	}
	committed = true
	return b, nil
}

// publish queues the event for the worker. The job keeps the request's
// values (request id) but not its cancellation. A full queue drops the
// event rather than delaying the response.
func (s *Service) publish(ctx context.Context, kind string, b model.Booking) {
	if s.events == nil {
		return
	}
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	if !s.eventsClosed {
		select {
		case s.events <- eventJob{ctx: context.WithoutCancel(ctx), kind: kind, b: b}:
			return
		default:
		}
	}
	metrics.EventsPublished.WithLabelValues(kind, "dropped").Inc()
	s.log.WithCtx(ctx).Warn("booking event dropped", "type", kind, "booking_id", b.ID)
}

// runPublisher delivers queued events one at a time, in commit order.
func (s *Service) runPublisher() {
	defer close(s.eventsDone)
	for job := range s.events {
		ctx, cancel := context.WithTimeout(job.ctx, s.publishTimeout)
		var err error
		switch job.kind {
		case "confirmed":
			err = s.publisher.BookingConfirmed(ctx, job.b)
		case "cancelled":
			err = s.publisher.BookingCancelled(ctx, job.b)
		}
		cancel()
		if err != nil {
			s.log.WithCtx(job.ctx).Warn("publish booking event failed", "type", job.kind, "booking_id", job.b.ID, "error", err)
		}
	}
}

// outcome labels an engine result for metrics.
func outcome(err error, ok string) string {
	switch {
	case err == nil:
		return ok
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrSlotTaken):
		return "slot_taken"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	default:
		return "storage"
	}
}

package booking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/restaurant-table-booking/internal/model"
)

// memStore is an in-memory ledger with row-lock and unique-index semantics
// close enough to InnoDB for engine tests: LockTable blocks other holders
// until Commit or Rollback or until the caller's context ends, reads see
// committed data plus the tx's own writes, and Commit rejects a second
// active booking for the same slot.
type memStore struct {
	mu          sync.Mutex
	restaurants map[uint64]model.Restaurant
	tables      map[uint64]model.Table
	users       map[uint64]string
	bookings    map[uint64]model.Booking
	nextID      uint64

	tableLocks   map[uint64]rowLock
	bookingLocks map[uint64]rowLock

	begins         int
	rollbacks      int
	failSetStatus  error
	failBegin      error
	blindSlotCheck bool
}

func newMemStore() *memStore {
	return &memStore{
		restaurants:  map[uint64]model.Restaurant{},
		tables:       map[uint64]model.Table{},
		users:        map[uint64]string{},
		bookings:     map[uint64]model.Booking{},
		tableLocks:   map[uint64]rowLock{},
		bookingLocks: map[uint64]rowLock{},
	}
}

func (s *memStore) addRestaurant(id, ownerID uint64, name string) {
	s.restaurants[id] = model.Restaurant{ID: id, Name: name, OwnerID: ownerID}
}

func (s *memStore) addTable(id, restaurantID uint64, number, seats uint32) {
	s.tables[id] = model.Table{ID: id, RestaurantID: restaurantID, Number: number, Seats: seats, Status: model.TableAvailable}
}

func (s *memStore) tableStatus(id uint64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables[id].Status
}

func (s *memStore) activeBookings() []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.Active() {
			out = append(out, b)
		}
	}
	return out
}

func (s *memStore) beginCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begins
}

func (s *memStore) rollbackCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollbacks
}

// rowLock is a one-slot semaphore so waiters can give up on ctx.
type rowLock chan struct{}

func (l rowLock) lock(ctx context.Context) error {
	select {
	case l <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l rowLock) unlock() { <-l }

func (s *memStore) lockFor(m map[uint64]rowLock, id uint64) rowLock {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := m[id]
	if !ok {
		l = make(rowLock, 1)
		m[id] = l
	}
	return l
}

// tableLocked reports whether some transaction holds the table row.
func (s *memStore) tableLocked(id uint64) bool {
	l := s.lockFor(s.tableLocks, id)
	return len(l) == 1
}

func (s *memStore) Begin(ctx context.Context) (Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begins++
	if s.failBegin != nil {
		return nil, s.failBegin
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memTx{s: s, status: map[uint64]string{}, cancelled: map[uint64]bool{}}, nil
}

func (s *memStore) ListRestaurants(context.Context) ([]model.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Restaurant, 0, len(s.restaurants))
	for _, r := range s.restaurants {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) GetRestaurant(_ context.Context, id uint64) (model.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.restaurants[id]
	if !ok {
		return model.Restaurant{}, ErrRecordNotFound
	}
	return r, nil
}

func (s *memStore) ListTableStatuses(_ context.Context, restaurantID uint64) ([]model.TableStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.TableStatus
	for _, t := range s.tables {
		if t.RestaurantID != restaurantID {
			continue
		}
		status := model.TableAvailable
		for _, b := range s.bookings {
			if b.TableID == t.ID && b.Active() {
				status = model.TableBooked
				break
			}
		}
		out = append(out, model.TableStatus{TableID: t.ID, Number: t.Number, Seats: t.Seats, Status: status})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *memStore) ListUserBookings(_ context.Context, userID uint64) ([]model.UserBooking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.UserBooking
	for _, b := range s.bookings {
		if b.UserID != userID {
			continue
		}
		out = append(out, model.UserBooking{
			BookingID:       b.ID,
			RestaurantID:    b.RestaurantID,
			RestaurantName:  s.restaurants[b.RestaurantID].Name,
			TableID:         b.TableID,
			TableNumber:     s.tables[b.TableID].Number,
			ReservationTime: b.ReservationTime,
			Status:          b.Status,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReservationTime.After(out[j].ReservationTime) })
	return out, nil
}

func (s *memStore) ListRestaurantBookings(_ context.Context, restaurantID uint64) ([]model.RestaurantBooking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.RestaurantBooking
	for _, b := range s.bookings {
		if b.RestaurantID != restaurantID {
			continue
		}
		out = append(out, model.RestaurantBooking{
			BookingID:       b.ID,
			UserID:          b.UserID,
			CustomerName:    s.users[b.UserID],
			TableID:         b.TableID,
			TableNumber:     s.tables[b.TableID].Number,
			ReservationTime: b.ReservationTime,
			Status:          b.Status,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReservationTime.After(out[j].ReservationTime) })
	return out, nil
}

type memTx struct {
	s         *memStore
	held      []rowLock
	inserted  []model.Booking
	status    map[uint64]string
	cancelled map[uint64]bool
	done      bool
}

func (tx *memTx) LockTable(ctx context.Context, tableID uint64) (model.Table, error) {
	tx.s.mu.Lock()
	_, ok := tx.s.tables[tableID]
	tx.s.mu.Unlock()
	if !ok {
		return model.Table{}, ErrRecordNotFound
	}
	l := tx.s.lockFor(tx.s.tableLocks, tableID)
	if err := l.lock(ctx); err != nil {
		return model.Table{}, err
	}
	tx.held = append(tx.held, l)

	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	return tx.s.tables[tableID], nil
}

func (tx *memTx) SlotTaken(_ context.Context, tableID uint64, at time.Time) (bool, error) {
	if tx.s.blindSlotCheck {
		return false, nil
	}
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	for _, b := range tx.s.bookings {
		if b.TableID == tableID && b.ReservationTime.Equal(at) && b.Active() && !tx.cancelled[b.ID] {
			return true, nil
		}
	}
	for _, b := range tx.inserted {
		if b.TableID == tableID && b.ReservationTime.Equal(at) {
			return true, nil
		}
	}
	return false, nil
}

func (tx *memTx) InsertBooking(_ context.Context, b *model.Booking) error {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	if tx.s.duplicateLocked(*b) {
		return ErrDuplicateSlot
	}
	tx.s.nextID++
	b.ID = tx.s.nextID
	tx.inserted = append(tx.inserted, *b)
	return nil
}

func (s *memStore) duplicateLocked(b model.Booking) bool {
	for _, other := range s.bookings {
		if other.TableID == b.TableID && other.ReservationTime.Equal(b.ReservationTime) && other.Active() {
			return true
		}
	}
	return false
}

func (tx *memTx) SetTableStatus(_ context.Context, tableID uint64, status string) error {
	if tx.s.failSetStatus != nil {
		return tx.s.failSetStatus
	}
	tx.status[tableID] = status
	return nil
}

func (tx *memTx) LockActiveBooking(ctx context.Context, bookingID uint64) (model.Booking, error) {
	tx.s.mu.Lock()
	b, ok := tx.s.bookings[bookingID]
	tx.s.mu.Unlock()
	if !ok || !b.Active() {
		return model.Booking{}, ErrRecordNotFound
	}
	l := tx.s.lockFor(tx.s.bookingLocks, bookingID)
	if err := l.lock(ctx); err != nil {
		return model.Booking{}, err
	}
	tx.held = append(tx.held, l)

	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	b = tx.s.bookings[bookingID]
	if !b.Active() {
		return model.Booking{}, ErrRecordNotFound
	}
	return b, nil
}

func (tx *memTx) CancelBooking(_ context.Context, bookingID uint64) error {
	tx.cancelled[bookingID] = true
	return nil
}

func (tx *memTx) TableHasActiveBookings(_ context.Context, tableID uint64) (bool, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	for _, b := range tx.s.bookings {
		if b.TableID == tableID && b.Active() && !tx.cancelled[b.ID] {
			return true, nil
		}
	}
	for _, b := range tx.inserted {
		if b.TableID == tableID {
			return true, nil
		}
	}
	return false, nil
}

func (tx *memTx) Commit() error {
	if tx.done {
		return errors.New("tx already finished")
	}
	tx.s.mu.Lock()
	for _, b := range tx.inserted {
		if tx.s.duplicateLocked(b) {
			tx.s.mu.Unlock()
			tx.finish()
			return ErrDuplicateSlot
		}
	}
	for _, b := range tx.inserted {
		tx.s.bookings[b.ID] = b
	}
	for id := range tx.cancelled {
		b := tx.s.bookings[id]
		b.Status = model.BookingCancelled
		tx.s.bookings[id] = b
	}
	for id, st := range tx.status {
		t := tx.s.tables[id]
		t.Status = st
		tx.s.tables[id] = t
	}
	tx.s.mu.Unlock()
	tx.finish()
	return nil
}

func (tx *memTx) Rollback() error {
	if tx.done {
		return nil
	}
	tx.s.mu.Lock()
	tx.s.rollbacks++
	tx.s.mu.Unlock()
	tx.finish()
	return nil
}

func (tx *memTx) finish() {
	tx.done = true
	for i := len(tx.held) - 1; i >= 0; i-- {
		tx.held[i].unlock()
	}
	tx.held = nil
}

// recordingPublisher captures published events. When block is set each
// publish waits for it to be closed.
type recordingPublisher struct {
	mu        sync.Mutex
	confirmed []model.Booking
	cancelled []model.Booking
	ctxErrs   []error
	err       error
	block     chan struct{}
}

func (p *recordingPublisher) record(ctx context.Context, list *[]model.Booking, b model.Booking) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	*list = append(*list, b)
	p.ctxErrs = append(p.ctxErrs, ctx.Err())
	return p.err
}

func (p *recordingPublisher) BookingConfirmed(ctx context.Context, b model.Booking) error {
	return p.record(ctx, &p.confirmed, b)
}

func (p *recordingPublisher) BookingCancelled(ctx context.Context, b model.Booking) error {
	return p.record(ctx, &p.cancelled, b)
}

// Package queue publishes booking events to RabbitMQ and consumes them into
// logs/booking.log.
package queue

import (
	"time"

	"github.com/iliyamo/restaurant-table-booking/internal/model"
)

// Queue names. The routing key equals the queue name on the default exchange.
const (
	QueueBookingConfirmed = "booking.confirmed"
	QueueBookingCancelled = "booking.cancelled"
)

// Event types carried in BookingEvent.Type.
const (
	EventConfirmed = "confirmed"
	EventCancelled = "cancelled"
)

// BookingEvent is published after a booking transaction commits. It
// carries enough for consumers to log or notify without querying the
// database.
type BookingEvent struct {
	Type            string `json:"type"`
	BookingID       uint64 `json:"booking_id"`
	UserID          uint64 `json:"user_id"`
	RestaurantID    uint64 `json:"restaurant_id"`
	TableID         uint64 `json:"table_id"`
	ReservationTime string `json:"reservation_time"`
	Status          string `json:"status"`
	OccurredAt      string `json:"occurred_at"`
}

// NewBookingEvent builds the event for b. Times are RFC3339 in UTC.
func NewBookingEvent(eventType string, b model.Booking, now time.Time) BookingEvent {
	return BookingEvent{
		Type:            eventType,
		BookingID:       b.ID,
		UserID:          b.UserID,
		RestaurantID:    b.RestaurantID,
		TableID:         b.TableID,
		ReservationTime: b.ReservationTime.UTC().Format(time.RFC3339),
		Status:          b.Status,
		OccurredAt:      now.UTC().Format(time.RFC3339),
	}
}

func queueFor(eventType string) string {
	if eventType == EventCancelled {
		return QueueBookingCancelled
	}
	return QueueBookingConfirmed
}

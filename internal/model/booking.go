package model

import "time"

// Booking lifecycle values. Only confirmed bookings are active.
const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Booking records a user's reservation of one table at one instant.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – user who made the booking.
//  RestaurantID    – restaurant of the booked table.
//  TableID         – table being reserved.
//  ReservationTime – reserved instant, always UTC.
//  Status          – confirmed or cancelled.
//  CreatedAt       – creation timestamp.
type Booking struct {
	ID              uint64    `json:"id"`               // bookings.id
	UserID          uint64    `json:"user_id"`          // bookings.user_id
	RestaurantID    uint64    `json:"restaurant_id"`    // bookings.restaurant_id
	TableID         uint64    `json:"table_id"`         // bookings.table_id
	ReservationTime time.Time `json:"reservation_time"` // bookings.reservation_time
	Status          string    `json:"status"`           // bookings.status
	CreatedAt       time.Time `json:"created_at"`       // bookings.created_at
}

// Active reports whether the booking still claims its slot.
func (b Booking) Active() bool { return b.Status == BookingConfirmed }

// UserBooking is a row of the "my bookings" view.
type UserBooking struct {
	BookingID       uint64    `json:"id"`
	RestaurantID    uint64    `json:"restaurant_id"`
	RestaurantName  string    `json:"restaurant_name"`
	TableID         uint64    `json:"table_id"`
	TableNumber     uint32    `json:"table_number"`
	ReservationTime time.Time `json:"reservation_time"`
	Status          string    `json:"status"`
}

// RestaurantBooking is a row of the owner-facing restaurant bookings view.
type RestaurantBooking struct {
	BookingID       uint64    `json:"id"`
	UserID          uint64    `json:"user_id"`
	CustomerName    string    `json:"customer_name"`
	TableID         uint64    `json:"table_id"`
	TableNumber     uint32    `json:"table_number"`
	ReservationTime time.Time `json:"reservation_time"`
	Status          string    `json:"status"`
}

package model

// Table status values. The stored column is a cache of whether any
// active booking references the table; read paths derive it from the
// bookings themselves.
const (
	TableAvailable = "available"
	TableBooked    = "booked"
)

// Table describes a physical table in a restaurant. Tables are
// uniquely identified by their restaurant and table number.
//
// Fields:
//  ID           – primary key identifier.
//  RestaurantID – restaurant to which this table belongs.
//  Number       – table number, unique within the restaurant.
//  Seats        – seat count.
//  Status       – cached status (available or booked).
type Table struct {
	ID           uint64 // tables.id
	RestaurantID uint64 // tables.restaurant_id
	Number       uint32 // tables.table_number
	Seats        uint32 // tables.seats
	Status       string // tables.status
}

// TableStatus is the read model returned by the table availability view.
type TableStatus struct {
	TableID uint64 `json:"table_id"`
	Number  uint32 `json:"number"`
	Seats   uint32 `json:"seats"`
	Status  string `json:"status"`
}

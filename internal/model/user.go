package model

import "time"

// User represents an application user record as stored in the
// `users` table. Users are created by the identity service; this
// service only reads them to attribute bookings and to render the
// customer name in restaurant booking lists.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique email address.
//  Phone        – optional phone number.
//  PasswordHash – credential owned by the identity service; never exposed.
//  Role         – name of the role (e.g. CUSTOMER or OWNER).
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    `json:"id"`         // users.id
	Name         string    `json:"name"`       // users.name
	Email        string    `json:"email"`      // users.email
	Phone        *string   `json:"phone"`      // users.phone (nullable)
	PasswordHash string    `json:"-"`          // users.password_hash
	Role         string    `json:"role"`       // users.role
	CreatedAt    time.Time `json:"created_at"` // users.created_at
}

// Roles accepted on access tokens.
const (
	RoleCustomer = "CUSTOMER"
	RoleOwner    = "OWNER"
)

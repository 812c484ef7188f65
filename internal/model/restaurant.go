package model

// Restaurant represents a venue owned by a user. A restaurant
// contains multiple tables. Restaurants are managed by an external
// service; this one only reads them.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name.
//  Address     – street address.
//  Phone       – contact phone.
//  Description – free-form description (nullable).
//  CuisineType – cuisine label (nullable).
//  ImageURL    – reference to a cover image (nullable).
//  OwnerID     – user ID of the restaurant owner.
type Restaurant struct {
	ID          uint64  `json:"id"`           // restaurants.id
	Name        string  `json:"name"`         // restaurants.name
	Address     string  `json:"address"`      // restaurants.address
	Phone       string  `json:"phone"`        // restaurants.phone
	Description *string `json:"description"`  // restaurants.description
	CuisineType *string `json:"cuisine_type"` // restaurants.cuisine_type
	ImageURL    *string `json:"image_url"`    // restaurants.image_url
	OwnerID     uint64  `json:"-"`            // restaurants.owner_id
}

package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-table-booking/internal/model"
)

// RestaurantRepo reads restaurants. Rows are managed by another service.
type RestaurantRepo struct {
	db *sql.DB
}

func NewRestaurantRepo(db *sql.DB) *RestaurantRepo { return &RestaurantRepo{db: db} }

const restaurantColumns = `id, name, address, phone, description, cuisine_type, image_url, owner_id`

func scanRestaurant(sc interface{ Scan(...any) error }) (model.Restaurant, error) {
	var (
		r                       model.Restaurant
		desc, cuisine, imageURL sql.NullString
	)
	if err := sc.Scan(&r.ID, &r.Name, &r.Address, &r.Phone, &desc, &cuisine, &imageURL, &r.OwnerID); err != nil {
		return model.Restaurant{}, err
	}
	r.Description = nullString(desc)
	r.CuisineType = nullString(cuisine)
	r.ImageURL = nullString(imageURL)
	return r, nil
}

// ListAll returns every restaurant ordered by id.
func (r *RestaurantRepo) ListAll(ctx context.Context) ([]model.Restaurant, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Restaurant{}
	for rows.Next() {
		item, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

// GetByID returns one restaurant or booking.ErrRecordNotFound.
func (r *RestaurantRepo) GetByID(ctx context.Context, id uint64) (model.Restaurant, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = ?`, id)
	item, err := scanRestaurant(row)
	if err != nil {
		return model.Restaurant{}, notFound(err)
	}
	return item, nil
}

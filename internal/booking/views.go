package booking

import (
	"context"
	"errors"

	"github.com/iliyamo/restaurant-table-booking/internal/model"
)

// ListRestaurants returns all restaurants ordered by id.
func (s *Service) ListRestaurants(ctx context.Context) ([]model.Restaurant, error) {
	items, err := s.store.ListRestaurants(ctx)
	if err != nil {
		return nil, storageError("list restaurants", err)
	}
	return items, nil
}

// ListTablesWithStatus returns the restaurant's tables. A table is booked
// iff an active booking references it.
func (s *Service) ListTablesWithStatus(ctx context.Context, restaurantID uint64) ([]model.TableStatus, error) {
	if restaurantID == 0 {
		return nil, validationError("restaurant_id is required", map[string]string{"restaurant_id": "restaurant_id is required"})
	}
	if _, err := s.restaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	items, err := s.store.ListTableStatuses(ctx, restaurantID)
	if err != nil {
		return nil, storageError("list tables", err)
	}
	return items, nil
}

// ListUserBookings returns the user's bookings, newest reservation first.
func (s *Service) ListUserBookings(ctx context.Context, userID uint64) ([]model.UserBooking, error) {
	if userID == 0 {
		return nil, validationError("user_id is required", map[string]string{"user_id": "user_id is required"})
	}
	items, err := s.store.ListUserBookings(ctx, userID)
	if err != nil {
		return nil, storageError("list user bookings", err)
	}
	return items, nil
}

// ListRestaurantBookings returns the bookings of a restaurant. Only the
// restaurant's owner may call it; an unknown restaurant is reported exactly
// like someone else's.
func (s *Service) ListRestaurantBookings(ctx context.Context, ownerID, restaurantID uint64) ([]model.RestaurantBooking, error) {
	if restaurantID == 0 {
		return nil, validationError("restaurant_id is required", map[string]string{"restaurant_id": "restaurant_id is required"})
	}
	r, err := s.store.GetRestaurant(ctx, restaurantID)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return nil, storageError("get restaurant", err)
	}
	if err != nil || r.OwnerID != ownerID {
		return nil, forbiddenError(msgNoRestaurantAccess)
	}
	items, err := s.store.ListRestaurantBookings(ctx, restaurantID)
	if err != nil {
		return nil, storageError("list restaurant bookings", err)
	}
	return items, nil
}

func (s *Service) restaurant(ctx context.Context, id uint64) (model.Restaurant, error) {
	r, err := s.store.GetRestaurant(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return model.Restaurant{}, notFoundError("restaurant not found")
		}
		return model.Restaurant{}, storageError("get restaurant", err)
	}
	return r, nil
}

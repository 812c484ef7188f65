package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-table-booking/internal/model"
)

// UserRepo reads the 'users' table. Users are written by the identity
// service only.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var (
		u     model.User
		phone sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,email,phone,role,created_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Name, &u.Email, &phone, &u.Role, &u.CreatedAt)
	if err != nil {
		return model.User{}, notFound(err)
	}
	u.Phone = nullString(phone)
	return u, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

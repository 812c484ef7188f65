package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order. Every statement is idempotent so Migrate can
// run on each deploy.
//
// bookings.active_slot is 1 for confirmed rows and NULL otherwise. MySQL
// treats NULLs as distinct in unique indexes, so uq_bookings_active_slot
// only constrains active bookings: at most one confirmed booking per
// (table, reservation_time), while any number of cancelled rows may remain.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		email         VARCHAR(255) NOT NULL,
		phone         VARCHAR(32)  NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(32)  NOT NULL,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS restaurants (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name         VARCHAR(255) NOT NULL,
		address      VARCHAR(512) NOT NULL,
		phone        VARCHAR(32)  NOT NULL,
		description  TEXT         NULL,
		cuisine_type VARCHAR(64)  NULL,
		image_url    VARCHAR(1024) NULL,
		owner_id     BIGINT UNSIGNED NOT NULL,
		CONSTRAINT fk_restaurants_owner FOREIGN KEY (owner_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS restaurant_tables (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		restaurant_id BIGINT UNSIGNED NOT NULL,
		table_number  INT UNSIGNED    NOT NULL,
		seats         INT UNSIGNED    NOT NULL,
		status        ENUM('available','booked') NOT NULL DEFAULT 'available',
		UNIQUE KEY uq_tables_number (restaurant_id, table_number),
		CONSTRAINT fk_tables_restaurant FOREIGN KEY (restaurant_id) REFERENCES restaurants (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id               BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id          BIGINT UNSIGNED NOT NULL,
		restaurant_id    BIGINT UNSIGNED NOT NULL,
		table_id         BIGINT UNSIGNED NOT NULL,
		reservation_time DATETIME        NOT NULL,
		status           ENUM('confirmed','cancelled') NOT NULL DEFAULT 'confirmed',
		created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		active_slot      TINYINT AS (IF(status = 'confirmed', 1, NULL)) STORED,
		UNIQUE KEY uq_bookings_active_slot (table_id, reservation_time, active_slot),
		KEY idx_bookings_user (user_id, reservation_time),
		KEY idx_bookings_restaurant (restaurant_id, reservation_time),
		CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_bookings_restaurant FOREIGN KEY (restaurant_id) REFERENCES restaurants (id),
		CONSTRAINT fk_bookings_table FOREIGN KEY (table_id) REFERENCES restaurant_tables (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	return nil
}

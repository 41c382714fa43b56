package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []struct {
	table string
	ddl   string
}{
	{"users", `
CREATE TABLE IF NOT EXISTS users (
	id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	email         VARCHAR(255) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uq_users_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"shows", `
CREATE TABLE IF NOT EXISTS shows (
	id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	movie_id     BIGINT UNSIGNED NOT NULL DEFAULT 0,
	title        VARCHAR(255)    NOT NULL,
	scheduled_at DATETIME        NOT NULL,
	seat_rows    INT UNSIGNED    NOT NULL DEFAULT 5,
	seat_cols    INT UNSIGNED    NOT NULL DEFAULT 6
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id           CHAR(36)        NOT NULL PRIMARY KEY,
	show_id      BIGINT UNSIGNED NOT NULL,
	owner_id     BIGINT UNSIGNED NOT NULL,
	status       ENUM('ACTIVE','CANCELLED') NOT NULL,
	created_at   DATETIME(6)     NOT NULL,
	cancelled_at DATETIME(6)     NULL,
	KEY idx_bookings_show_status (show_id, status),
	KEY idx_bookings_owner (owner_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"booking_seats", `
CREATE TABLE IF NOT EXISTS booking_seats (
	booking_id CHAR(36)        NOT NULL,
	show_id    BIGINT UNSIGNED NOT NULL,
	seat_row   INT UNSIGNED    NOT NULL,
	seat_col   INT UNSIGNED    NOT NULL,
	PRIMARY KEY (booking_id, seat_row, seat_col),
	KEY idx_booking_seats_show (show_id),
	CONSTRAINT fk_booking_seats_booking FOREIGN KEY (booking_id) REFERENCES bookings (id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
}

// EnsureSchema creates every table the service needs.  It is idempotent
// and runs on start.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, t := range schema {
		if _, err := db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.table, err)
		}
	}
	return nil
}

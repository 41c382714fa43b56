// Package repository is the MySQL system of record: bookings with their
// seats, the show catalog and user accounts.  These sentinel values allow
// higher layers such as handlers to distinguish between different failure
// scenarios.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrEmailExists is returned by user creation when the email is taken.
// Handlers should translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrInvalidBooking rejects bookings that cannot be stored, such as
// bookings without an id or seats.
var ErrInvalidBooking = errors.New("invalid booking")

// isDuplicateKey reports whether err is MySQL error 1062.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

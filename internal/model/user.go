package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Users are the owners of bookings and the viewers of seat grids;
// their ID is carried in the `sub` claim of access tokens.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
}

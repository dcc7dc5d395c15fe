// Package entity defines the domain entities for the user feature.
package entity

import "time"

// User represents a registered user.
// Values are plain records: persistence happens only through the repository,
// which hands back a new User for every read or write.
type User struct {
	// ID is the server-generated identifier. It is never reused after deletion.
	ID uint

	Name string

	// Email is unique across all users. Uniqueness is enforced by the storage.
	Email string

	// Password holds the bcrypt hash. It is never part of any projection.
	Password string

	// EmailVerifiedAt is nil until the address has been verified.
	EmailVerifiedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserChanges is a partial update. A nil field is left untouched.
type UserChanges struct {
	Name     *string
	Email    *string
	Password *string
}

// IsEmpty reports whether no field is set.
func (c UserChanges) IsEmpty() bool {
	return c.Name == nil && c.Email == nil && c.Password == nil
}

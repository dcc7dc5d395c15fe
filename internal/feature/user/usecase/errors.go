// Package usecase implements the business logic for the user feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when no user exists for the given id or email.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when the storage rejects a write because
	// another user already owns the email address.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidPagination is returned for a negative page or page size.
	ErrInvalidPagination = errors.New("invalid pagination parameters")
)

package domain

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")

	// ErrIntegrityViolation surfaces a storage-level constraint failure
	// (uniqueness, foreign key) to the layers above.
	ErrIntegrityViolation = errors.New("storage integrity violation")
)

package service

import (
	"errors"
	"strings"
)

var ErrForbidden = errors.New("forbidden: insufficient permissions")

// ValidationError collects every missing or malformed field of a request so
// the caller gets the full list in one round trip.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

package encounter

import "errors"

var (
	ErrEncounterNotFound   = errors.New("encounter record not found")
	ErrDateRequired        = errors.New("encounter date is required")
	ErrInvalidActivity     = errors.New("invalid activity type")
	ErrInvalidContactType  = errors.New("invalid contact type")
	ErrNegativeCounts      = errors.New("patient counts cannot be negative")
	ErrInvalidPatientCount = errors.New("patient count must be a non-negative number")
	ErrInvalidDuration     = errors.New("duration must be a positive number of minutes")
)

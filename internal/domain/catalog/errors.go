package catalog

import "errors"

var (
	// ErrNotFound is the catalog resolution failure: a human-entered name
	// did not match any entry and auto-creation was not permitted.
	ErrNotFound = errors.New("catalog entry not found")

	ErrProgramNotFound      = errors.New("program not found")
	ErrAgreementNotFound    = errors.New("agreement not found")
	ErrInstitutionNotFound  = errors.New("institution not found")
	ErrProfessionalNotFound = errors.New("professional not found")

	// ErrAgreementProgramMismatch means the referenced agreement exists but
	// belongs to a different program.
	ErrAgreementProgramMismatch = errors.New("agreement does not belong to the given program")

	ErrNameRequired = errors.New("name is required")
)

// IsResolution reports whether err is one of the catalog resolution failures.
func IsResolution(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrProgramNotFound) ||
		errors.Is(err, ErrAgreementNotFound) ||
		errors.Is(err, ErrInstitutionNotFound) ||
		errors.Is(err, ErrProfessionalNotFound) ||
		errors.Is(err, ErrAgreementProgramMismatch)
}

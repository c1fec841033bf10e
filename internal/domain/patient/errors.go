package patient

import "errors"

var (
	ErrPatientNotFound  = errors.New("patient not found")
	ErrDocumentRequired = errors.New("patient document is required")
	ErrNameRequired     = errors.New("patient name is required")
)

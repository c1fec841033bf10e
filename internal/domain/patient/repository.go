package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Upsert creates the patient or, when the document already exists,
	// updates the existing row's fields. Idempotent on document.
	Upsert(ctx context.Context, cmd *UpsertPatientCommand) (*Patient, error)

	// FindByDocument is an exact-match lookup used for autocomplete when
	// registering an individual encounter. Returns ErrPatientNotFound.
	FindByDocument(ctx context.Context, document string) (*Patient, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	// List returns active patients ordered by name.
	List(ctx context.Context) ([]*Patient, error)

	Deactivate(ctx context.Context, id uuid.UUID) error
}

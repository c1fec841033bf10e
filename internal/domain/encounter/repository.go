package encounter

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, e *Encounter) error

	GetByID(ctx context.Context, id uuid.UUID) (*Encounter, error)

	// Update applies partial updates and refreshes actualizado_en.
	Update(ctx context.Context, id uuid.UUID, cmd *UpdateEncounterCommand) (*Encounter, error)

	// SoftDelete marks the record deleted; records never leave storage.
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// List returns the filtered records ordered by fecha descending, with
	// catalog display names resolved.
	List(ctx context.Context, f *Filter) ([]*Encounter, error)
}

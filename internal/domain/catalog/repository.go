package catalog

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// UpsertProgram is idempotent: two calls with the same name yield the
	// same identity.
	UpsertProgram(ctx context.Context, name string) (*Program, error)

	// UpsertAgreement is idempotent on (name, programID).
	UpsertAgreement(ctx context.Context, name string, programID uuid.UUID) (*Agreement, error)

	// UpsertInstitution is idempotent on (name, municipality, department).
	UpsertInstitution(ctx context.Context, name, locality, municipality, department string) (*Institution, error)

	// UpsertProfessional is keyed by document when present, by name otherwise.
	UpsertProfessional(ctx context.Context, cmd *UpsertProfessionalCommand) (*Professional, error)

	// FindProgramByName resolves an exact name match. Returns ErrProgramNotFound.
	FindProgramByName(ctx context.Context, name string) (*Program, error)

	// FindAgreementByName resolves an agreement within a program. Returns
	// ErrAgreementNotFound when the name does not exist under that program.
	FindAgreementByName(ctx context.Context, name string, programID uuid.UUID) (*Agreement, error)

	// FindInstitutionByName resolves by exact name alone; bulk import files
	// carry only the institution name.
	FindInstitutionByName(ctx context.Context, name string) (*Institution, error)

	FindProfessionalByName(ctx context.Context, name string) (*Professional, error)
	FindProfessionalByDocument(ctx context.Context, document string) (*Professional, error)

	GetProgram(ctx context.Context, id uuid.UUID) (*Program, error)
	GetAgreement(ctx context.Context, id uuid.UUID) (*Agreement, error)
	GetInstitution(ctx context.Context, id uuid.UUID) (*Institution, error)
	GetProfessional(ctx context.Context, id uuid.UUID) (*Professional, error)

	// List operations return active entries ordered by name.
	ListPrograms(ctx context.Context) ([]*Program, error)
	ListAgreements(ctx context.Context, programID *uuid.UUID) ([]*Agreement, error)
	ListInstitutions(ctx context.Context) ([]*Institution, error)
	ListProfessionals(ctx context.Context, programID, agreementID *uuid.UUID) ([]*Professional, error)

	DeactivateProgram(ctx context.Context, id uuid.UUID) error
	DeactivateAgreement(ctx context.Context, id uuid.UUID) error
	DeactivateInstitution(ctx context.Context, id uuid.UUID) error
	DeactivateProfessional(ctx context.Context, id uuid.UUID) error
}

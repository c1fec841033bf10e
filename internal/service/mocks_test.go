package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/vivesalud/productiva/internal/domain"
	"github.com/vivesalud/productiva/internal/domain/catalog"
	"github.com/vivesalud/productiva/internal/domain/encounter"
	"github.com/vivesalud/productiva/internal/domain/patient"
)

var (
	_ catalog.Repository   = (*mockCatalogRepo)(nil)
	_ patient.Repository   = (*mockPatientRepo)(nil)
	_ encounter.Repository = (*mockEncounterRepo)(nil)
	_ AuditRepository      = (*mockAuditRepo)(nil)
)

// mockCatalogRepo is a func-field stub: tests assign only the methods a case
// exercises. Unset finders behave as "not found", unset upserts mint a row.
type mockCatalogRepo struct {
	UpsertProgramFn      func(ctx context.Context, name string) (*catalog.Program, error)
	UpsertAgreementFn    func(ctx context.Context, name string, programID uuid.UUID) (*catalog.Agreement, error)
	UpsertInstitutionFn  func(ctx context.Context, name, locality, municipality, department string) (*catalog.Institution, error)
	UpsertProfessionalFn func(ctx context.Context, cmd *catalog.UpsertProfessionalCommand) (*catalog.Professional, error)

	FindProgramByNameFn          func(ctx context.Context, name string) (*catalog.Program, error)
	FindAgreementByNameFn        func(ctx context.Context, name string, programID uuid.UUID) (*catalog.Agreement, error)
	FindInstitutionByNameFn      func(ctx context.Context, name string) (*catalog.Institution, error)
	FindProfessionalByNameFn     func(ctx context.Context, name string) (*catalog.Professional, error)
	FindProfessionalByDocumentFn func(ctx context.Context, document string) (*catalog.Professional, error)

	GetProgramFn      func(ctx context.Context, id uuid.UUID) (*catalog.Program, error)
	GetAgreementFn    func(ctx context.Context, id uuid.UUID) (*catalog.Agreement, error)
	GetInstitutionFn  func(ctx context.Context, id uuid.UUID) (*catalog.Institution, error)
	GetProfessionalFn func(ctx context.Context, id uuid.UUID) (*catalog.Professional, error)

	ListProgramsFn      func(ctx context.Context) ([]*catalog.Program, error)
	ListAgreementsFn    func(ctx context.Context, programID *uuid.UUID) ([]*catalog.Agreement, error)
	ListInstitutionsFn  func(ctx context.Context) ([]*catalog.Institution, error)
	ListProfessionalsFn func(ctx context.Context, programID, agreementID *uuid.UUID) ([]*catalog.Professional, error)

	DeactivateProgramFn      func(ctx context.Context, id uuid.UUID) error
	DeactivateAgreementFn    func(ctx context.Context, id uuid.UUID) error
	DeactivateInstitutionFn  func(ctx context.Context, id uuid.UUID) error
	DeactivateProfessionalFn func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCatalogRepo) UpsertProgram(ctx context.Context, name string) (*catalog.Program, error) {
	if m.UpsertProgramFn != nil {
		return m.UpsertProgramFn(ctx, name)
	}
	return &catalog.Program{ID: uuid.New(), Name: name, Active: true}, nil
}

func (m *mockCatalogRepo) UpsertAgreement(ctx context.Context, name string, programID uuid.UUID) (*catalog.Agreement, error) {
	if m.UpsertAgreementFn != nil {
		return m.UpsertAgreementFn(ctx, name, programID)
	}
	return &catalog.Agreement{ID: uuid.New(), Name: name, ProgramID: programID, Active: true}, nil
}

func (m *mockCatalogRepo) UpsertInstitution(ctx context.Context, name, locality, municipality, department string) (*catalog.Institution, error) {
	if m.UpsertInstitutionFn != nil {
		return m.UpsertInstitutionFn(ctx, name, locality, municipality, department)
	}
	return &catalog.Institution{
		ID: uuid.New(), Name: name,
		Locality: locality, Municipality: municipality, Department: department,
		Active: true,
	}, nil
}

func (m *mockCatalogRepo) UpsertProfessional(ctx context.Context, cmd *catalog.UpsertProfessionalCommand) (*catalog.Professional, error) {
	if m.UpsertProfessionalFn != nil {
		return m.UpsertProfessionalFn(ctx, cmd)
	}
	return &catalog.Professional{ID: uuid.New(), Name: cmd.Name, Document: cmd.Document, Active: true}, nil
}

func (m *mockCatalogRepo) FindProgramByName(ctx context.Context, name string) (*catalog.Program, error) {
	if m.FindProgramByNameFn != nil {
		return m.FindProgramByNameFn(ctx, name)
	}
	return nil, catalog.ErrProgramNotFound
}

func (m *mockCatalogRepo) FindAgreementByName(ctx context.Context, name string, programID uuid.UUID) (*catalog.Agreement, error) {
	if m.FindAgreementByNameFn != nil {
		return m.FindAgreementByNameFn(ctx, name, programID)
	}
	return nil, catalog.ErrAgreementNotFound
}

func (m *mockCatalogRepo) FindInstitutionByName(ctx context.Context, name string) (*catalog.Institution, error) {
	if m.FindInstitutionByNameFn != nil {
		return m.FindInstitutionByNameFn(ctx, name)
	}
	return nil, catalog.ErrInstitutionNotFound
}

func (m *mockCatalogRepo) FindProfessionalByName(ctx context.Context, name string) (*catalog.Professional, error) {
	if m.FindProfessionalByNameFn != nil {
		return m.FindProfessionalByNameFn(ctx, name)
	}
	return nil, catalog.ErrProfessionalNotFound
}

func (m *mockCatalogRepo) FindProfessionalByDocument(ctx context.Context, document string) (*catalog.Professional, error) {
	if m.FindProfessionalByDocumentFn != nil {
		return m.FindProfessionalByDocumentFn(ctx, document)
	}
	return nil, catalog.ErrProfessionalNotFound
}

func (m *mockCatalogRepo) GetProgram(ctx context.Context, id uuid.UUID) (*catalog.Program, error) {
	if m.GetProgramFn != nil {
		return m.GetProgramFn(ctx, id)
	}
	return nil, catalog.ErrProgramNotFound
}

func (m *mockCatalogRepo) GetAgreement(ctx context.Context, id uuid.UUID) (*catalog.Agreement, error) {
	if m.GetAgreementFn != nil {
		return m.GetAgreementFn(ctx, id)
	}
	return nil, catalog.ErrAgreementNotFound
}

func (m *mockCatalogRepo) GetInstitution(ctx context.Context, id uuid.UUID) (*catalog.Institution, error) {
	if m.GetInstitutionFn != nil {
		return m.GetInstitutionFn(ctx, id)
	}
	return nil, catalog.ErrInstitutionNotFound
}

func (m *mockCatalogRepo) GetProfessional(ctx context.Context, id uuid.UUID) (*catalog.Professional, error) {
	if m.GetProfessionalFn != nil {
		return m.GetProfessionalFn(ctx, id)
	}
	return nil, catalog.ErrProfessionalNotFound
}

func (m *mockCatalogRepo) ListPrograms(ctx context.Context) ([]*catalog.Program, error) {
	if m.ListProgramsFn != nil {
		return m.ListProgramsFn(ctx)
	}
	return nil, nil
}

func (m *mockCatalogRepo) ListAgreements(ctx context.Context, programID *uuid.UUID) ([]*catalog.Agreement, error) {
	if m.ListAgreementsFn != nil {
		return m.ListAgreementsFn(ctx, programID)
	}
	return nil, nil
}

func (m *mockCatalogRepo) ListInstitutions(ctx context.Context) ([]*catalog.Institution, error) {
	if m.ListInstitutionsFn != nil {
		return m.ListInstitutionsFn(ctx)
	}
	return nil, nil
}

func (m *mockCatalogRepo) ListProfessionals(ctx context.Context, programID, agreementID *uuid.UUID) ([]*catalog.Professional, error) {
	if m.ListProfessionalsFn != nil {
		return m.ListProfessionalsFn(ctx, programID, agreementID)
	}
	return nil, nil
}

func (m *mockCatalogRepo) DeactivateProgram(ctx context.Context, id uuid.UUID) error {
	if m.DeactivateProgramFn != nil {
		return m.DeactivateProgramFn(ctx, id)
	}
	return nil
}

func (m *mockCatalogRepo) DeactivateAgreement(ctx context.Context, id uuid.UUID) error {
	if m.DeactivateAgreementFn != nil {
		return m.DeactivateAgreementFn(ctx, id)
	}
	return nil
}

func (m *mockCatalogRepo) DeactivateInstitution(ctx context.Context, id uuid.UUID) error {
	if m.DeactivateInstitutionFn != nil {
		return m.DeactivateInstitutionFn(ctx, id)
	}
	return nil
}

func (m *mockCatalogRepo) DeactivateProfessional(ctx context.Context, id uuid.UUID) error {
	if m.DeactivateProfessionalFn != nil {
		return m.DeactivateProfessionalFn(ctx, id)
	}
	return nil
}

type mockPatientRepo struct {
	mu       sync.Mutex
	upserted []*patient.UpsertPatientCommand

	UpsertFn         func(ctx context.Context, cmd *patient.UpsertPatientCommand) (*patient.Patient, error)
	FindByDocumentFn func(ctx context.Context, document string) (*patient.Patient, error)
	GetByIDFn        func(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
	ListFn           func(ctx context.Context) ([]*patient.Patient, error)
	DeactivateFn     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockPatientRepo) Upsert(ctx context.Context, cmd *patient.UpsertPatientCommand) (*patient.Patient, error) {
	m.mu.Lock()
	m.upserted = append(m.upserted, cmd)
	m.mu.Unlock()

	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, cmd)
	}
	return &patient.Patient{ID: uuid.New(), Document: cmd.Document, Name: cmd.Name, Active: true}, nil
}

func (m *mockPatientRepo) FindByDocument(ctx context.Context, document string) (*patient.Patient, error) {
	if m.FindByDocumentFn != nil {
		return m.FindByDocumentFn(ctx, document)
	}
	return nil, patient.ErrPatientNotFound
}

func (m *mockPatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, patient.ErrPatientNotFound
}

func (m *mockPatientRepo) List(ctx context.Context) ([]*patient.Patient, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *mockPatientRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	if m.DeactivateFn != nil {
		return m.DeactivateFn(ctx, id)
	}
	return nil
}

// mockEncounterRepo records created encounters so tests can assert on what
// crossed the repository boundary.
type mockEncounterRepo struct {
	mu      sync.Mutex
	created []*encounter.Encounter

	CreateFn     func(ctx context.Context, e *encounter.Encounter) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*encounter.Encounter, error)
	UpdateFn     func(ctx context.Context, id uuid.UUID, cmd *encounter.UpdateEncounterCommand) (*encounter.Encounter, error)
	SoftDeleteFn func(ctx context.Context, id uuid.UUID) error
	ListFn       func(ctx context.Context, f *encounter.Filter) ([]*encounter.Encounter, error)
}

func (m *mockEncounterRepo) Create(ctx context.Context, e *encounter.Encounter) error {
	if m.CreateFn != nil {
		if err := m.CreateFn(ctx, e); err != nil {
			return err
		}
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	m.mu.Lock()
	m.created = append(m.created, e)
	m.mu.Unlock()
	return nil
}

func (m *mockEncounterRepo) GetByID(ctx context.Context, id uuid.UUID) (*encounter.Encounter, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, encounter.ErrEncounterNotFound
}

func (m *mockEncounterRepo) Update(ctx context.Context, id uuid.UUID, cmd *encounter.UpdateEncounterCommand) (*encounter.Encounter, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, cmd)
	}
	return nil, encounter.ErrEncounterNotFound
}

func (m *mockEncounterRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if m.SoftDeleteFn != nil {
		return m.SoftDeleteFn(ctx, id)
	}
	return nil
}

func (m *mockEncounterRepo) List(ctx context.Context, f *encounter.Filter) ([]*encounter.Encounter, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, nil
}

func (m *mockEncounterRepo) createdRecords() []*encounter.Encounter {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*encounter.Encounter, len(m.created))
	copy(out, m.created)
	return out
}

type mockAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog

	CreateFn func(ctx context.Context, entry *domain.AuditLog) error
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	m.mu.Lock()
	m.entries = append(m.entries, entry)
	m.mu.Unlock()

	if m.CreateFn != nil {
		return m.CreateFn(ctx, entry)
	}
	return nil
}

func (m *mockAuditRepo) logged() []*domain.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.AuditLog, len(m.entries))
	copy(out, m.entries)
	return out
}

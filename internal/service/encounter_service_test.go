package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vivesalud/productiva/internal/domain"
	"github.com/vivesalud/productiva/internal/domain/catalog"
	"github.com/vivesalud/productiva/internal/domain/encounter"
	"github.com/vivesalud/productiva/pkg/metrics"
)

func newTestAuditService(t *testing.T) *AuditService {
	t.Helper()
	svc := NewAuditService(&mockAuditRepo{}, newTestCollector(), zap.NewNop())
	t.Cleanup(svc.Shutdown)
	return svc
}

func newTestCollector() *metrics.Collector {
	return metrics.NewCollectorWith(prometheus.NewRegistry(), "test")
}

var (
	adminCaller    = Caller{Email: "admin@vivesalud.co", Role: domain.RoleAdmin, IP: "127.0.0.1"}
	profesorCaller = Caller{Email: "ana@vivesalud.co", Role: domain.RoleProfesor, IP: "127.0.0.1"}
)

// resolvedCatalog wires the mock catalog so the given IDs all resolve, with
// the agreement owned by the program.
func resolvedCatalog(programID, agreementID, institutionID, professionalID uuid.UUID) *mockCatalogRepo {
	return &mockCatalogRepo{
		GetProgramFn: func(_ context.Context, id uuid.UUID) (*catalog.Program, error) {
			if id == programID {
				return &catalog.Program{ID: id, Name: "Salud Escolar", Active: true}, nil
			}
			return nil, catalog.ErrProgramNotFound
		},
		GetAgreementFn: func(_ context.Context, id uuid.UUID) (*catalog.Agreement, error) {
			if id == agreementID {
				return &catalog.Agreement{ID: id, Name: "Convenio Norte", ProgramID: programID, Active: true}, nil
			}
			return nil, catalog.ErrAgreementNotFound
		},
		GetInstitutionFn: func(_ context.Context, id uuid.UUID) (*catalog.Institution, error) {
			if id == institutionID {
				return &catalog.Institution{ID: id, Name: "IE La Esperanza", Active: true}, nil
			}
			return nil, catalog.ErrInstitutionNotFound
		},
		GetProfessionalFn: func(_ context.Context, id uuid.UUID) (*catalog.Professional, error) {
			if id == professionalID {
				return &catalog.Professional{ID: id, Name: "Dra. Gomez", Active: true}, nil
			}
			return nil, catalog.ErrProfessionalNotFound
		},
	}
}

func validCreateCommand(programID, agreementID, institutionID, professionalID uuid.UUID) *encounter.CreateEncounterCommand {
	return &encounter.CreateEncounterCommand{
		Date:              time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		ProgramID:         programID,
		AgreementID:       agreementID,
		InstitutionID:     institutionID,
		ProfessionalID:    professionalID,
		Activity:          encounter.ActivityIndividual,
		Attended:          true,
		ScheduledPatients: 1,
		AttendedPatients:  1,
		CreatedBy:         profesorCaller.Email,
	}
}

func TestCreateEncounterValidatesRequiredFields(t *testing.T) {
	svc := NewEncounterService(&mockEncounterRepo{}, &mockCatalogRepo{}, newTestAuditService(t), newTestCollector(), zap.NewNop())

	_, _, err := svc.Create(context.Background(), &encounter.CreateEncounterCommand{}, profesorCaller)

	var validErr *ValidationError
	require.ErrorAs(t, err, &validErr)
	assert.Contains(t, validErr.Fields, "fecha is required")
	assert.Contains(t, validErr.Fields, "programa_id is required")
	assert.Contains(t, validErr.Fields, "actividad is invalid")
}

func TestCreateEncounterRejectsUnknownProgram(t *testing.T) {
	programID, agreementID := uuid.New(), uuid.New()
	institutionID, professionalID := uuid.New(), uuid.New()

	// Empty mock: every Get is a resolution failure.
	svc := NewEncounterService(&mockEncounterRepo{}, &mockCatalogRepo{}, newTestAuditService(t), newTestCollector(), zap.NewNop())

	cmd := validCreateCommand(programID, agreementID, institutionID, professionalID)
	_, _, err := svc.Create(context.Background(), cmd, profesorCaller)

	assert.ErrorIs(t, err, catalog.ErrProgramNotFound)
}

func TestCreateEncounterRejectsAgreementProgramMismatch(t *testing.T) {
	programID, agreementID := uuid.New(), uuid.New()
	institutionID, professionalID := uuid.New(), uuid.New()

	catalogRepo := resolvedCatalog(programID, agreementID, institutionID, professionalID)
	catalogRepo.GetAgreementFn = func(_ context.Context, id uuid.UUID) (*catalog.Agreement, error) {
		return &catalog.Agreement{ID: id, Name: "Convenio Ajeno", ProgramID: uuid.New(), Active: true}, nil
	}

	svc := NewEncounterService(&mockEncounterRepo{}, catalogRepo, newTestAuditService(t), newTestCollector(), zap.NewNop())

	cmd := validCreateCommand(programID, agreementID, institutionID, professionalID)
	_, _, err := svc.Create(context.Background(), cmd, profesorCaller)

	assert.ErrorIs(t, err, catalog.ErrAgreementProgramMismatch)
}

func TestCreateEncounterSuccess(t *testing.T) {
	programID, agreementID := uuid.New(), uuid.New()
	institutionID, professionalID := uuid.New(), uuid.New()

	repo := &mockEncounterRepo{}
	svc := NewEncounterService(repo, resolvedCatalog(programID, agreementID, institutionID, professionalID),
		newTestAuditService(t), newTestCollector(), zap.NewNop())

	cmd := validCreateCommand(programID, agreementID, institutionID, professionalID)
	e, warnings, err := svc.Create(context.Background(), cmd, profesorCaller)

	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.NotEqual(t, uuid.Nil, e.ID)
	// Blank contact type falls back to the in-person default.
	assert.Equal(t, encounter.ContactInPerson, e.ContactType)
	assert.Equal(t, profesorCaller.Email, e.CreatedBy)
	require.Len(t, repo.createdRecords(), 1)
}

func TestCreateEncounterWarnsWhenAttendedExceedsScheduled(t *testing.T) {
	programID, agreementID := uuid.New(), uuid.New()
	institutionID, professionalID := uuid.New(), uuid.New()

	repo := &mockEncounterRepo{}
	svc := NewEncounterService(repo, resolvedCatalog(programID, agreementID, institutionID, professionalID),
		newTestAuditService(t), newTestCollector(), zap.NewNop())

	cmd := validCreateCommand(programID, agreementID, institutionID, professionalID)
	cmd.ScheduledPatients = 2
	cmd.AttendedPatients = 5

	e, warnings, err := svc.Create(context.Background(), cmd, profesorCaller)

	// Soft validation: the record is stored anyway.
	require.NoError(t, err)
	assert.Contains(t, warnings, WarnAttendedOverScheduled)
	assert.Equal(t, 5, e.AttendedPatients)
	require.Len(t, repo.createdRecords(), 1)
}

func TestCreateEncounterRejectsInvalidDuration(t *testing.T) {
	programID, agreementID := uuid.New(), uuid.New()
	institutionID, professionalID := uuid.New(), uuid.New()

	svc := NewEncounterService(&mockEncounterRepo{}, resolvedCatalog(programID, agreementID, institutionID, professionalID),
		newTestAuditService(t), newTestCollector(), zap.NewNop())

	zero := 0
	cmd := validCreateCommand(programID, agreementID, institutionID, professionalID)
	cmd.DurationMins = &zero

	_, _, err := svc.Create(context.Background(), cmd, profesorCaller)

	var validErr *ValidationError
	require.ErrorAs(t, err, &validErr)
	assert.Contains(t, validErr.Fields, "duracion_minutos must be positive")
}

func TestGetEnforcesOwnership(t *testing.T) {
	id := uuid.New()
	repo := &mockEncounterRepo{
		GetByIDFn: func(_ context.Context, _ uuid.UUID) (*encounter.Encounter, error) {
			return &encounter.Encounter{ID: id, CreatedBy: "otra@vivesalud.co"}, nil
		},
	}
	svc := NewEncounterService(repo, &mockCatalogRepo{}, newTestAuditService(t), newTestCollector(), zap.NewNop())

	_, err := svc.Get(context.Background(), id, profesorCaller)
	assert.ErrorIs(t, err, ErrForbidden)

	e, err := svc.Get(context.Background(), id, adminCaller)
	require.NoError(t, err)
	assert.Equal(t, id, e.ID)
}

func TestUpdateRejectsForeignRecordForProfesor(t *testing.T) {
	id := uuid.New()
	repo := &mockEncounterRepo{
		GetByIDFn: func(_ context.Context, _ uuid.UUID) (*encounter.Encounter, error) {
			return &encounter.Encounter{ID: id, CreatedBy: "otra@vivesalud.co"}, nil
		},
	}
	svc := NewEncounterService(repo, &mockCatalogRepo{}, newTestAuditService(t), newTestCollector(), zap.NewNop())

	_, _, err := svc.Update(context.Background(), id, &encounter.UpdateEncounterCommand{}, profesorCaller)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateWarnsOnResultingOverAttendance(t *testing.T) {
	id := uuid.New()
	repo := &mockEncounterRepo{
		GetByIDFn: func(_ context.Context, _ uuid.UUID) (*encounter.Encounter, error) {
			return &encounter.Encounter{ID: id, CreatedBy: profesorCaller.Email, ScheduledPatients: 3, AttendedPatients: 2}, nil
		},
		UpdateFn: func(_ context.Context, _ uuid.UUID, _ *encounter.UpdateEncounterCommand) (*encounter.Encounter, error) {
			return &encounter.Encounter{ID: id, CreatedBy: profesorCaller.Email, ScheduledPatients: 3, AttendedPatients: 7}, nil
		},
	}
	svc := NewEncounterService(repo, &mockCatalogRepo{}, newTestAuditService(t), newTestCollector(), zap.NewNop())

	seven := 7
	_, warnings, err := svc.Update(context.Background(), id, &encounter.UpdateEncounterCommand{AttendedPatients: &seven}, profesorCaller)

	require.NoError(t, err)
	assert.Contains(t, warnings, WarnAttendedOverScheduled)
}

func TestDeleteIsAdminOnly(t *testing.T) {
	svc := NewEncounterService(&mockEncounterRepo{}, &mockCatalogRepo{}, newTestAuditService(t), newTestCollector(), zap.NewNop())

	err := svc.Delete(context.Background(), uuid.New(), profesorCaller)
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.Delete(context.Background(), uuid.New(), adminCaller)
	assert.NoError(t, err)
}

func TestListScopesProfesorToOwnRecords(t *testing.T) {
	var captured *encounter.Filter
	repo := &mockEncounterRepo{
		ListFn: func(_ context.Context, f *encounter.Filter) ([]*encounter.Encounter, error) {
			captured = f
			return nil, nil
		},
	}
	svc := NewEncounterService(repo, &mockCatalogRepo{}, newTestAuditService(t), newTestCollector(), zap.NewNop())

	_, err := svc.List(context.Background(), &encounter.Filter{}, profesorCaller)
	require.NoError(t, err)
	assert.Equal(t, profesorCaller.Email, captured.CreatedBy)

	_, err = svc.List(context.Background(), &encounter.Filter{}, adminCaller)
	require.NoError(t, err)
	assert.Empty(t, captured.CreatedBy)
}

package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vivesalud/productiva/internal/domain/catalog"
	"github.com/vivesalud/productiva/internal/domain/encounter"
	"github.com/vivesalud/productiva/pkg/metrics"
)

// WarnAttendedOverScheduled is the soft validation raised when a record
// reports more attended than scheduled patients. The record is stored
// anyway; the caller decides what to show.
const WarnAttendedOverScheduled = "pacientes_atendidos exceeds pacientes_programados"

type EncounterService struct {
	repo        encounter.Repository
	catalogRepo catalog.Repository
	auditSvc    *AuditService
	collector   *metrics.Collector
	log         *zap.Logger
}

func NewEncounterService(
	repo encounter.Repository,
	catalogRepo catalog.Repository,
	auditSvc *AuditService,
	collector *metrics.Collector,
	log *zap.Logger,
) *EncounterService {
	return &EncounterService{
		repo:        repo,
		catalogRepo: catalogRepo,
		auditSvc:    auditSvc,
		collector:   collector,
		log:         log,
	}
}

// Create validates and stores one encounter record from a form submission.
// The first blocking error aborts with no partial write. The returned
// warnings are non-fatal soft validations.
func (s *EncounterService) Create(ctx context.Context, cmd *encounter.CreateEncounterCommand, caller Caller) (*encounter.Encounter, []string, error) {
	if err := validateEncounterCommand(cmd); err != nil {
		return nil, nil, err
	}

	// Referential integrity at write time: every catalog reference must
	// resolve, and the agreement must belong to the given program.
	if _, err := s.catalogRepo.GetProgram(ctx, cmd.ProgramID); err != nil {
		return nil, nil, err
	}
	agreement, err := s.catalogRepo.GetAgreement(ctx, cmd.AgreementID)
	if err != nil {
		return nil, nil, err
	}
	if agreement.ProgramID != cmd.ProgramID {
		return nil, nil, catalog.ErrAgreementProgramMismatch
	}
	if _, err := s.catalogRepo.GetInstitution(ctx, cmd.InstitutionID); err != nil {
		return nil, nil, err
	}
	if _, err := s.catalogRepo.GetProfessional(ctx, cmd.ProfessionalID); err != nil {
		return nil, nil, err
	}

	var warnings []string
	if cmd.AttendedPatients > cmd.ScheduledPatients {
		warnings = append(warnings, WarnAttendedOverScheduled)
		s.log.Warn("attended count exceeds scheduled count",
			zap.Int("programados", cmd.ScheduledPatients),
			zap.Int("atendidos", cmd.AttendedPatients),
		)
	}

	e := &encounter.Encounter{
		Date:               cmd.Date,
		ProgramID:          cmd.ProgramID,
		AgreementID:        cmd.AgreementID,
		InstitutionID:      cmd.InstitutionID,
		ProfessionalID:     cmd.ProfessionalID,
		PatientID:          cmd.PatientID,
		Locality:           cmd.Locality,
		Municipality:       cmd.Municipality,
		Department:         cmd.Department,
		PatientNumber:      cmd.PatientNumber,
		PatientName:        cmd.PatientName,
		Activity:           cmd.Activity,
		Attended:           cmd.Attended,
		RegisteredExternal: cmd.RegisteredExternal,
		DurationMins:       cmd.DurationMins,
		ContactType:        cmd.ContactType,
		ScheduledPatients:  cmd.ScheduledPatients,
		AttendedPatients:   cmd.AttendedPatients,
		Observations:       cmd.Observations,
		CreatedBy:          cmd.CreatedBy,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		s.log.Error("failed to create encounter record", zap.Error(err))
		return nil, nil, fmt.Errorf("creating encounter record: %w", err)
	}

	s.collector.EncountersCreatedTotal.Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserEmail: caller.Email, UserRole: string(caller.Role),
		Action: "create", ResourceType: "registro", ResourceID: e.ID.String(), IPAddress: caller.IP,
	})

	s.log.Info("encounter record created",
		zap.String("registro_id", e.ID.String()),
		zap.String("creado_por", caller.Email),
	)

	return e, warnings, nil
}

func (s *EncounterService) Get(ctx context.Context, id uuid.UUID, caller Caller) (*encounter.Encounter, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && e.CreatedBy != caller.Email {
		return nil, ErrForbidden
	}
	return e, nil
}

// Update applies partial changes and refreshes actualizado_en. Non-admins
// may only touch their own records.
func (s *EncounterService) Update(ctx context.Context, id uuid.UUID, cmd *encounter.UpdateEncounterCommand, caller Caller) (*encounter.Encounter, []string, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !caller.IsAdmin() && existing.CreatedBy != caller.Email {
		return nil, nil, ErrForbidden
	}

	if cmd.ContactType != nil && !cmd.ContactType.IsValid() {
		return nil, nil, encounter.ErrInvalidContactType
	}
	if cmd.DurationMins != nil && *cmd.DurationMins <= 0 {
		return nil, nil, encounter.ErrInvalidDuration
	}
	if (cmd.ScheduledPatients != nil && *cmd.ScheduledPatients < 0) ||
		(cmd.AttendedPatients != nil && *cmd.AttendedPatients < 0) {
		return nil, nil, encounter.ErrNegativeCounts
	}

	scheduled := existing.ScheduledPatients
	attended := existing.AttendedPatients
	if cmd.ScheduledPatients != nil {
		scheduled = *cmd.ScheduledPatients
	}
	if cmd.AttendedPatients != nil {
		attended = *cmd.AttendedPatients
	}
	var warnings []string
	if attended > scheduled {
		warnings = append(warnings, WarnAttendedOverScheduled)
	}

	updated, err := s.repo.Update(ctx, id, cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("updating encounter record: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserEmail: caller.Email, UserRole: string(caller.Role),
		Action: "update", ResourceType: "registro", ResourceID: id.String(), IPAddress: caller.IP,
	})

	return updated, warnings, nil
}

// Delete soft-deletes a record. Admin only; records never leave storage.
func (s *EncounterService) Delete(ctx context.Context, id uuid.UUID, caller Caller) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserEmail: caller.Email, UserRole: string(caller.Role),
		Action: "delete", ResourceType: "registro", ResourceID: id.String(), IPAddress: caller.IP,
	})
	return nil
}

// List returns the filtered records. Visibility policy: admins see
// everything, profesores only the records they created.
func (s *EncounterService) List(ctx context.Context, f *encounter.Filter, caller Caller) ([]*encounter.Encounter, error) {
	if f == nil {
		f = &encounter.Filter{}
	}
	if !caller.IsAdmin() {
		f.CreatedBy = caller.Email
	}
	return s.repo.List(ctx, f)
}

func validateEncounterCommand(cmd *encounter.CreateEncounterCommand) error {
	var fields []string

	if cmd.Date.IsZero() {
		fields = append(fields, "fecha is required")
	}
	if cmd.ProgramID == uuid.Nil {
		fields = append(fields, "programa_id is required")
	}
	if cmd.AgreementID == uuid.Nil {
		fields = append(fields, "convenio_id is required")
	}
	if cmd.InstitutionID == uuid.Nil {
		fields = append(fields, "institucion_id is required")
	}
	if cmd.ProfessionalID == uuid.Nil {
		fields = append(fields, "profesional_id is required")
	}
	if !cmd.Activity.IsValid() {
		fields = append(fields, "actividad is invalid")
	}
	if cmd.ContactType == "" {
		cmd.ContactType = encounter.ContactInPerson
	} else if !cmd.ContactType.IsValid() {
		fields = append(fields, "tipo_contacto is invalid")
	}
	if cmd.ScheduledPatients < 0 || cmd.AttendedPatients < 0 {
		fields = append(fields, "patient counts cannot be negative")
	}
	if cmd.DurationMins != nil && *cmd.DurationMins <= 0 {
		fields = append(fields, "duracion_minutos must be positive")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

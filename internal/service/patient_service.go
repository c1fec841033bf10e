package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vivesalud/productiva/internal/domain/patient"
)

type PatientService struct {
	repo     patient.Repository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewPatientService(repo patient.Repository, auditSvc *AuditService, log *zap.Logger) *PatientService {
	return &PatientService{repo: repo, auditSvc: auditSvc, log: log}
}

// Upsert creates or updates a patient keyed by document. Calling it twice
// with the same document updates the one existing row.
func (s *PatientService) Upsert(ctx context.Context, cmd *patient.UpsertPatientCommand, caller Caller) (*patient.Patient, error) {
	cmd.Normalize()

	var fields []string
	if cmd.Document == "" {
		fields = append(fields, "documento is required")
	}
	if cmd.Name == "" {
		fields = append(fields, "nombre is required")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	p, err := s.repo.Upsert(ctx, cmd)
	if err != nil {
		s.log.Error("failed to upsert patient", zap.Error(err))
		return nil, fmt.Errorf("upserting patient: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserEmail: caller.Email, UserRole: string(caller.Role),
		Action: "create", ResourceType: "paciente", ResourceID: p.ID.String(), IPAddress: caller.IP,
	})

	return p, nil
}

// FindByDocument backs the autocomplete on the individual encounter form.
// Exact match only.
func (s *PatientService) FindByDocument(ctx context.Context, document string) (*patient.Patient, error) {
	if document == "" {
		return nil, &ValidationError{Fields: []string{"documento is required"}}
	}
	return s.repo.FindByDocument(ctx, document)
}

func (s *PatientService) List(ctx context.Context) ([]*patient.Patient, error) {
	return s.repo.List(ctx)
}

func (s *PatientService) Deactivate(ctx context.Context, id uuid.UUID, caller Caller) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserEmail: caller.Email, UserRole: string(caller.Role),
		Action: "delete", ResourceType: "paciente", ResourceID: id.String(), IPAddress: caller.IP,
	})
	return nil
}

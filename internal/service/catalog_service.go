package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vivesalud/productiva/internal/domain/catalog"
)

// CatalogService manages the reference catalogs behind encounter records.
// Entries are upserted (never duplicated) and soft-deactivated (never
// hard-deleted) so historical records keep resolving.
type CatalogService struct {
	repo     catalog.Repository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewCatalogService(repo catalog.Repository, auditSvc *AuditService, log *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, auditSvc: auditSvc, log: log}
}

func (s *CatalogService) UpsertProgram(ctx context.Context, name string, caller Caller) (*catalog.Program, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Fields: []string{"nombre is required"}}
	}

	p, err := s.repo.UpsertProgram(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("upserting program: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserEmail: caller.Email, UserRole: string(caller.Role),
		Action: "create", ResourceType: "programa", ResourceID: p.ID.String(), IPAddress: caller.IP,
	})
	return p, nil
}

// UpsertAgreement resolves the owning program by name, creating it when
// absent; an agreement always hangs off exactly one program.
func (s *CatalogService) UpsertAgreement(ctx context.Context, name, programName string, caller Caller) (*catalog.Agreement, error) {
	var fields []string
	if strings.TrimSpace(name) == "" {
		fields = append(fields, "nombre is required")
	}
	if strings.TrimSpace(programName) == "" {
		fields = append(fields, "programa is required")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	p, err := s.repo.UpsertProgram(ctx, programName)
	if err != nil {
		return nil, fmt.Errorf("resolving program: %w", err)
	}

	a, err := s.repo.UpsertAgreement(ctx, name, p.ID)
	if err != nil {
		return nil, fmt.Errorf("upserting agreement: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserEmail: caller.Email, UserRole: string(caller.Role),
		Action: "create", ResourceType: "convenio", ResourceID: a.ID.String(), IPAddress: caller.IP,
	})
	return a, nil
}

func (s *CatalogService) UpsertInstitution(ctx context.Context, name, locality, municipality, department string, caller Caller) (*catalog.Institution, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Fields: []string{"nombre is required"}}
	}

	i, err := s.repo.UpsertInstitution(ctx, name, locality, municipality, department)
	if err != nil {
		return nil, fmt.Errorf("upserting institution: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserEmail: caller.Email, UserRole: string(caller.Role),
		Action: "create", ResourceType: "institucion", ResourceID: i.ID.String(), IPAddress: caller.IP,
	})
	return i, nil
}

func (s *CatalogService) UpsertProfessional(ctx context.Context, cmd *catalog.UpsertProfessionalCommand, caller Caller) (*catalog.Professional, error) {
	cmd.Normalize()
	if cmd.Name == "" {
		return nil, &ValidationError{Fields: []string{"nombre is required"}}
	}

	p, err := s.repo.UpsertProfessional(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("upserting professional: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserEmail: caller.Email, UserRole: string(caller.Role),
		Action: "create", ResourceType: "profesional", ResourceID: p.ID.String(), IPAddress: caller.IP,
	})
	return p, nil
}

func (s *CatalogService) ListPrograms(ctx context.Context) ([]*catalog.Program, error) {
	return s.repo.ListPrograms(ctx)
}

func (s *CatalogService) ListAgreements(ctx context.Context, programID *uuid.UUID) ([]*catalog.Agreement, error) {
	return s.repo.ListAgreements(ctx, programID)
}

func (s *CatalogService) ListInstitutions(ctx context.Context) ([]*catalog.Institution, error) {
	return s.repo.ListInstitutions(ctx)
}

func (s *CatalogService) ListProfessionals(ctx context.Context, programID, agreementID *uuid.UUID) ([]*catalog.Professional, error) {
	return s.repo.ListProfessionals(ctx, programID, agreementID)
}

func (s *CatalogService) DeactivateProgram(ctx context.Context, id uuid.UUID, caller Caller) error {
	if err := s.repo.DeactivateProgram(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, caller, "programa", id)
	return nil
}

func (s *CatalogService) DeactivateAgreement(ctx context.Context, id uuid.UUID, caller Caller) error {
	if err := s.repo.DeactivateAgreement(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, caller, "convenio", id)
	return nil
}

func (s *CatalogService) DeactivateInstitution(ctx context.Context, id uuid.UUID, caller Caller) error {
	if err := s.repo.DeactivateInstitution(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, caller, "institucion", id)
	return nil
}

func (s *CatalogService) DeactivateProfessional(ctx context.Context, id uuid.UUID, caller Caller) error {
	if err := s.repo.DeactivateProfessional(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, caller, "profesional", id)
	return nil
}

func (s *CatalogService) audit(ctx context.Context, caller Caller, resource string, id uuid.UUID) {
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserEmail: caller.Email, UserRole: string(caller.Role),
		Action: "delete", ResourceType: resource, ResourceID: id.String(), IPAddress: caller.IP,
	})
}

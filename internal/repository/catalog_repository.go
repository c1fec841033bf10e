package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vivesalud/productiva/internal/domain/catalog"
)

type CatalogRepository struct {
	db *gorm.DB
}

var _ catalog.Repository = (*CatalogRepository)(nil)

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) UpsertProgram(ctx context.Context, name string) (*catalog.Program, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, catalog.ErrNameRequired
	}

	var p catalog.Program
	err := r.db.WithContext(ctx).Where("nombre = ?", name).First(&p).Error
	switch {
	case err == nil:
		return &p, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		p = catalog.Program{ID: uuid.New(), Name: name, Active: true}
		if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
			return nil, wrapWriteErr("creating program", err)
		}
		return &p, nil
	default:
		return nil, fmt.Errorf("looking up program: %w", err)
	}
}

func (r *CatalogRepository) UpsertAgreement(ctx context.Context, name string, programID uuid.UUID) (*catalog.Agreement, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, catalog.ErrNameRequired
	}

	var a catalog.Agreement
	err := r.db.WithContext(ctx).
		Where("nombre = ? AND programa_id = ?", name, programID).
		First(&a).Error
	switch {
	case err == nil:
		return &a, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		a = catalog.Agreement{ID: uuid.New(), Name: name, ProgramID: programID, Active: true}
		if err := r.db.WithContext(ctx).Create(&a).Error; err != nil {
			return nil, wrapWriteErr("creating agreement", err)
		}
		return &a, nil
	default:
		return nil, fmt.Errorf("looking up agreement: %w", err)
	}
}

func (r *CatalogRepository) UpsertInstitution(ctx context.Context, name, locality, municipality, department string) (*catalog.Institution, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, catalog.ErrNameRequired
	}
	municipality = strings.TrimSpace(municipality)
	department = strings.TrimSpace(department)

	var i catalog.Institution
	err := r.db.WithContext(ctx).
		Where("nombre = ? AND municipio = ? AND departamento = ?", name, municipality, department).
		First(&i).Error
	switch {
	case err == nil:
		return &i, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		i = catalog.Institution{
			ID:           uuid.New(),
			Name:         name,
			Locality:     strings.TrimSpace(locality),
			Municipality: municipality,
			Department:   department,
			Active:       true,
		}
		if err := r.db.WithContext(ctx).Create(&i).Error; err != nil {
			return nil, wrapWriteErr("creating institution", err)
		}
		return &i, nil
	default:
		return nil, fmt.Errorf("looking up institution: %w", err)
	}
}

func (r *CatalogRepository) UpsertProfessional(ctx context.Context, cmd *catalog.UpsertProfessionalCommand) (*catalog.Professional, error) {
	cmd.Normalize()
	if cmd.Name == "" {
		return nil, catalog.ErrNameRequired
	}

	var existing catalog.Professional
	var err error
	if cmd.Document != "" {
		err = r.db.WithContext(ctx).Where("documento = ?", cmd.Document).First(&existing).Error
	} else {
		err = r.db.WithContext(ctx).Where("nombre = ? AND (documento IS NULL OR documento = '')", cmd.Name).First(&existing).Error
	}

	switch {
	case err == nil:
		// Re-import refreshes the non-key fields.
		existing.Name = cmd.Name
		if cmd.Email != "" {
			existing.Email = cmd.Email
		}
		if cmd.ProgramID != nil {
			existing.ProgramID = cmd.ProgramID
		}
		if cmd.AgreementID != nil {
			existing.AgreementID = cmd.AgreementID
		}
		if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, wrapWriteErr("updating professional", err)
		}
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		p := catalog.Professional{
			ID:          uuid.New(),
			Name:        cmd.Name,
			Document:    cmd.Document,
			Email:       cmd.Email,
			ProgramID:   cmd.ProgramID,
			AgreementID: cmd.AgreementID,
			Active:      true,
		}
		if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
			return nil, wrapWriteErr("creating professional", err)
		}
		return &p, nil
	default:
		return nil, fmt.Errorf("looking up professional: %w", err)
	}
}

func (r *CatalogRepository) FindProgramByName(ctx context.Context, name string) (*catalog.Program, error) {
	var p catalog.Program
	err := r.db.WithContext(ctx).Where("nombre = ?", strings.TrimSpace(name)).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalog.ErrProgramNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepository) FindAgreementByName(ctx context.Context, name string, programID uuid.UUID) (*catalog.Agreement, error) {
	var a catalog.Agreement
	err := r.db.WithContext(ctx).
		Where("nombre = ? AND programa_id = ?", strings.TrimSpace(name), programID).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalog.ErrAgreementNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *CatalogRepository) FindInstitutionByName(ctx context.Context, name string) (*catalog.Institution, error) {
	var i catalog.Institution
	err := r.db.WithContext(ctx).
		Where("nombre = ?", strings.TrimSpace(name)).
		Order("departamento, municipio").
		First(&i).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalog.ErrInstitutionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *CatalogRepository) FindProfessionalByName(ctx context.Context, name string) (*catalog.Professional, error) {
	var p catalog.Professional
	err := r.db.WithContext(ctx).Where("nombre = ?", strings.TrimSpace(name)).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalog.ErrProfessionalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepository) FindProfessionalByDocument(ctx context.Context, document string) (*catalog.Professional, error) {
	var p catalog.Professional
	err := r.db.WithContext(ctx).Where("documento = ?", strings.TrimSpace(document)).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalog.ErrProfessionalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepository) GetProgram(ctx context.Context, id uuid.UUID) (*catalog.Program, error) {
	var p catalog.Program
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalog.ErrProgramNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepository) GetAgreement(ctx context.Context, id uuid.UUID) (*catalog.Agreement, error) {
	var a catalog.Agreement
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalog.ErrAgreementNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *CatalogRepository) GetInstitution(ctx context.Context, id uuid.UUID) (*catalog.Institution, error) {
	var i catalog.Institution
	err := r.db.WithContext(ctx).First(&i, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalog.ErrInstitutionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *CatalogRepository) GetProfessional(ctx context.Context, id uuid.UUID) (*catalog.Professional, error) {
	var p catalog.Professional
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalog.ErrProfessionalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepository) ListPrograms(ctx context.Context) ([]*catalog.Program, error) {
	var out []*catalog.Program
	err := r.db.WithContext(ctx).Where("activo = ?", true).Order("nombre").Find(&out).Error
	return out, err
}

func (r *CatalogRepository) ListAgreements(ctx context.Context, programID *uuid.UUID) ([]*catalog.Agreement, error) {
	q := r.db.WithContext(ctx).Where("activo = ?", true)
	if programID != nil {
		q = q.Where("programa_id = ?", *programID)
	}
	var out []*catalog.Agreement
	err := q.Order("nombre").Find(&out).Error
	return out, err
}

func (r *CatalogRepository) ListInstitutions(ctx context.Context) ([]*catalog.Institution, error) {
	var out []*catalog.Institution
	err := r.db.WithContext(ctx).
		Where("activo = ?", true).
		Order("departamento, municipio, nombre").
		Find(&out).Error
	return out, err
}

func (r *CatalogRepository) ListProfessionals(ctx context.Context, programID, agreementID *uuid.UUID) ([]*catalog.Professional, error) {
	q := r.db.WithContext(ctx).Where("activo = ?", true)
	if programID != nil {
		q = q.Where("programa_id = ?", *programID)
	}
	if agreementID != nil {
		q = q.Where("convenio_id = ?", *agreementID)
	}
	var out []*catalog.Professional
	err := q.Order("nombre").Find(&out).Error
	return out, err
}

func (r *CatalogRepository) DeactivateProgram(ctx context.Context, id uuid.UUID) error {
	return r.deactivate(ctx, &catalog.Program{}, id, catalog.ErrProgramNotFound)
}

func (r *CatalogRepository) DeactivateAgreement(ctx context.Context, id uuid.UUID) error {
	return r.deactivate(ctx, &catalog.Agreement{}, id, catalog.ErrAgreementNotFound)
}

func (r *CatalogRepository) DeactivateInstitution(ctx context.Context, id uuid.UUID) error {
	return r.deactivate(ctx, &catalog.Institution{}, id, catalog.ErrInstitutionNotFound)
}

func (r *CatalogRepository) DeactivateProfessional(ctx context.Context, id uuid.UUID) error {
	return r.deactivate(ctx, &catalog.Professional{}, id, catalog.ErrProfessionalNotFound)
}

func (r *CatalogRepository) deactivate(ctx context.Context, model any, id uuid.UUID, notFound error) error {
	res := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Update("activo", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vivesalud/productiva/internal/domain/patient"
)

type PatientRepository struct {
	db *gorm.DB
}

var _ patient.Repository = (*PatientRepository)(nil)

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) Upsert(ctx context.Context, cmd *patient.UpsertPatientCommand) (*patient.Patient, error) {
	cmd.Normalize()
	if cmd.Document == "" {
		return nil, patient.ErrDocumentRequired
	}
	if cmd.Name == "" {
		return nil, patient.ErrNameRequired
	}

	var p patient.Patient
	err := r.db.WithContext(ctx).Where("documento = ?", cmd.Document).First(&p).Error
	switch {
	case err == nil:
		apply(&p, cmd)
		if err := r.db.WithContext(ctx).Save(&p).Error; err != nil {
			return nil, wrapWriteErr("updating patient", err)
		}
		return &p, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		p = patient.Patient{ID: uuid.New(), Document: cmd.Document, Active: true}
		apply(&p, cmd)
		if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
			return nil, wrapWriteErr("creating patient", err)
		}
		return &p, nil
	default:
		return nil, fmt.Errorf("looking up patient: %w", err)
	}
}

func apply(p *patient.Patient, cmd *patient.UpsertPatientCommand) {
	p.Name = cmd.Name
	p.BirthDate = cmd.BirthDate
	p.Sex = cmd.Sex
	p.Phone = cmd.Phone
	p.Email = cmd.Email
	p.Address = cmd.Address
	p.Locality = cmd.Locality
	p.Municipality = cmd.Municipality
	p.Department = cmd.Department
}

func (r *PatientRepository) FindByDocument(ctx context.Context, document string) (*patient.Patient, error) {
	var p patient.Patient
	err := r.db.WithContext(ctx).Where("documento = ?", document).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, patient.ErrPatientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	var p patient.Patient
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, patient.ErrPatientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PatientRepository) List(ctx context.Context) ([]*patient.Patient, error) {
	var out []*patient.Patient
	err := r.db.WithContext(ctx).Where("activo = ?", true).Order("nombre").Find(&out).Error
	return out, err
}

func (r *PatientRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&patient.Patient{}).Where("id = ?", id).Update("activo", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return patient.ErrPatientNotFound
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vivesalud/productiva/internal/domain/catalog"
	"github.com/vivesalud/productiva/internal/domain/encounter"
)

type EncounterRepository struct {
	db *gorm.DB
}

var _ encounter.Repository = (*EncounterRepository)(nil)

func NewEncounterRepository(db *gorm.DB) *EncounterRepository {
	return &EncounterRepository{db: db}
}

func (r *EncounterRepository) Create(ctx context.Context, e *encounter.Encounter) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return wrapWriteErr("creating encounter record", err)
	}
	e.Derive()
	return nil
}

func (r *EncounterRepository) GetByID(ctx context.Context, id uuid.UUID) (*encounter.Encounter, error) {
	var e encounter.Encounter
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, encounter.ErrEncounterNotFound
	}
	if err != nil {
		return nil, err
	}
	e.Derive()
	return &e, nil
}

func (r *EncounterRepository) Update(ctx context.Context, id uuid.UUID, cmd *encounter.UpdateEncounterCommand) (*encounter.Encounter, error) {
	updates := map[string]any{}
	if cmd.Date != nil {
		updates["fecha"] = *cmd.Date
	}
	if cmd.Attended != nil {
		updates["atendido"] = *cmd.Attended
	}
	if cmd.RegisteredExternal != nil {
		updates["registrado_panacea"] = *cmd.RegisteredExternal
	}
	if cmd.DurationMins != nil {
		updates["duracion_minutos"] = *cmd.DurationMins
	}
	if cmd.ContactType != nil {
		updates["tipo_contacto"] = *cmd.ContactType
	}
	if cmd.ScheduledPatients != nil {
		updates["pacientes_programados"] = *cmd.ScheduledPatients
	}
	if cmd.AttendedPatients != nil {
		updates["pacientes_atendidos"] = *cmd.AttendedPatients
	}
	if cmd.Observations != nil {
		updates["observaciones"] = *cmd.Observations
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now().UTC()
		res := r.db.WithContext(ctx).
			Model(&encounter.Encounter{}).
			Where("id = ? AND deleted_at IS NULL", id).
			Updates(updates)
		if res.Error != nil {
			return nil, wrapWriteErr("updating encounter record", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, encounter.ErrEncounterNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *EncounterRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&encounter.Encounter{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", time.Now().UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return encounter.ErrEncounterNotFound
	}
	return nil
}

func (r *EncounterRepository) List(ctx context.Context, f *encounter.Filter) ([]*encounter.Encounter, error) {
	q := r.db.WithContext(ctx).Where("deleted_at IS NULL")

	if f != nil {
		if f.From != nil {
			q = q.Where("fecha >= ?", *f.From)
		}
		if f.To != nil {
			q = q.Where("fecha <= ?", *f.To)
		}
		if f.ProgramID != nil {
			q = q.Where("programa_id = ?", *f.ProgramID)
		}
		if f.AgreementID != nil {
			q = q.Where("convenio_id = ?", *f.AgreementID)
		}
		if f.InstitutionID != nil {
			q = q.Where("institucion_id = ?", *f.InstitutionID)
		}
		if f.ProfessionalID != nil {
			q = q.Where("profesional_id = ?", *f.ProfessionalID)
		}
		if f.Activity != nil {
			q = q.Where("actividad = ?", *f.Activity)
		}
		if f.Department != "" {
			q = q.Where("departamento = ?", f.Department)
		}
		if f.Municipality != "" {
			q = q.Where("municipio = ?", f.Municipality)
		}
		if f.CreatedBy != "" {
			q = q.Where("creado_por = ?", f.CreatedBy)
		}
	}

	var records []*encounter.Encounter
	if err := q.Order("fecha DESC, created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("listing encounter records: %w", err)
	}

	if err := r.resolveNames(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// resolveNames fills the display-name fields from the catalogs in one batch
// per table instead of a join, keeping the query portable across drivers.
func (r *EncounterRepository) resolveNames(ctx context.Context, records []*encounter.Encounter) error {
	if len(records) == 0 {
		return nil
	}

	programIDs := make(map[uuid.UUID]struct{})
	agreementIDs := make(map[uuid.UUID]struct{})
	institutionIDs := make(map[uuid.UUID]struct{})
	professionalIDs := make(map[uuid.UUID]struct{})
	for _, rec := range records {
		programIDs[rec.ProgramID] = struct{}{}
		agreementIDs[rec.AgreementID] = struct{}{}
		institutionIDs[rec.InstitutionID] = struct{}{}
		professionalIDs[rec.ProfessionalID] = struct{}{}
	}

	programs, err := r.nameMap(ctx, &catalog.Program{}, keys(programIDs))
	if err != nil {
		return fmt.Errorf("resolving program names: %w", err)
	}
	agreements, err := r.nameMap(ctx, &catalog.Agreement{}, keys(agreementIDs))
	if err != nil {
		return fmt.Errorf("resolving agreement names: %w", err)
	}
	institutions, err := r.nameMap(ctx, &catalog.Institution{}, keys(institutionIDs))
	if err != nil {
		return fmt.Errorf("resolving institution names: %w", err)
	}
	professionals, err := r.nameMap(ctx, &catalog.Professional{}, keys(professionalIDs))
	if err != nil {
		return fmt.Errorf("resolving professional names: %w", err)
	}

	for _, rec := range records {
		rec.ProgramName = programs[rec.ProgramID]
		rec.AgreementName = agreements[rec.AgreementID]
		rec.InstitutionName = institutions[rec.InstitutionID]
		rec.ProfessionalName = professionals[rec.ProfessionalID]
		rec.Derive()
	}
	return nil
}

type idName struct {
	ID   uuid.UUID
	Name string `gorm:"column:nombre"`
}

func (r *EncounterRepository) nameMap(ctx context.Context, model any, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []idName
	if err := r.db.WithContext(ctx).Model(model).
		Select("id", "nombre").
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.Name
	}
	return out, nil
}

func keys(set map[uuid.UUID]struct{}) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

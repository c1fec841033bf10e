package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Program is the top-level grouping of agreements (e.g. a health initiative).
// Catalog entries are never hard-deleted; Active is flipped off instead so
// historical encounter records keep resolving.
type Program struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"creado_en"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"actualizado_en"`

	Name   string `gorm:"column:nombre;type:varchar(200);not null;uniqueIndex" json:"nombre"`
	Active bool   `gorm:"column:activo;not null;default:true;index" json:"activo"`
}

func (Program) TableName() string {
	return "programas"
}

// Agreement belongs to exactly one Program; (nombre, programa_id) is unique.
type Agreement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"creado_en"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"actualizado_en"`

	Name      string    `gorm:"column:nombre;type:varchar(200);not null;uniqueIndex:ux_convenios_nombre_programa" json:"nombre"`
	ProgramID uuid.UUID `gorm:"column:programa_id;type:uuid;not null;uniqueIndex:ux_convenios_nombre_programa;index" json:"programa_id"`
	Active    bool      `gorm:"column:activo;not null;default:true;index" json:"activo"`

	Program *Program `gorm:"foreignKey:ProgramID" json:"programa,omitempty"`
}

func (Agreement) TableName() string {
	return "convenios"
}

// Institution is a site where encounters happen, keyed by
// (nombre, municipio, departamento).
type Institution struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"creado_en"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"actualizado_en"`

	Name         string `gorm:"column:nombre;type:varchar(200);not null;uniqueIndex:ux_instituciones_nombre_geo" json:"nombre"`
	Locality     string `gorm:"column:localidad;type:varchar(120)" json:"localidad,omitempty"`
	Municipality string `gorm:"column:municipio;type:varchar(120);uniqueIndex:ux_instituciones_nombre_geo" json:"municipio,omitempty"`
	Department   string `gorm:"column:departamento;type:varchar(120);uniqueIndex:ux_instituciones_nombre_geo" json:"departamento,omitempty"`
	Active       bool   `gorm:"column:activo;not null;default:true;index" json:"activo"`
}

func (Institution) TableName() string {
	return "instituciones"
}

// Professional delivers encounters. Keyed by documento when present, by
// nombre otherwise.
type Professional struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"creado_en"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"actualizado_en"`

	Name        string     `gorm:"column:nombre;type:varchar(200);not null;index" json:"nombre"`
	Document    string     `gorm:"column:documento;type:varchar(50);index" json:"documento,omitempty"`
	Email       string     `gorm:"column:email;type:varchar(255)" json:"email,omitempty"`
	ProgramID   *uuid.UUID `gorm:"column:programa_id;type:uuid;index" json:"programa_id,omitempty"`
	AgreementID *uuid.UUID `gorm:"column:convenio_id;type:uuid;index" json:"convenio_id,omitempty"`
	Active      bool       `gorm:"column:activo;not null;default:true;index" json:"activo"`
}

func (Professional) TableName() string {
	return "profesionales"
}

// UpsertProfessionalCommand carries the fields of a professional upsert.
// References are optional; when both are set the agreement must belong to
// the program.
type UpsertProfessionalCommand struct {
	Name        string
	Document    string
	Email       string
	ProgramID   *uuid.UUID
	AgreementID *uuid.UUID
}

func (c *UpsertProfessionalCommand) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Document = strings.TrimSpace(c.Document)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
}

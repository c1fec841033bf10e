package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Patient is the recipient of an encounter. The document id (cedula or
// equivalent) is the global business key: re-importing an existing document
// updates the record in place instead of creating a duplicate.
type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"creado_en"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"actualizado_en"`

	Document  string     `gorm:"column:documento;type:varchar(50);not null;uniqueIndex" json:"documento"`
	Name      string     `gorm:"column:nombre;type:varchar(200);not null" json:"nombre"`
	BirthDate *time.Time `gorm:"column:fecha_nacimiento" json:"fecha_nacimiento,omitempty"`
	Sex       string     `gorm:"column:sexo;type:varchar(20)" json:"sexo,omitempty"`
	Phone     string     `gorm:"column:telefono;type:varchar(30)" json:"telefono,omitempty"`
	Email     string     `gorm:"column:email;type:varchar(255)" json:"email,omitempty"`
	Address   string     `gorm:"column:direccion;type:text" json:"direccion,omitempty"`

	Locality     string `gorm:"column:localidad;type:varchar(120)" json:"localidad,omitempty"`
	Municipality string `gorm:"column:municipio;type:varchar(120)" json:"municipio,omitempty"`
	Department   string `gorm:"column:departamento;type:varchar(120)" json:"departamento,omitempty"`

	Active bool `gorm:"column:activo;not null;default:true;index" json:"activo"`
}

func (Patient) TableName() string {
	return "pacientes"
}

func (p *Patient) Age(now time.Time) int {
	if p.BirthDate == nil {
		return 0
	}
	years := now.Year() - p.BirthDate.Year()
	if now.Month() < p.BirthDate.Month() ||
		(now.Month() == p.BirthDate.Month() && now.Day() < p.BirthDate.Day()) {
		years--
	}
	return years
}

// UpsertPatientCommand carries the writable fields of a patient upsert.
type UpsertPatientCommand struct {
	Document     string
	Name         string
	BirthDate    *time.Time
	Sex          string
	Phone        string
	Email        string
	Address      string
	Locality     string
	Municipality string
	Department   string
}

func (c *UpsertPatientCommand) Normalize() {
	c.Document = strings.TrimSpace(c.Document)
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
}

package encounter

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType is one of the four fixed encounter templates.
type ActivityType string

const (
	ActivityIndividual ActivityType = "Consulta individual"
	ActivityGroup      ActivityType = "Sesion grupal"
	ActivityWorkshop   ActivityType = "Taller educativo"
	ActivityFollowUp   ActivityType = "Seguimiento telefonico"
)

func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityIndividual, ActivityGroup, ActivityWorkshop, ActivityFollowUp:
		return true
	}
	return false
}

type ContactType string

const (
	ContactInPerson ContactType = "Presencial"
	ContactVirtual  ContactType = "Virtual"
	ContactPhone    ContactType = "Telefonico"
	ContactOther    ContactType = "Otro"
)

func (t ContactType) IsValid() bool {
	switch t {
	case ContactInPerson, ContactVirtual, ContactPhone, ContactOther:
		return true
	}
	return false
}

// Encounter is one logged interaction between a professional and a scheduled
// or attended patient. Catalog references must resolve at write time; the
// geography and patient fields are snapshots, frozen even if the catalogs
// change later.
type Encounter struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"creado_en"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"actualizado_en"`
	DeletedAt *time.Time `gorm:"index" json:"-"`

	Date time.Time `gorm:"column:fecha;not null;index" json:"fecha"`

	ProgramID      uuid.UUID  `gorm:"column:programa_id;type:uuid;not null;index" json:"programa_id"`
	AgreementID    uuid.UUID  `gorm:"column:convenio_id;type:uuid;not null;index" json:"convenio_id"`
	InstitutionID  uuid.UUID  `gorm:"column:institucion_id;type:uuid;not null;index" json:"institucion_id"`
	ProfessionalID uuid.UUID  `gorm:"column:profesional_id;type:uuid;not null;index" json:"profesional_id"`
	PatientID      *uuid.UUID `gorm:"column:paciente_id;type:uuid;index" json:"paciente_id,omitempty"`

	Locality     string `gorm:"column:localidad;type:varchar(120)" json:"localidad,omitempty"`
	Municipality string `gorm:"column:municipio;type:varchar(120);index" json:"municipio,omitempty"`
	Department   string `gorm:"column:departamento;type:varchar(120);index" json:"departamento,omitempty"`

	PatientNumber string `gorm:"column:numero_paciente;type:varchar(50)" json:"numero_paciente,omitempty"`
	PatientName   string `gorm:"column:nombre_paciente;type:varchar(200)" json:"nombre_paciente,omitempty"`

	Activity           ActivityType `gorm:"column:actividad;type:varchar(50);not null;index" json:"actividad"`
	Attended           bool         `gorm:"column:atendido;not null" json:"atendido"`
	RegisteredExternal bool         `gorm:"column:registrado_panacea;not null" json:"registrado_panacea"`
	DurationMins       *int         `gorm:"column:duracion_minutos" json:"duracion_minutos,omitempty"`
	ContactType        ContactType  `gorm:"column:tipo_contacto;type:varchar(30);not null;default:'Presencial'" json:"tipo_contacto"`

	ScheduledPatients int `gorm:"column:pacientes_programados;not null" json:"pacientes_programados"`
	AttendedPatients  int `gorm:"column:pacientes_atendidos;not null" json:"pacientes_atendidos"`

	Observations string `gorm:"column:observaciones;type:text" json:"observaciones,omitempty"`
	CreatedBy    string `gorm:"column:creado_por;type:varchar(255);index" json:"creado_por,omitempty"`

	// Resolved catalog names, populated on list reads for display.
	ProgramName      string `gorm:"-" json:"programa,omitempty"`
	AgreementName    string `gorm:"-" json:"convenio,omitempty"`
	InstitutionName  string `gorm:"-" json:"institucion,omitempty"`
	ProfessionalName string `gorm:"-" json:"profesional,omitempty"`

	// Derived counters, recomputed on reads and never stored.
	NoShowCount     int     `gorm:"-" json:"no_asistieron"`
	AttendanceRatio float64 `gorm:"-" json:"tasa_atencion"`
}

func (Encounter) TableName() string {
	return "registros"
}

// NoShows is the per-record scheduled minus attended difference.
func (e *Encounter) NoShows() int {
	return e.ScheduledPatients - e.AttendedPatients
}

// AttendanceRate is 0 when nothing was scheduled, never a division error.
func (e *Encounter) AttendanceRate() float64 {
	if e.ScheduledPatients <= 0 {
		return 0
	}
	return float64(e.AttendedPatients) / float64(e.ScheduledPatients)
}

// Derive refreshes the computed response fields from the stored counters.
func (e *Encounter) Derive() {
	e.NoShowCount = e.NoShows()
	e.AttendanceRatio = e.AttendanceRate()
}

// CreateEncounterCommand carries a single form submission or one validated
// import row.
type CreateEncounterCommand struct {
	Date           time.Time
	ProgramID      uuid.UUID
	AgreementID    uuid.UUID
	InstitutionID  uuid.UUID
	ProfessionalID uuid.UUID
	PatientID      *uuid.UUID

	Locality     string
	Municipality string
	Department   string

	PatientNumber string
	PatientName   string

	Activity           ActivityType
	Attended           bool
	RegisteredExternal bool
	DurationMins       *int
	ContactType        ContactType

	ScheduledPatients int
	AttendedPatients  int

	Observations string
	CreatedBy    string
}

// UpdateEncounterCommand applies partial updates; nil fields are untouched.
// Storage refreshes actualizado_en on every update.
type UpdateEncounterCommand struct {
	Date               *time.Time
	Attended           *bool
	RegisteredExternal *bool
	DurationMins       *int
	ContactType        *ContactType
	ScheduledPatients  *int
	AttendedPatients   *int
	Observations       *string
}

// Filter holds the optional, AND-combined dashboard predicates.
type Filter struct {
	From           *time.Time
	To             *time.Time
	ProgramID      *uuid.UUID
	AgreementID    *uuid.UUID
	InstitutionID  *uuid.UUID
	ProfessionalID *uuid.UUID
	Activity       *ActivityType
	Department     string
	Municipality   string

	// CreatedBy restricts visibility to a single creator; left empty for
	// admin callers.
	CreatedBy string
}

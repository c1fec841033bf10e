package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vivesalud/productiva/internal/domain/encounter"
	"github.com/vivesalud/productiva/internal/service"
)

type EncounterHandler struct {
	encounterSvc *service.EncounterService
}

func NewEncounterHandler(encounterSvc *service.EncounterService) *EncounterHandler {
	return &EncounterHandler{encounterSvc: encounterSvc}
}

type createEncounterRequest struct {
	Date           string     `json:"fecha" binding:"required"`
	ProgramID      uuid.UUID  `json:"programa_id" binding:"required"`
	AgreementID    uuid.UUID  `json:"convenio_id" binding:"required"`
	InstitutionID  uuid.UUID  `json:"institucion_id" binding:"required"`
	ProfessionalID uuid.UUID  `json:"profesional_id" binding:"required"`
	PatientID      *uuid.UUID `json:"paciente_id"`

	Locality     string `json:"localidad"`
	Municipality string `json:"municipio"`
	Department   string `json:"departamento"`

	PatientNumber string `json:"numero_paciente"`
	PatientName   string `json:"nombre_paciente"`

	Activity           string `json:"actividad" binding:"required"`
	Attended           bool   `json:"atendido"`
	RegisteredExternal bool   `json:"registrado_panacea"`
	DurationMins       *int   `json:"duracion_minutos"`
	ContactType        string `json:"tipo_contacto"`

	ScheduledPatients int `json:"pacientes_programados"`
	AttendedPatients  int `json:"pacientes_atendidos"`

	Observations string `json:"observaciones"`
}

func (h *EncounterHandler) Create(c *gin.Context) {
	var req createEncounterRequest
	if !bindJSON(c, &req) {
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		respondError(c, 400, "invalid fecha: must be YYYY-MM-DD")
		return
	}

	caller := callerFrom(c)
	cmd := &encounter.CreateEncounterCommand{
		Date:               date.UTC(),
		ProgramID:          req.ProgramID,
		AgreementID:        req.AgreementID,
		InstitutionID:      req.InstitutionID,
		ProfessionalID:     req.ProfessionalID,
		PatientID:          req.PatientID,
		Locality:           req.Locality,
		Municipality:       req.Municipality,
		Department:         req.Department,
		PatientNumber:      req.PatientNumber,
		PatientName:        req.PatientName,
		Activity:           encounter.ActivityType(req.Activity),
		Attended:           req.Attended,
		RegisteredExternal: req.RegisteredExternal,
		DurationMins:       req.DurationMins,
		ContactType:        encounter.ContactType(req.ContactType),
		ScheduledPatients:  req.ScheduledPatients,
		AttendedPatients:   req.AttendedPatients,
		Observations:       req.Observations,
		CreatedBy:          caller.Email,
	}

	e, warnings, err := h.encounterSvc.Create(c.Request.Context(), cmd, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if len(warnings) > 0 {
		respondCreatedWithWarnings(c, e, warnings)
		return
	}
	respondCreated(c, e)
}

func (h *EncounterHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	e, err := h.encounterSvc.Get(c.Request.Context(), id, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, e)
}

type updateEncounterRequest struct {
	Date               *string `json:"fecha"`
	Attended           *bool   `json:"atendido"`
	RegisteredExternal *bool   `json:"registrado_panacea"`
	DurationMins       *int    `json:"duracion_minutos"`
	ContactType        *string `json:"tipo_contacto"`
	ScheduledPatients  *int    `json:"pacientes_programados"`
	AttendedPatients   *int    `json:"pacientes_atendidos"`
	Observations       *string `json:"observaciones"`
}

func (h *EncounterHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateEncounterRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &encounter.UpdateEncounterCommand{
		Attended:           req.Attended,
		RegisteredExternal: req.RegisteredExternal,
		DurationMins:       req.DurationMins,
		ScheduledPatients:  req.ScheduledPatients,
		AttendedPatients:   req.AttendedPatients,
		Observations:       req.Observations,
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			respondError(c, 400, "invalid fecha: must be YYYY-MM-DD")
			return
		}
		date = date.UTC()
		cmd.Date = &date
	}
	if req.ContactType != nil {
		ct := encounter.ContactType(*req.ContactType)
		cmd.ContactType = &ct
	}

	e, warnings, err := h.encounterSvc.Update(c.Request.Context(), id, cmd, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if len(warnings) > 0 {
		c.JSON(200, gin.H{"data": e, "warnings": warnings})
		return
	}
	respondOK(c, e)
}

func (h *EncounterHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.encounterSvc.Delete(c.Request.Context(), id, callerFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": id})
}

func (h *EncounterHandler) List(c *gin.Context) {
	f, ok := parseEncounterFilter(c)
	if !ok {
		return
	}

	records, err := h.encounterSvc.List(c.Request.Context(), f, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, records)
}

// parseEncounterFilter reads the AND-combined dashboard predicates from the
// query string. Shared by the record list, the dashboard, and the exports.
func parseEncounterFilter(c *gin.Context) (*encounter.Filter, bool) {
	f := &encounter.Filter{}

	var ok bool
	if f.From, ok = parseQueryDate(c, "desde"); !ok {
		return nil, false
	}
	if f.To, ok = parseQueryDate(c, "hasta"); !ok {
		return nil, false
	}
	if f.ProgramID, ok = parseQueryUUID(c, "programa_id"); !ok {
		return nil, false
	}
	if f.AgreementID, ok = parseQueryUUID(c, "convenio_id"); !ok {
		return nil, false
	}
	if f.InstitutionID, ok = parseQueryUUID(c, "institucion_id"); !ok {
		return nil, false
	}
	if f.ProfessionalID, ok = parseQueryUUID(c, "profesional_id"); !ok {
		return nil, false
	}

	if raw := c.Query("actividad"); raw != "" {
		a := encounter.ActivityType(raw)
		if !a.IsValid() {
			respondError(c, 400, "invalid actividad")
			return nil, false
		}
		f.Activity = &a
	}

	f.Department = c.Query("departamento")
	f.Municipality = c.Query("municipio")

	return f, true
}

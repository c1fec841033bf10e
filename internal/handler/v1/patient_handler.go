package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vivesalud/productiva/internal/domain/patient"
	"github.com/vivesalud/productiva/internal/service"
)

type PatientHandler struct {
	patientSvc *service.PatientService
}

func NewPatientHandler(patientSvc *service.PatientService) *PatientHandler {
	return &PatientHandler{patientSvc: patientSvc}
}

type upsertPatientRequest struct {
	Document     string `json:"documento" binding:"required"`
	Name         string `json:"nombre" binding:"required"`
	BirthDate    string `json:"fecha_nacimiento"`
	Sex          string `json:"sexo"`
	Phone        string `json:"telefono"`
	Email        string `json:"email"`
	Address      string `json:"direccion"`
	Locality     string `json:"localidad"`
	Municipality string `json:"municipio"`
	Department   string `json:"departamento"`
}

func (h *PatientHandler) Upsert(c *gin.Context) {
	var req upsertPatientRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &patient.UpsertPatientCommand{
		Document:     req.Document,
		Name:         req.Name,
		Sex:          req.Sex,
		Phone:        req.Phone,
		Email:        req.Email,
		Address:      req.Address,
		Locality:     req.Locality,
		Municipality: req.Municipality,
		Department:   req.Department,
	}
	if req.BirthDate != "" {
		d, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			respondError(c, 400, "invalid fecha_nacimiento: must be YYYY-MM-DD")
			return
		}
		d = d.UTC()
		cmd.BirthDate = &d
	}

	p, err := h.patientSvc.Upsert(c.Request.Context(), cmd, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, p)
}

func (h *PatientHandler) List(c *gin.Context) {
	patients, err := h.patientSvc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, patients)
}

// FindByDocument backs the exact-match lookup behind the encounter form.
func (h *PatientHandler) FindByDocument(c *gin.Context) {
	p, err := h.patientSvc.FindByDocument(c.Request.Context(), c.Param("documento"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *PatientHandler) Deactivate(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.patientSvc.Deactivate(c.Request.Context(), id, callerFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deactivated": id})
}

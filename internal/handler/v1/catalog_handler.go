package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vivesalud/productiva/internal/domain/catalog"
	"github.com/vivesalud/productiva/internal/service"
)

// CatalogHandler exposes the reference catalogs the encounter forms select
// from. Writes are upserts; deletes are soft deactivations.
type CatalogHandler struct {
	catalogSvc *service.CatalogService
}

func NewCatalogHandler(catalogSvc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

type upsertProgramRequest struct {
	Name string `json:"nombre" binding:"required"`
}

func (h *CatalogHandler) UpsertProgram(c *gin.Context) {
	var req upsertProgramRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.catalogSvc.UpsertProgram(c.Request.Context(), req.Name, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, p)
}

func (h *CatalogHandler) ListPrograms(c *gin.Context) {
	programs, err := h.catalogSvc.ListPrograms(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, programs)
}

func (h *CatalogHandler) DeactivateProgram(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogSvc.DeactivateProgram(c.Request.Context(), id, callerFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deactivated": id})
}

type upsertAgreementRequest struct {
	Name    string `json:"nombre" binding:"required"`
	Program string `json:"programa" binding:"required"`
}

func (h *CatalogHandler) UpsertAgreement(c *gin.Context) {
	var req upsertAgreementRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.catalogSvc.UpsertAgreement(c.Request.Context(), req.Name, req.Program, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, a)
}

func (h *CatalogHandler) ListAgreements(c *gin.Context) {
	programID, ok := parseQueryUUID(c, "programa_id")
	if !ok {
		return
	}
	agreements, err := h.catalogSvc.ListAgreements(c.Request.Context(), programID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, agreements)
}

func (h *CatalogHandler) DeactivateAgreement(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogSvc.DeactivateAgreement(c.Request.Context(), id, callerFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deactivated": id})
}

type upsertInstitutionRequest struct {
	Name         string `json:"nombre" binding:"required"`
	Locality     string `json:"localidad"`
	Municipality string `json:"municipio"`
	Department   string `json:"departamento"`
}

func (h *CatalogHandler) UpsertInstitution(c *gin.Context) {
	var req upsertInstitutionRequest
	if !bindJSON(c, &req) {
		return
	}

	i, err := h.catalogSvc.UpsertInstitution(
		c.Request.Context(),
		req.Name, req.Locality, req.Municipality, req.Department,
		callerFrom(c),
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, i)
}

func (h *CatalogHandler) ListInstitutions(c *gin.Context) {
	institutions, err := h.catalogSvc.ListInstitutions(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, institutions)
}

func (h *CatalogHandler) DeactivateInstitution(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogSvc.DeactivateInstitution(c.Request.Context(), id, callerFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deactivated": id})
}

type upsertProfessionalRequest struct {
	Name        string     `json:"nombre" binding:"required"`
	Document    string     `json:"documento"`
	Email       string     `json:"email"`
	ProgramID   *uuid.UUID `json:"programa_id"`
	AgreementID *uuid.UUID `json:"convenio_id"`
}

func (h *CatalogHandler) UpsertProfessional(c *gin.Context) {
	var req upsertProfessionalRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.catalogSvc.UpsertProfessional(c.Request.Context(), &catalog.UpsertProfessionalCommand{
		Name:        req.Name,
		Document:    req.Document,
		Email:       req.Email,
		ProgramID:   req.ProgramID,
		AgreementID: req.AgreementID,
	}, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, p)
}

func (h *CatalogHandler) ListProfessionals(c *gin.Context) {
	programID, ok := parseQueryUUID(c, "programa_id")
	if !ok {
		return
	}
	agreementID, ok := parseQueryUUID(c, "convenio_id")
	if !ok {
		return
	}

	professionals, err := h.catalogSvc.ListProfessionals(c.Request.Context(), programID, agreementID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, professionals)
}

func (h *CatalogHandler) DeactivateProfessional(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogSvc.DeactivateProfessional(c.Request.Context(), id, callerFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deactivated": id})
}

package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vivesalud/productiva/internal/domain"
	"github.com/vivesalud/productiva/internal/domain/catalog"
	"github.com/vivesalud/productiva/internal/domain/encounter"
	"github.com/vivesalud/productiva/internal/domain/patient"
	"github.com/vivesalud/productiva/internal/service"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondCreatedWithWarnings(c *gin.Context, data any, warnings []string) {
	c.JSON(http.StatusCreated, gin.H{"data": data, "warnings": warnings})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: validErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, encounter.ErrEncounterNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	// A human-entered name did not resolve against the catalogs. The request
	// was well-formed, so 422 rather than 400.
	case catalog.IsResolution(err):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(),
			Code:  "CATALOG_RESOLUTION",
		})

	case errors.Is(err, encounter.ErrDateRequired),
		errors.Is(err, encounter.ErrInvalidActivity),
		errors.Is(err, encounter.ErrInvalidContactType),
		errors.Is(err, encounter.ErrNegativeCounts),
		errors.Is(err, encounter.ErrInvalidPatientCount),
		errors.Is(err, encounter.ErrInvalidDuration),
		errors.Is(err, catalog.ErrNameRequired),
		errors.Is(err, patient.ErrDocumentRequired),
		errors.Is(err, patient.ErrNameRequired),
		errors.Is(err, service.ErrTooManyRows):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrIntegrityViolation):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrAccountInactive):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied"})

	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})

	case errors.Is(err, service.ErrAccountLocked):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "account temporarily locked",
			Code:  "ACCOUNT_LOCKED",
		})

	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}

	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param + ": must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}

// parseQueryUUID reads an optional UUID query parameter. A missing parameter
// yields (nil, true); a malformed one responds 400.
func parseQueryUUID(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + key + ": must be a valid UUID"})
		return nil, false
	}
	return &id, true
}

// parseQueryDate reads an optional YYYY-MM-DD query parameter.
func parseQueryDate(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + key + ": must be YYYY-MM-DD"})
		return nil, false
	}
	d = d.UTC()
	return &d, true
}

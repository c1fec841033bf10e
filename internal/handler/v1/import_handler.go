package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vivesalud/productiva/internal/service"
)

// ImportHandler receives bulk CSV uploads. The response always reports the
// whole batch: how many rows landed and exactly which ones did not.
type ImportHandler struct {
	importSvc *service.ImportService
}

func NewImportHandler(importSvc *service.ImportService) *ImportHandler {
	return &ImportHandler{importSvc: importSvc}
}

type rowErrorResponse struct {
	Row    int    `json:"fila"`
	Column string `json:"columna,omitempty"`
	Error  string `json:"error"`
}

type importResponse struct {
	Kind      string             `json:"tipo"`
	Total     int                `json:"total"`
	Succeeded int                `json:"exitosos"`
	Failed    []rowErrorResponse `json:"fallidos"`
	Warnings  []rowErrorResponse `json:"advertencias,omitempty"`
}

// Upload handles POST /importar/:tipo with a multipart "file" part.
func (h *ImportHandler) Upload(c *gin.Context) {
	kind := service.ImportKind(c.Param("tipo"))

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "missing multipart file field \"file\"")
		return
	}
	defer file.Close()

	result, err := h.importSvc.Import(c.Request.Context(), kind, file, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := importResponse{
		Kind:      string(kind),
		Total:     result.Total(),
		Succeeded: result.Succeeded,
		Failed:    make([]rowErrorResponse, 0, len(result.Failed)),
	}
	for _, re := range result.Failed {
		resp.Failed = append(resp.Failed, rowErrorResponse{
			Row: re.Row, Column: re.Column, Error: re.Err.Error(),
		})
	}
	for _, re := range result.Warnings {
		resp.Warnings = append(resp.Warnings, rowErrorResponse{
			Row: re.Row, Column: re.Column, Error: re.Err.Error(),
		})
	}

	respondOK(c, resp)
}

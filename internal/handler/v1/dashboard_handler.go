package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vivesalud/productiva/internal/analytics"
	"github.com/vivesalud/productiva/internal/export"
	"github.com/vivesalud/productiva/internal/service"
	"github.com/vivesalud/productiva/pkg/metrics"
)

// DashboardHandler serves the aggregate views and the report downloads. Both
// run the same filtered list, so what you see is what you export.
type DashboardHandler struct {
	encounterSvc *service.EncounterService
	auditSvc     *service.AuditService
	collector    *metrics.Collector
}

func NewDashboardHandler(encounterSvc *service.EncounterService, auditSvc *service.AuditService, collector *metrics.Collector) *DashboardHandler {
	return &DashboardHandler{encounterSvc: encounterSvc, auditSvc: auditSvc, collector: collector}
}

type dashboardResponse struct {
	Summary       analytics.Summary                `json:"resumen"`
	WeeklyTrend   []analytics.WeekBucket           `json:"tendencia_semanal"`
	Ranking       []analytics.ProfessionalStanding `json:"ranking_profesionales"`
	ByActivity    []analytics.GroupCount           `json:"por_actividad"`
	ByInstitution []analytics.GroupCount           `json:"por_institucion"`
	ByDepartment  []analytics.GroupCount           `json:"por_departamento"`
}

func (h *DashboardHandler) Dashboard(c *gin.Context) {
	f, ok := parseEncounterFilter(c)
	if !ok {
		return
	}

	records, err := h.encounterSvc.List(c.Request.Context(), f, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, dashboardResponse{
		Summary:       analytics.Summarize(records),
		WeeklyTrend:   analytics.WeeklyTrend(records),
		Ranking:       analytics.RankProfessionals(records),
		ByActivity:    analytics.DistributionByActivity(records),
		ByInstitution: analytics.DistributionByInstitution(records),
		ByDepartment:  analytics.DistributionByDepartment(records),
	})
}

func (h *DashboardHandler) ExportXLSX(c *gin.Context) {
	f, ok := parseEncounterFilter(c)
	if !ok {
		return
	}

	caller := callerFrom(c)
	records, err := h.encounterSvc.List(c.Request.Context(), f, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	payload, err := export.Workbook(records)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to build workbook")
		return
	}

	h.collector.ExportsTotal.WithLabelValues("xlsx").Inc()
	h.auditSvc.LogAsync(c.Request.Context(), service.AuditEntry{
		UserEmail: caller.Email, UserRole: string(caller.Role),
		Action: "export", ResourceType: "reporte", IPAddress: caller.IP,
		Detail: fmt.Sprintf("format=xlsx registros=%d", len(records)),
	})

	filename := fmt.Sprintf("productiva_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", payload)
}

func (h *DashboardHandler) ExportCSV(c *gin.Context) {
	f, ok := parseEncounterFilter(c)
	if !ok {
		return
	}

	caller := callerFrom(c)
	records, err := h.encounterSvc.List(c.Request.Context(), f, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	payload, err := export.CSV(records)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to build CSV")
		return
	}

	h.collector.ExportsTotal.WithLabelValues("csv").Inc()
	h.auditSvc.LogAsync(c.Request.Context(), service.AuditEntry{
		UserEmail: caller.Email, UserRole: string(caller.Role),
		Action: "export", ResourceType: "reporte", IPAddress: caller.IP,
		Detail: fmt.Sprintf("format=csv registros=%d", len(records)),
	})

	filename := fmt.Sprintf("productiva_%s.csv", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}

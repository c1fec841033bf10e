package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vivesalud/productiva/internal/config"
	"github.com/vivesalud/productiva/internal/service"
	"github.com/vivesalud/productiva/pkg/auth"
	"github.com/vivesalud/productiva/pkg/metrics"
)

// RouterDeps carries everything the HTTP layer needs. Constructed once in
// main and handed down.
type RouterDeps struct {
	Config     *config.Config
	Log        *zap.Logger
	JWTManager *auth.JWTManager
	Collector  *metrics.Collector

	AuthSvc      *service.AuthService
	CatalogSvc   *service.CatalogService
	PatientSvc   *service.PatientService
	EncounterSvc *service.EncounterService
	ImportSvc    *service.ImportService
	AuditSvc     *service.AuditService
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(deps.Log))
	r.Use(MetricsMiddleware(deps.Collector))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Config.App.Name,
			"version": deps.Config.App.Version,
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	authHandler := NewAuthHandler(deps.AuthSvc)
	catalogHandler := NewCatalogHandler(deps.CatalogSvc)
	patientHandler := NewPatientHandler(deps.PatientSvc)
	encounterHandler := NewEncounterHandler(deps.EncounterSvc)
	importHandler := NewImportHandler(deps.ImportSvc)
	dashboardHandler := NewDashboardHandler(deps.EncounterSvc, deps.AuditSvc, deps.Collector)

	api := r.Group("/api/v1")

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	protected := api.Group("")
	protected.Use(AuthMiddleware(deps.JWTManager))

	protected.POST("/auth/register", authHandler.Register)
	protected.POST("/auth/password", authHandler.ChangePassword)

	catalogs := protected.Group("/catalogos")
	{
		catalogs.GET("/programas", catalogHandler.ListPrograms)
		catalogs.POST("/programas", catalogHandler.UpsertProgram)
		catalogs.DELETE("/programas/:id", catalogHandler.DeactivateProgram)

		catalogs.GET("/convenios", catalogHandler.ListAgreements)
		catalogs.POST("/convenios", catalogHandler.UpsertAgreement)
		catalogs.DELETE("/convenios/:id", catalogHandler.DeactivateAgreement)

		catalogs.GET("/instituciones", catalogHandler.ListInstitutions)
		catalogs.POST("/instituciones", catalogHandler.UpsertInstitution)
		catalogs.DELETE("/instituciones/:id", catalogHandler.DeactivateInstitution)

		catalogs.GET("/profesionales", catalogHandler.ListProfessionals)
		catalogs.POST("/profesionales", catalogHandler.UpsertProfessional)
		catalogs.DELETE("/profesionales/:id", catalogHandler.DeactivateProfessional)
	}

	patients := protected.Group("/pacientes")
	{
		patients.GET("", patientHandler.List)
		patients.POST("", patientHandler.Upsert)
		patients.GET("/documento/:documento", patientHandler.FindByDocument)
		patients.DELETE("/:id", patientHandler.Deactivate)
	}

	records := protected.Group("/registros")
	{
		records.GET("", encounterHandler.List)
		records.POST("", encounterHandler.Create)
		records.GET("/:id", encounterHandler.Get)
		records.PATCH("/:id", encounterHandler.Update)
		records.DELETE("/:id", encounterHandler.Delete)
	}

	protected.POST("/importar/:tipo", importHandler.Upload)

	protected.GET("/dashboard", dashboardHandler.Dashboard)
	protected.GET("/exportar/xlsx", dashboardHandler.ExportXLSX)
	protected.GET("/exportar/csv", dashboardHandler.ExportCSV)

	return r
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/vivesalud/productiva/internal/config"
	v1 "github.com/vivesalud/productiva/internal/handler/v1"
	"github.com/vivesalud/productiva/internal/repository"
	"github.com/vivesalud/productiva/internal/service"
	"github.com/vivesalud/productiva/pkg/auth"
	"github.com/vivesalud/productiva/pkg/database"
	"github.com/vivesalud/productiva/pkg/logger"
	"github.com/vivesalud/productiva/pkg/metrics"
	"github.com/vivesalud/productiva/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("db_driver", cfg.Database.Driver),
	)

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		log.Fatal("initializing tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("connecting to database", zap.Error(err))
	}
	if err := database.Migrate(db, log); err != nil {
		log.Fatal("migrating database", zap.Error(err))
	}

	collector := metrics.NewCollector("productiva")
	if sqlDB, err := db.DB(); err == nil {
		collector.DBConnections.Set(float64(sqlDB.Stats().OpenConnections))
	}

	catalogRepo := repository.NewCatalogRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	encounterRepo := repository.NewEncounterRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	auditSvc := service.NewAuditService(auditRepo, collector, log)
	defer auditSvc.Shutdown()

	jwtManager := auth.NewJWTManager(cfg.JWT)

	authSvc := service.NewAuthService(userRepo, jwtManager, auditSvc, log)
	catalogSvc := service.NewCatalogService(catalogRepo, auditSvc, log)
	patientSvc := service.NewPatientService(patientRepo, auditSvc, log)
	encounterSvc := service.NewEncounterService(encounterRepo, catalogRepo, auditSvc, collector, log)
	importSvc := service.NewImportService(catalogRepo, patientRepo, encounterRepo, cfg.Import, auditSvc, collector, log)

	router := v1.NewRouter(v1.RouterDeps{
		Config:       cfg,
		Log:          log,
		JWTManager:   jwtManager,
		Collector:    collector,
		AuthSvc:      authSvc,
		CatalogSvc:   catalogSvc,
		PatientSvc:   patientSvc,
		EncounterSvc: encounterSvc,
		ImportSvc:    importSvc,
		AuditSvc:     auditSvc,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}

	log.Info("stopped")
}

package database

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vivesalud/productiva/internal/config"
	"github.com/vivesalud/productiva/internal/domain"
	"github.com/vivesalud/productiva/internal/domain/catalog"
	"github.com/vivesalud/productiva/internal/domain/encounter"
	"github.com/vivesalud/productiva/internal/domain/patient"
)

// Connect opens the configured backend: Postgres in hosted mode, a local
// SQLite file otherwise. Everything above this call is driver-agnostic.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt:    true,
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.New(postgres.Config{DSN: cfg.DSN()})
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// SQLite serializes writers; a single connection avoids lock errors.
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	models := []any{
		&domain.User{},
		&domain.AuditLog{},
		&catalog.Program{},
		&catalog.Agreement{},
		&catalog.Institution{},
		&catalog.Professional{},
		&patient.Patient{},
		&encounter.Encounter{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

// createIndexes adds the query-path indexes AutoMigrate does not cover.
// Statements stay in the subset both Postgres and SQLite accept.
func createIndexes(db *gorm.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_registros_fecha_programa ON registros (fecha, programa_id)`,
		`CREATE INDEX IF NOT EXISTS idx_registros_profesional_fecha ON registros (profesional_id, fecha)`,
		`CREATE INDEX IF NOT EXISTS idx_registros_creado_por_fecha ON registros (creado_por, fecha)`,
		`CREATE INDEX IF NOT EXISTS idx_auditoria_resource ON auditoria (resource_type, resource_id)`,
	}

	for _, q := range indexes {
		if err := db.Exec(q).Error; err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}

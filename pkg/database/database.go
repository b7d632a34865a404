package database

import (
	"fmt"

	"circuit-service/internal/model"
	"circuit-service/internal/propschema"
	"circuit-service/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDB initializes the database connection, runs migrations and seeds
// the property type reference data
func InitDB(cfg *config.Config) error {
	var err error

	// Configure GORM logger
	logLevel := logger.Error
	if cfg.Server.Env == "development" {
		logLevel = logger.Info
	}

	// Configure Postgres options
	pgConfig := postgres.Config{
		DSN:                  cfg.DB.GetDSN(),
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	// Open connection
	// TranslateError surfaces unique index violations as
	// gorm.ErrDuplicatedKey, which the reference number allocator retries on.
	db, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get generic database object SQL
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	// Set connection pool settings from config
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err := Migrate(db); err != nil {
		return err
	}

	return nil
}

// Migrate runs the schema migrations and seeds reference data
func Migrate(d *gorm.DB) error {
	if err := d.AutoMigrate(
		&model.PropertyType{},
		&model.CircuitClass{},
		&model.Property{},
		&model.Circuit{},
	); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return seedPropertyTypes(d)
}

// seedPropertyTypes inserts the canonical value kinds if they are missing.
// The ids are stable and shared with the propschema kind enum.
func seedPropertyTypes(d *gorm.DB) error {
	for _, kind := range propschema.Kinds() {
		pt := model.PropertyType{ID: uint(kind), Name: kind.String()}
		if err := d.FirstOrCreate(&pt, model.PropertyType{ID: uint(kind)}).Error; err != nil {
			return fmt.Errorf("failed to seed property type %q: %w", kind.String(), err)
		}
	}
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return db
}

// Set replaces the database instance. Used by tests to swap in an
// in-memory database.
func Set(d *gorm.DB) {
	db = d
}

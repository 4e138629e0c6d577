package postgres

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mamadbah2/telelbirds/internal/config"
	"github.com/mamadbah2/telelbirds/internal/domain/models"
)

// Open establishes the GORM connection (pgx underneath) and sizes the pool.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	log.Info("postgres connected", zap.Int("max_open_conns", cfg.MaxOpenConns))
	return db, nil
}

// Close releases the underlying pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AllModels lists every table owned by the service in dependency order.
func AllModels() []any {
	return []any{
		&models.User{},
		&models.UserSettings{},
		&models.Tag{},
		&models.Blog{},
		&models.BlogAd{},
		&models.Breed{},
		&models.Breeders{},
		&models.Customer{},
		&models.Eggs{},
		&models.CustomerRequest{},
		&models.Hatchery{},
		&models.Incubator{},
		&models.IncubatorCapacity{},
		&models.EggSetting{},
		&models.Incubation{},
		&models.Candling{},
		&models.Hatching{},
		&models.Holding{},
		&models.Chicks{},
		&models.Mortality{},
		&models.ChicksSold{},
		&models.ChicksAvailable{},
	}
}

// Migrate enables PostGIS, then lets AutoMigrate create or extend the tables.
// Every statement is idempotent.
func Migrate(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"enable postgis", `CREATE EXTENSION IF NOT EXISTS postgis`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}

	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

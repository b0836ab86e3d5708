package database

import (
	"context"
	"fmt"
	"time"

	"frodi/internal/config"
	"frodi/internal/logger"
	"frodi/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newGormLogger() gormlogger.Interface {
	return gormlogger.New(
		logger.Logrus(),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)
}

func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return nil
}

// Open connects to postgres and migrates the journal table.
func Open(cfg config.PostgresConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.URL()), &gorm.Config{
		Logger: newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := configureConnectionPool(db); err != nil {
		return nil, fmt.Errorf("configure pool: %w", err)
	}
	if err := db.AutoMigrate(&models.Generation{}); err != nil {
		return nil, fmt.Errorf("migrate generations: %w", err)
	}
	return db, nil
}

// GenerationJournal stores one row per memo pipeline run.
type GenerationJournal struct {
	db *gorm.DB
}

func NewGenerationJournal(db *gorm.DB) *GenerationJournal {
	return &GenerationJournal{db: db}
}

func (j *GenerationJournal) Record(ctx context.Context, generation *models.Generation) error {
	if err := j.db.WithContext(ctx).Create(generation).Error; err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	return nil
}

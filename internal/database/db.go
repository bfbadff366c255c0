package database

import (
	"invoicer/internal/model"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM and migrates the
// core schema.
func NewConnection(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Team{},
		&model.Invoice{},
		&model.Reminder{},
	)
	if err != nil {
		logger.Warn("failed to auto-migrate models", zap.Error(err))
	}

	return db, nil
}

package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"linkshrink-backend/internal/domain"
)

// AutoMigrate runs the schema migrations for all domain models.
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("starting database auto-migration")

	// Users must exist before links reference them. Clicks deliberately
	// carry no foreign key to links.
	models := []interface{}{
		&domain.User{},
		&domain.Link{},
		&domain.Click{},
		&domain.DailyStat{},
	}

	for _, model := range models {
		modelName := fmt.Sprintf("%T", model)

		if err := db.AutoMigrate(model); err != nil {
			log.Error("failed to migrate model",
				zap.String("model", modelName),
				zap.Error(err))
			return fmt.Errorf("failed to migrate model %s: %w", modelName, err)
		}

		log.Info("model migrated", zap.String("model", modelName))
	}

	log.Info("database auto-migration completed", zap.Int("models", len(models)))
	return nil
}

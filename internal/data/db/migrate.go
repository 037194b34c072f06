package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/lclrke/dawa-dashboard/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&types.Artist{},
		&types.ArtistProfile{},
		&types.TrackSummary{},
		&types.TrainingItem{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

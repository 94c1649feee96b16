package db

import (
	"fmt"

	"github.com/raghav0014/AI-Feedback/models"
	"gorm.io/gorm"
)

// Migrate runs AutoMigrate for every application table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Review{},
		&models.HelpfulVote{},
		&models.ReviewReport{},
		&models.ContentRecord{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

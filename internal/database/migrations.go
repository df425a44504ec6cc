package database

import (
	"gorm.io/gorm"

	"github.com/temporahq/tempora/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.EventCategory{},
		&models.Event{},
		&models.EventAttendee{},
		&models.NotificationPreference{},
		&models.Notification{},
	)
}

// SeedData populates the default event categories for fresh installations.
// Seeded categories have no owner and are visible to every user.
func SeedData(db *gorm.DB) error {
	categories := []models.EventCategory{
		{BaseModel: models.BaseModel{ID: "general"}, Name: "General", Color: "#6366f1"},
		{BaseModel: models.BaseModel{ID: "work"}, Name: "Work", Color: "#f59e0b"},
		{BaseModel: models.BaseModel{ID: "personal"}, Name: "Personal", Color: "#10b981"},
	}

	for _, category := range categories {
		if err := db.Where(models.EventCategory{BaseModel: models.BaseModel{ID: category.ID}}).
			Attrs(category).
			FirstOrCreate(&models.EventCategory{}).Error; err != nil {
			return err
		}
	}

	return nil
}

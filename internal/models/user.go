package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User describes an account that owns events and receives notifications.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
	Timezone    string `gorm:"default:'UTC'" json:"timezone"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	Teams []Team `gorm:"many2many:team_members;" json:"teams,omitempty"`

	Events        []Event                  `gorm:"foreignKey:OwnerID" json:"-"`
	Preferences   []NotificationPreference `gorm:"foreignKey:UserID" json:"-"`
	Notifications []Notification           `gorm:"foreignKey:UserID" json:"-"`

	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

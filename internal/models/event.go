package models

import "time"

// Event is a calendar entry owned by a user. Deleting an event cascades its
// attendee rows and notification preferences.
type Event struct {
	BaseModel

	OwnerID string `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner   *User  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Location    string `gorm:"type:varchar(255)" json:"location"`

	StartTime time.Time `gorm:"not null;index" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	AllDay    bool      `gorm:"default:false" json:"all_day"`

	CategoryID *string        `gorm:"type:uuid;index" json:"category_id"`
	Category   *EventCategory `json:"category,omitempty"`

	Attendees   []EventAttendee          `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"attendees,omitempty"`
	Preferences []NotificationPreference `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
}

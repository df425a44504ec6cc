package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification kinds. Each kind carries its own fixed payload shape, stored in
// the Payload column (see ReminderPayload and InvitationPayload).
const (
	NotificationKindReminder   = "reminder"
	NotificationKindInvitation = "invitation"
	NotificationKindSystem     = "system"
)

// Notification represents an in-app notification delivered to a user.
type Notification struct {
	BaseModel

	UserID  string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind    string         `gorm:"type:varchar(32);not null;index" json:"kind"`
	Title   string         `gorm:"type:varchar(255);not null" json:"title"`
	Message string         `gorm:"type:text" json:"message"`
	Payload datatypes.JSON `json:"payload"`

	ActionURL string `gorm:"type:text" json:"action_url"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`
}

// ReminderPayload is the fixed payload for kind == reminder.
type ReminderPayload struct {
	EventID    string    `json:"event_id"`
	EventTitle string    `json:"event_title"`
	StartTime  time.Time `json:"start_time"`
	Location   string    `json:"location,omitempty"`
}

// InvitationPayload is the fixed payload for kind == invitation.
type InvitationPayload struct {
	EventID     string    `json:"event_id"`
	EventTitle  string    `json:"event_title"`
	StartTime   time.Time `json:"start_time"`
	InvitedByID string    `json:"invited_by_id"`
	InvitedBy   string    `json:"invited_by"`
}

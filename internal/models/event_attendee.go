package models

// Attendance statuses for an event invitation.
const (
	AttendeeStatusInvited  = "invited"
	AttendeeStatusAccepted = "accepted"
	AttendeeStatusDeclined = "declined"
)

// EventAttendee records one user's invitation to an event and their response.
// At most one row exists per (event, user) pair.
type EventAttendee struct {
	BaseModel

	EventID string `gorm:"type:uuid;not null;index:idx_attendees_event_user,unique" json:"event_id"`
	UserID  string `gorm:"type:uuid;not null;index:idx_attendees_event_user,unique" json:"user_id"`
	User    *User  `json:"user,omitempty"`

	Status string `gorm:"type:varchar(16);not null;default:'invited'" json:"status"`

	InvitedByID string `gorm:"type:uuid" json:"invited_by_id"`
}

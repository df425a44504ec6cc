package models

import "time"

// NotificationPreference configures the reminder for one (event, user) pair:
// how many minutes before the start it fires and over which channels.
//
// LastFiredAt is the idempotency marker for the reminder scan. A preference is
// claimed for a tick with a conditional update of this column, so overlapping
// or repeated scans cannot deliver the same reminder twice.
type NotificationPreference struct {
	BaseModel

	EventID string `gorm:"type:uuid;not null;index:idx_preferences_event_user,unique" json:"event_id"`
	Event   *Event `json:"event,omitempty"`

	UserID string `gorm:"type:uuid;not null;index:idx_preferences_event_user,unique" json:"user_id"`
	User   *User  `json:"user,omitempty"`

	LeadMinutes  int  `gorm:"not null;default:30" json:"lead_minutes"`
	EmailEnabled bool `gorm:"default:false" json:"email_enabled"`
	InAppEnabled bool `gorm:"default:true" json:"in_app_enabled"`

	LastFiredAt *time.Time `json:"last_fired_at,omitempty"`
}

// FireAt computes the instant this preference becomes due, at minute resolution.
func (p NotificationPreference) FireAt(start time.Time) time.Time {
	return start.Add(-time.Duration(p.LeadMinutes) * time.Minute).Truncate(time.Minute)
}

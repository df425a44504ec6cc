package models

// Team groups users so a whole team can be invited to an event at once.
type Team struct {
	BaseModel

	Name        string `gorm:"not null;uniqueIndex" json:"name"`
	Description string `json:"description"`

	OwnerID string `gorm:"type:uuid;index" json:"owner_id"`

	Members []User `gorm:"many2many:team_members;" json:"members,omitempty"`
}

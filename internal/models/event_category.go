package models

// EventCategory labels events so the UI can colour and filter them.
type EventCategory struct {
	BaseModel

	OwnerID string `gorm:"type:uuid;index:idx_categories_owner_name,unique" json:"owner_id"`
	Name    string `gorm:"not null;index:idx_categories_owner_name,unique" json:"name"`
	Color   string `gorm:"type:varchar(16);default:'#6366f1'" json:"color"`

	Events []Event `gorm:"foreignKey:CategoryID" json:"-"`
}

package models

import (
	"time"
)

// Team is owned by AdminID. The admin always also holds a TeamMember row with RoleAdmin.
type Team struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	AdminID     uint64    `gorm:"not null;index" json:"admin_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Admin    User         `gorm:"foreignKey:AdminID;constraint:OnDelete:CASCADE" json:"-"`
	Members  []TeamMember `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Tasks    []Task       `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
	Projects []Project    `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"projects,omitempty"`
}

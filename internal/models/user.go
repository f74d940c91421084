package models

import (
	"time"
)

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Memberships    []TeamMember    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Notifications  []Notification  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	DashboardStats *DashboardStats `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

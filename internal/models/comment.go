package models

import "time"

type Comment struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	TaskID    uint64    `gorm:"not null" json:"task_id"`
	UserID    uint64    `gorm:"not null" json:"user_id"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

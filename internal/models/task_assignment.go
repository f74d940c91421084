package models

import (
	"time"
)

// TaskAssignment records that AssignedToID was given TaskID by AssignedByID.
type TaskAssignment struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	TaskID       uint64    `gorm:"not null;uniqueIndex:idx_task_assignee" json:"task_id"`
	AssignedByID uint64    `gorm:"column:assigned_by;not null" json:"assigned_by"`
	AssignedToID uint64    `gorm:"column:assigned_to;not null;uniqueIndex:idx_task_assignee" json:"assigned_to"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	Task       Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"task,omitempty"`
	AssignedBy User `gorm:"foreignKey:AssignedByID;constraint:OnDelete:CASCADE" json:"-"`
	AssignedTo User `gorm:"foreignKey:AssignedToID;constraint:OnDelete:CASCADE" json:"assignee,omitempty"`
}

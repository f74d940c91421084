package models

import "time"

// DashboardStats is a per-user snapshot of the reporting numbers. It is rewritten
// whenever statistics are requested and never read as the source of truth.
type DashboardStats struct {
	UserID         uint64    `gorm:"primarykey;autoIncrement:false" json:"user_id"`
	TotalTasks     int       `gorm:"not null;default:0" json:"total_tasks"`
	CompletedTasks int       `gorm:"not null;default:0" json:"completed_tasks"`
	OverdueTasks   int       `gorm:"not null;default:0" json:"overdue_tasks"`
	CompletionRate float64   `gorm:"not null;default:0" json:"completion_rate"`
	ActiveProjects int       `gorm:"not null;default:0" json:"active_projects"`
	UpdatedAt      time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

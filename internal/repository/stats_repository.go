package repository

import (
	"github.com/yukikurage/team-task-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStatsRepository is a GORM implementation of StatsRepository
type GormStatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &GormStatsRepository{db: db}
}

func (r *GormStatsRepository) FindByUserID(userID uint64) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := r.db.Where("user_id = ?", userID).First(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// Upsert inserts the row or overwrites every counter of an existing one
func (r *GormStatsRepository) Upsert(stats *models.DashboardStats) error {
	return r.db.
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_tasks",
				"completed_tasks",
				"overdue_tasks",
				"completion_rate",
				"active_projects",
				"updated_at",
			}),
		}).
		Create(stats).Error
}

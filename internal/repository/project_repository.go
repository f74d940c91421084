package repository

import (
	"github.com/yukikurage/team-task-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Omit("Team", "Tasks").Create(project).Error
}

func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Model(project).Omit(clause.Associations).Select("Name").Updates(project).Error
}

// Delete deletes a project and its tasks in a transaction
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteTasksWhere(tx, "project_id = ?", id); err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, id).Error
	})
}

// ListByTeamIDs lists the projects of the given teams, newest first
func (r *GormProjectRepository) ListByTeamIDs(teamIDs []uint64, withTasks bool) ([]models.Project, error) {
	if len(teamIDs) == 0 {
		return []models.Project{}, nil
	}

	query := r.db.Preload("Team").Where("team_id IN ?", teamIDs)
	if withTasks {
		query = query.Preload("Tasks")
	}

	var projects []models.Project
	err := query.Order("created_at DESC").Order("id DESC").Find(&projects).Error
	return projects, err
}

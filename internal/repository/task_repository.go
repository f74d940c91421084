package repository

import (
	"errors"
	"fmt"

	"github.com/yukikurage/team-task-api/internal/database"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrCreateTask is returned when inserting the task fails inside the creation transaction.
	ErrCreateTask = errors.New("task repository: create task failed")
	// ErrCreateAssignment is returned when inserting an initial assignment fails inside the creation transaction.
	ErrCreateAssignment = errors.New("task repository: create task assignment failed")
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// CreateWithAssignments creates a task and its assignments, or neither
func (r *GormTaskRepository) CreateWithAssignments(task *models.Task, assignments []models.TaskAssignment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateTask, err)
		}

		if len(assignments) == 0 {
			return nil
		}

		for i := range assignments {
			assignments[i].TaskID = task.ID
		}

		if err := tx.Omit(clause.Associations).Create(&assignments).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateAssignment, err)
		}

		return nil
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	if filter.VisibleToUserID != nil {
		assignmentSubQuery := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.assigned_to = ?", *filter.VisibleToUserID)
		query = query.Where("tasks.creator_id = ? OR EXISTS (?)", *filter.VisibleToUserID, assignmentSubQuery)
	}
	if filter.TeamID != nil {
		query = query.Where("tasks.team_id = ?", *filter.TeamID)
	}
	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Scopes(database.NewestFirst("tasks"))
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.
		Preload("Creator").
		Preload("Assignments").
		Preload("Assignments.AssignedTo").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListCreatedBy lists the tasks a user created
func (r *GormTaskRepository) ListCreatedBy(userID uint64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Where("creator_id = ?", userID).
		Scopes(database.NewestFirst("tasks")).
		Find(&tasks).Error
	return tasks, err
}

// ListAssignedTo lists the tasks reached through the user's assignments
func (r *GormTaskRepository) ListAssignedTo(userID uint64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Model(&models.Task{}).
		Joins("JOIN task_assignments ON task_assignments.task_id = tasks.id").
		Where("task_assignments.assigned_to = ?", userID).
		Scopes(database.NewestFirst("tasks")).
		Find(&tasks).Error
	return tasks, err
}

// ListByTeamIDs lists the tasks of the given teams
func (r *GormTaskRepository) ListByTeamIDs(teamIDs []uint64) ([]models.Task, error) {
	if len(teamIDs) == 0 {
		return []models.Task{}, nil
	}

	var tasks []models.Task
	err := r.db.Where("team_id IN ?", teamIDs).
		Scopes(database.NewestFirst("tasks")).
		Find(&tasks).Error
	return tasks, err
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit(clause.Associations).Save(task).Error
}

// Delete removes a task with its comments, assignments and notifications
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return deleteTasks(tx, []uint64{id})
	})
}

// Assign creates assignments, skipping task/assignee pairs that already exist
func (r *GormTaskRepository) Assign(assignments []models.TaskAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	return r.db.
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}, {Name: "assigned_to"}},
			DoNothing: true,
		}).
		Create(&assignments).Error
}

// Unassign removes a user's assignment from a task and reports how many rows went away
func (r *GormTaskRepository) Unassign(taskID, userID uint64) (int64, error) {
	result := r.db.Where("task_id = ? AND assigned_to = ?", taskID, userID).
		Delete(&models.TaskAssignment{})
	return result.RowsAffected, result.Error
}

// FindAssignment finds a specific task assignment
func (r *GormTaskRepository) FindAssignment(taskID, userID uint64) (*models.TaskAssignment, error) {
	var assignment models.TaskAssignment
	if err := r.db.Where("task_id = ? AND assigned_to = ?", taskID, userID).
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListAssignments lists the assignments of a task with their assignees
func (r *GormTaskRepository) ListAssignments(taskID uint64) ([]models.TaskAssignment, error) {
	var assignments []models.TaskAssignment
	err := r.db.Preload("AssignedTo").
		Where("task_id = ?", taskID).
		Order("id ASC").
		Find(&assignments).Error
	return assignments, err
}

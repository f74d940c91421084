package dto

import (
	"time"

	"github.com/yukikurage/team-task-api/internal/models"
)

// TaskAssignmentDTO represents a task assignment in API responses
type TaskAssignmentDTO struct {
	ID           uint64          `json:"id"`
	TaskID       uint64          `json:"taskId"`
	AssignedByID uint64          `json:"assignedBy"`
	AssignedToID uint64          `json:"assignedTo"`
	Assignee     *UserSummaryDTO `json:"assignee,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	StartDate   time.Time           `json:"startDate"`
	DueDate     time.Time           `json:"dueDate"`
	Priority    models.TaskPriority `json:"priority"`
	Category    string              `json:"category"`
	Status      models.TaskStatus   `json:"status"`
	Progress    int                 `json:"progress"`
	CreatorID   uint64              `json:"creatorId"`
	TeamID      *uint64             `json:"teamId"`
	ProjectID   *uint64             `json:"projectId"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	Creator     *UserSummaryDTO     `json:"creator,omitempty"`
	Team        *TeamDTO            `json:"team,omitempty"`
	Project     *ProjectDTO         `json:"project,omitempty"`
	Assignments []TaskAssignmentDTO `json:"assignments"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalCount int64     `json:"totalCount"`
	TotalPages int       `json:"totalPages"`
}

// CompletionRateDTO is a user's completion rate over the tasks they created
type CompletionRateDTO struct {
	UserID         uint64 `json:"userId"`
	TotalTasks     int    `json:"totalTasks"`
	CompletedTasks int    `json:"completedTasks"`
	CompletionRate string `json:"completionRate"`
}

// ToTaskAssignmentDTO converts a TaskAssignment model to TaskAssignmentDTO
func ToTaskAssignmentDTO(assignment models.TaskAssignment) TaskAssignmentDTO {
	dto := TaskAssignmentDTO{
		ID:           assignment.ID,
		TaskID:       assignment.TaskID,
		AssignedByID: assignment.AssignedByID,
		AssignedToID: assignment.AssignedToID,
		CreatedAt:    assignment.CreatedAt,
	}

	// Include assignee if preloaded
	if assignment.AssignedTo.ID != 0 {
		assignee := ToUserSummaryDTO(assignment.AssignedTo)
		dto.Assignee = &assignee
	}

	return dto
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		StartDate:   task.StartDate,
		DueDate:     task.DueDate,
		Priority:    task.Priority,
		Category:    task.Category,
		Status:      task.Status,
		Progress:    task.Progress,
		CreatorID:   task.CreatorID,
		TeamID:      task.TeamID,
		ProjectID:   task.ProjectID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Assignments: make([]TaskAssignmentDTO, len(task.Assignments)),
	}

	// Include creator if preloaded
	if task.Creator.ID != 0 {
		creator := ToUserSummaryDTO(task.Creator)
		dto.Creator = &creator
	}

	if task.Team != nil {
		team := ToTeamDTO(*task.Team)
		dto.Team = &team
	}

	if task.Project != nil {
		project := ToProjectDTO(*task.Project)
		dto.Project = &project
	}

	for i, assignment := range task.Assignments {
		dto.Assignments[i] = ToTaskAssignmentDTO(assignment)
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64) TaskListResponse {
	totalPages := int(totalCount) / pageSize
	if int(totalCount)%pageSize > 0 {
		totalPages++
	}

	return TaskListResponse{
		Tasks:      ToTaskDTOs(tasks),
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

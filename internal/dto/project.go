package dto

import (
	"time"

	"github.com/yukikurage/team-task-api/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	TeamID    uint64    `json:"teamId"`
	TeamName  string    `json:"teamName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:        project.ID,
		Name:      project.Name,
		TeamID:    project.TeamID,
		TeamName:  project.Team.Name,
		CreatedAt: project.CreatedAt,
		UpdatedAt: project.UpdatedAt,
	}
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	result := make([]ProjectDTO, len(projects))
	for i, project := range projects {
		result[i] = ToProjectDTO(project)
	}
	return result
}

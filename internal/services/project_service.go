package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/team-task-api/internal/authz"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrInvalidProjectName = errors.New("project name cannot be empty")
	ErrMissingProjectTeam = errors.New("teamId is required")
)

// ProjectService provides business logic for projects, which always belong to a team.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	teamRepo    repository.TeamRepository
	taskRepo    repository.TaskRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, teamRepo repository.TeamRepository, taskRepo repository.TaskRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		teamRepo:    teamRepo,
		taskRepo:    taskRepo,
	}
}

// CreateProjectInput represents parameters to create a project.
type CreateProjectInput struct {
	Name    string
	TeamID  uint64
	ActorID uint64
}

// CreateProject creates a project under a team the actor belongs to.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidProjectName
	}
	if input.TeamID == 0 {
		return nil, ErrMissingProjectTeam
	}

	team, err := s.teamRepo.FindByID(input.TeamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	ok, err := authz.IsTeamMember(s.teamRepo, team.ID, input.ActorID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify team membership: %w", err)
	}
	if !ok {
		return nil, ErrNotTeamMember
	}

	project := &models.Project{
		Name:   name,
		TeamID: team.ID,
	}
	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	project.Team = *team
	return project, nil
}

// ListProjectsForUser lists the projects of every team the user belongs to.
func (s *ProjectService) ListProjectsForUser(userID uint64) ([]models.Project, error) {
	teamIDs, err := s.teamRepo.TeamIDsForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	projects, err := s.projectRepo.ListByTeamIDs(teamIDs, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns a project the actor can see. Projects of other teams are reported as missing.
func (s *ProjectService) GetProject(projectID, actorID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID, "Team")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	ok, err := authz.IsTeamMember(s.teamRepo, project.TeamID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify team membership: %w", err)
	}
	if !ok {
		return nil, ErrProjectNotFound
	}

	return project, nil
}

// UpdateProject renames a project. Only the team admin may do so.
func (s *ProjectService) UpdateProject(projectID, actorID uint64, name string) (*models.Project, error) {
	project, err := s.adminProject(projectID, actorID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidProjectName
	}
	project.Name = name

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

// DeleteProject removes a project and its tasks. Only the team admin may do so.
func (s *ProjectService) DeleteProject(projectID, actorID uint64) error {
	if _, err := s.adminProject(projectID, actorID); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// ListProjectTasks lists the tasks of a project the actor can see.
func (s *ProjectService) ListProjectTasks(projectID, actorID uint64) ([]models.Task, error) {
	if _, err := s.GetProject(projectID, actorID); err != nil {
		return nil, err
	}

	tasks, _, err := s.taskRepo.List(repository.TaskFilter{ProjectID: &projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to list project tasks: %w", err)
	}
	return tasks, nil
}

func (s *ProjectService) adminProject(projectID, actorID uint64) (*models.Project, error) {
	project, err := s.GetProject(projectID, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.IsTeamAdmin(project.Team, actorID) {
		return nil, ErrNotTeamAdmin
	}
	return project, nil
}

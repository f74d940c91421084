package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/reporting"
	"github.com/yukikurage/team-task-api/internal/repository"
	"gorm.io/gorm"
)

// DashboardService composes repository reads with the reporting aggregations.
type DashboardService struct {
	taskRepo    repository.TaskRepository
	teamRepo    repository.TeamRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	statsRepo   repository.StatsRepository
	now         func() time.Time
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(
	taskRepo repository.TaskRepository,
	teamRepo repository.TeamRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	statsRepo repository.StatsRepository,
) *DashboardService {
	return &DashboardService{
		taskRepo:    taskRepo,
		teamRepo:    teamRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		statsRepo:   statsRepo,
		now:         time.Now,
	}
}

// TaskUniverse returns every task the user created, is assigned to, or can see through a team,
// each exactly once.
func (s *DashboardService) TaskUniverse(userID uint64) ([]models.Task, error) {
	created, err := s.taskRepo.ListCreatedBy(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list created tasks: %w", err)
	}

	assigned, err := s.taskRepo.ListAssignedTo(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned tasks: %w", err)
	}

	teamIDs, err := s.teamRepo.TeamIDsForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	teamTasks, err := s.taskRepo.ListByTeamIDs(teamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list team tasks: %w", err)
	}

	return reporting.MergeTaskUniverse(created, assigned, teamTasks), nil
}

// TaskCompletion summarises completion over the user's task universe.
func (s *DashboardService) TaskCompletion(userID uint64) (reporting.Completion, error) {
	universe, err := s.TaskUniverse(userID)
	if err != nil {
		return reporting.Completion{}, err
	}
	return reporting.CompletionRate(universe), nil
}

// TopCategories counts the user's own tasks per category, most used first.
func (s *DashboardService) TopCategories(userID uint64) ([]reporting.CategoryCount, error) {
	tasks, err := s.taskRepo.ListCreatedBy(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list created tasks: %w", err)
	}
	return reporting.CategoryHistogram(tasks), nil
}

// WeeklyReport lists the tasks the user created in the Sunday-to-Saturday week containing ref.
// A zero ref means the current week.
func (s *DashboardService) WeeklyReport(userID uint64, ref time.Time) (*models.User, reporting.Weekly, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reporting.Weekly{}, ErrUserNotFound
		}
		return nil, reporting.Weekly{}, fmt.Errorf("failed to find user: %w", err)
	}

	if ref.IsZero() {
		ref = s.now()
	}

	tasks, err := s.taskRepo.ListCreatedBy(userID)
	if err != nil {
		return nil, reporting.Weekly{}, fmt.Errorf("failed to list created tasks: %w", err)
	}

	return user, reporting.WeeklyReport(tasks, ref), nil
}

// ProjectCompletion reports completion per project across the user's teams.
func (s *DashboardService) ProjectCompletion(userID uint64) ([]reporting.GroupCompletion, error) {
	projects, err := s.userProjects(userID)
	if err != nil {
		return nil, err
	}
	return reporting.ProjectCompletion(projects), nil
}

// TeamProductivity reports completion per team the user belongs to.
func (s *DashboardService) TeamProductivity(userID uint64) ([]reporting.GroupCompletion, error) {
	teamIDs, err := s.teamRepo.TeamIDsForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	teams, err := s.teamRepo.ListWithTasks(teamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load team tasks: %w", err)
	}
	return reporting.TeamProductivity(teams), nil
}

// Statistics recomputes the user's dashboard snapshot and stores it.
func (s *DashboardService) Statistics(userID uint64) (*models.DashboardStats, error) {
	universe, err := s.TaskUniverse(userID)
	if err != nil {
		return nil, err
	}

	projects, err := s.userProjects(userID)
	if err != nil {
		return nil, err
	}

	stats := reporting.Snapshot(userID, universe, projects, s.now())
	if err := s.statsRepo.Upsert(&stats); err != nil {
		return nil, fmt.Errorf("failed to save dashboard statistics: %w", err)
	}

	return &stats, nil
}

// userProjects lists the projects of the user's teams with their tasks.
func (s *DashboardService) userProjects(userID uint64) ([]models.Project, error) {
	teamIDs, err := s.teamRepo.TeamIDsForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	projects, err := s.projectRepo.ListByTeamIDs(teamIDs, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

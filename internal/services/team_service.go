package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/team-task-api/internal/authz"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTeamNotFound        = errors.New("team not found")
	ErrInvalidTeamName     = errors.New("team name cannot be empty")
	ErrNotTeamMember       = errors.New("user is not a member of the team")
	ErrNotTeamAdmin        = errors.New("only the team admin can perform this action")
	ErrInvalidRole         = errors.New("role must be ADMIN, MANAGER or MEMBER")
	ErrRoleReserved        = errors.New("the ADMIN role belongs to the team admin")
	ErrAlreadyTeamMember   = errors.New("user is already a member of this team")
	ErrTeamMemberNotFound  = errors.New("team member not found")
	ErrCannotRemoveAdmin   = errors.New("the team admin cannot be removed from the team")
	ErrFailedToCreateTeam  = errors.New("failed to create team")
	ErrFailedToAddTeamUser = errors.New("failed to add admin to team")
)

// TeamService provides business logic for team operations.
type TeamService struct {
	teamRepo repository.TeamRepository
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
}

// NewTeamService creates a new TeamService.
func NewTeamService(teamRepo repository.TeamRepository, userRepo repository.UserRepository, taskRepo repository.TaskRepository) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
		taskRepo: taskRepo,
	}
}

// CreateTeamInput represents parameters to create a new team.
type CreateTeamInput struct {
	Name        string
	Description string
	AdminID     uint64
}

// CreateTeam creates a team whose creator becomes its admin and first member.
func (s *TeamService) CreateTeam(input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidTeamName
	}

	team := &models.Team{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		AdminID:     input.AdminID,
	}
	admin := &models.TeamMember{
		JoinedAt: time.Now(),
	}

	if err := s.teamRepo.CreateWithAdmin(team, admin); err != nil {
		switch {
		case errors.Is(err, repository.ErrCreateTeam):
			return nil, ErrFailedToCreateTeam
		case errors.Is(err, repository.ErrCreateTeamMember):
			return nil, ErrFailedToAddTeamUser
		default:
			return nil, fmt.Errorf("failed to create team: %w", err)
		}
	}

	return team, nil
}

// ListTeamsForUser returns the memberships of the user with their teams.
func (s *TeamService) ListTeamsForUser(userID uint64) ([]models.TeamMember, error) {
	memberships, err := s.teamRepo.ListMembershipsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return memberships, nil
}

// GetTeamWithMembers returns a team and all of its members.
func (s *TeamService) GetTeamWithMembers(teamID uint64) (*models.Team, []models.TeamMember, error) {
	team, err := s.findTeam(teamID)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.teamRepo.ListMembers(teamID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list team members: %w", err)
	}

	return team, members, nil
}

// UpdateTeamInput holds the team fields to change. Nil fields are left untouched.
type UpdateTeamInput struct {
	Name        *string
	Description *string
}

// UpdateTeam changes a team's name or description.
func (s *TeamService) UpdateTeam(teamID uint64, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.findTeam(teamID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidTeamName
		}
		team.Name = name
	}
	if input.Description != nil {
		team.Description = strings.TrimSpace(*input.Description)
	}

	if err := s.teamRepo.Update(team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	return team, nil
}

// DeleteTeam removes a team with its projects, tasks and memberships.
func (s *TeamService) DeleteTeam(teamID uint64) error {
	if _, err := s.findTeam(teamID); err != nil {
		return err
	}

	if err := s.teamRepo.Delete(teamID); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	return nil
}

// AddMemberInput represents a request to add a user to a team by username.
type AddMemberInput struct {
	TeamID   uint64
	ActorID  uint64
	Username string
	Role     models.TeamRole
}

// AddMember adds a user to a team. Only the team admin may add members.
func (s *TeamService) AddMember(input AddMemberInput) (*models.TeamMember, error) {
	team, err := s.findTeam(input.TeamID)
	if err != nil {
		return nil, err
	}
	if !authz.IsTeamAdmin(*team, input.ActorID) {
		return nil, ErrNotTeamAdmin
	}

	role := models.TeamRole(strings.ToUpper(strings.TrimSpace(string(input.Role))))
	if role == "" {
		role = models.RoleMember
	}
	if !authz.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	if !authz.AssignableRole(role) {
		return nil, ErrRoleReserved
	}

	user, err := s.userRepo.FindByUsername(strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.teamRepo.FindMember(team.ID, user.ID); err == nil {
		return nil, ErrAlreadyTeamMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.TeamMember{
		TeamID:   team.ID,
		UserID:   user.ID,
		Role:     role,
		JoinedAt: time.Now(),
	}
	if err := s.teamRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member to team: %w", err)
	}

	member.User = *user
	return member, nil
}

// ListMembers returns all members of a team.
func (s *TeamService) ListMembers(teamID uint64) ([]models.TeamMember, error) {
	if _, err := s.findTeam(teamID); err != nil {
		return nil, err
	}

	members, err := s.teamRepo.ListMembers(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	return members, nil
}

// RemoveMember removes a member from the team. Only the team admin may remove
// members and the admin's own membership cannot be removed.
func (s *TeamService) RemoveMember(teamID, actorID, targetID uint64) error {
	team, err := s.findTeam(teamID)
	if err != nil {
		return err
	}
	if !authz.IsTeamAdmin(*team, actorID) {
		return ErrNotTeamAdmin
	}
	if targetID == team.AdminID {
		return ErrCannotRemoveAdmin
	}

	if _, err := s.teamRepo.FindMember(teamID, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamMemberNotFound
		}
		return fmt.Errorf("failed to find team member: %w", err)
	}

	if err := s.teamRepo.RemoveMember(teamID, targetID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// ListTeamTasks returns the team's tasks, newest first, with their assignees.
func (s *TeamService) ListTeamTasks(teamID uint64) ([]models.Task, error) {
	if _, err := s.findTeam(teamID); err != nil {
		return nil, err
	}

	tasks, _, err := s.taskRepo.List(repository.TaskFilter{TeamID: &teamID})
	if err != nil {
		return nil, fmt.Errorf("failed to list team tasks: %w", err)
	}
	return tasks, nil
}

func (s *TeamService) findTeam(teamID uint64) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

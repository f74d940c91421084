package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/team-task-api/internal/authz"
	"github.com/yukikurage/team-task-api/internal/constants"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotSelf              = errors.New("users can only update their own account")
	ErrUserPermissionDenied = errors.New("you do not have permission to act on this user")
	ErrInvalidUserName      = errors.New("name cannot be empty")
)

// UserService provides account management for authenticated users.
type UserService struct {
	userRepo         repository.UserRepository
	teamRepo         repository.TeamRepository
	notificationRepo repository.NotificationRepository
	statsRepo        repository.StatsRepository
}

// NewUserService creates a new UserService.
func NewUserService(
	userRepo repository.UserRepository,
	teamRepo repository.TeamRepository,
	notificationRepo repository.NotificationRepository,
	statsRepo repository.StatsRepository,
) *UserService {
	return &UserService{
		userRepo:         userRepo,
		teamRepo:         teamRepo,
		notificationRepo: notificationRepo,
		statsRepo:        statsRepo,
	}
}

// Profile is a user together with their memberships, notifications and latest statistics.
type Profile struct {
	User          models.User
	Memberships   []models.TeamMember
	Notifications []models.Notification
	Stats         *models.DashboardStats
}

// GetProfile loads the profile of the authenticated user.
func (s *UserService) GetProfile(userID uint64) (*Profile, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	memberships, err := s.teamRepo.ListMembershipsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	notifications, err := s.notificationRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	stats, err := s.statsRepo.FindByUserID(userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load statistics: %w", err)
	}

	return &Profile{
		User:          *user,
		Memberships:   memberships,
		Notifications: notifications,
		Stats:         stats,
	}, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateUserInput represents the account fields a user may change. Nil fields are left untouched.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
}

// UpdateUser changes the actor's own account.
func (s *UserService) UpdateUser(actorID, targetID uint64, input UpdateUserInput) (*models.User, error) {
	if actorID != targetID {
		return nil, ErrNotSelf
	}

	user, err := s.GetUser(targetID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidUserName
		}
		user.Name = name
	}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email == "" {
			return nil, ErrMissingRegistrationField
		}
		if email != user.Email {
			if _, err := s.userRepo.FindByEmail(email); err == nil {
				return nil, ErrEmailTaken
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			user.Email = email
		}
	}

	if input.Password != nil {
		if len(*input.Password) < constants.MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hashed, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes the target account when the actor is the target or
// administers a team the target belongs to.
func (s *UserService) DeleteUser(actorID, targetID uint64) error {
	if _, err := s.GetUser(targetID); err != nil {
		return err
	}

	if actorID != targetID {
		adminTeamIDs, err := s.teamRepo.AdminTeamIDs(actorID)
		if err != nil {
			return fmt.Errorf("failed to list administered teams: %w", err)
		}
		targetTeamIDs, err := s.teamRepo.TeamIDsForUser(targetID)
		if err != nil {
			return fmt.Errorf("failed to list target teams: %w", err)
		}
		if !authz.IsSelfOrTeamAdmin(targetID, actorID, adminTeamIDs, targetTeamIDs) {
			return ErrUserPermissionDenied
		}
	}

	if err := s.userRepo.Delete(targetID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

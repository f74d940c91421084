package dto

import (
	"time"

	"github.com/yukikurage/team-task-api/internal/models"
)

// UserDTO represents a user in API responses. The password hash is never exposed.
type UserDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserSummaryDTO is the short form of a user embedded in other resources
type UserSummaryDTO struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// ProfileDTO is the authenticated user's profile
type ProfileDTO struct {
	UserDTO
	Teams         []TeamWithRoleDTO `json:"teams"`
	Notifications []NotificationDTO `json:"notifications"`
	Stats         *StatisticsDTO    `json:"stats"`
}

// TokenDTO is an issued bearer token
type TokenDTO struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToUserSummaryDTO converts a User model to UserSummaryDTO
func ToUserSummaryDTO(user models.User) UserSummaryDTO {
	return UserSummaryDTO{
		ID:       user.ID,
		Name:     user.Name,
		Username: user.Username,
	}
}

// ToUserSummaryDTOs converts a slice of users
func ToUserSummaryDTOs(users []models.User) []UserSummaryDTO {
	result := make([]UserSummaryDTO, len(users))
	for i, user := range users {
		result[i] = ToUserSummaryDTO(user)
	}
	return result
}

// ToProfileDTO assembles the profile response
func ToProfileDTO(user models.User, memberships []models.TeamMember, notifications []models.Notification, stats *models.DashboardStats) ProfileDTO {
	profile := ProfileDTO{
		UserDTO:       ToUserDTO(user),
		Teams:         ToTeamWithRoleDTOs(memberships),
		Notifications: ToNotificationDTOs(notifications),
	}
	if stats != nil {
		s := ToStatisticsDTO(*stats)
		profile.Stats = &s
	}
	return profile
}

package dto

import (
	"time"

	"github.com/yukikurage/team-task-api/internal/models"
)

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AdminID     uint64    `json:"adminId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TeamWithRoleDTO represents a team with the current user's role
type TeamWithRoleDTO struct {
	TeamDTO
	Role models.TeamRole `json:"role"`
}

// TeamMemberDTO represents a member of a team
type TeamMemberDTO struct {
	TeamID   uint64          `json:"teamId"`
	User     UserSummaryDTO  `json:"user"`
	Role     models.TeamRole `json:"role"`
	JoinedAt time.Time       `json:"joinedAt"`
}

// TeamDetailDTO represents a team with its members
type TeamDetailDTO struct {
	TeamDTO
	Members  []TeamMemberDTO `json:"members"`
	YourRole models.TeamRole `json:"yourRole"`
}

// ToTeamDTO converts a Team model to TeamDTO
func ToTeamDTO(team models.Team) TeamDTO {
	return TeamDTO{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
		AdminID:     team.AdminID,
		CreatedAt:   team.CreatedAt,
		UpdatedAt:   team.UpdatedAt,
	}
}

// ToTeamWithRoleDTOs converts memberships with preloaded teams
func ToTeamWithRoleDTOs(memberships []models.TeamMember) []TeamWithRoleDTO {
	result := make([]TeamWithRoleDTO, len(memberships))
	for i, member := range memberships {
		result[i] = TeamWithRoleDTO{
			TeamDTO: ToTeamDTO(member.Team),
			Role:    member.Role,
		}
	}
	return result
}

// ToTeamMemberDTO converts a member with a preloaded user
func ToTeamMemberDTO(member models.TeamMember) TeamMemberDTO {
	return TeamMemberDTO{
		TeamID:   member.TeamID,
		User:     ToUserSummaryDTO(member.User),
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
}

// ToTeamMemberDTOs converts a slice of members
func ToTeamMemberDTOs(members []models.TeamMember) []TeamMemberDTO {
	result := make([]TeamMemberDTO, len(members))
	for i, member := range members {
		result[i] = ToTeamMemberDTO(member)
	}
	return result
}

// ToTeamDetailDTO converts a team with members to the detailed DTO
func ToTeamDetailDTO(team models.Team, members []models.TeamMember, yourRole models.TeamRole) TeamDetailDTO {
	return TeamDetailDTO{
		TeamDTO:  ToTeamDTO(team),
		Members:  ToTeamMemberDTOs(members),
		YourRole: yourRole,
	}
}

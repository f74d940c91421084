// Package authz holds the per-request permission predicates. Callers load the
// rows; the predicates only compare them.
package authz

import (
	"github.com/yukikurage/team-task-api/internal/models"
)

// MembershipChecker answers whether a user belongs to a team.
type MembershipChecker interface {
	IsMember(teamID, userID uint64) (bool, error)
}

// IsTeamAdmin reports whether userID administers team.
func IsTeamAdmin(team models.Team, userID uint64) bool {
	return team.AdminID == userID
}

// IsTeamMember reports whether userID holds a membership row in teamID.
func IsTeamMember(checker MembershipChecker, teamID, userID uint64) (bool, error) {
	return checker.IsMember(teamID, userID)
}

// IsSelfOrTeamAdmin reports whether the actor may act on the target user's account.
// Anyone may act on themself. Otherwise the actor must administer a team the target belongs to.
func IsSelfOrTeamAdmin(targetUserID, actingUserID uint64, adminTeamIDsOfActor, teamIDsOfTarget []uint64) bool {
	if targetUserID == actingUserID {
		return true
	}

	targetTeams := make(map[uint64]struct{}, len(teamIDsOfTarget))
	for _, id := range teamIDsOfTarget {
		targetTeams[id] = struct{}{}
	}
	for _, id := range adminTeamIDsOfActor {
		if _, ok := targetTeams[id]; ok {
			return true
		}
	}
	return false
}

// CanManageTask reports whether userID may delete a task or change its assignees.
// teamAdmin must be true only when userID administers the task's team.
func CanManageTask(task models.Task, userID uint64, teamAdmin bool) bool {
	if task.CreatorID == userID {
		return true
	}
	return task.TeamID != nil && teamAdmin
}

// ValidRole reports whether role is a known team role.
func ValidRole(role models.TeamRole) bool {
	switch role {
	case models.RoleAdmin, models.RoleManager, models.RoleMember:
		return true
	}
	return false
}

// AssignableRole reports whether role may be given through the member endpoints.
// ADMIN belongs to the team's admin only.
func AssignableRole(role models.TeamRole) bool {
	return role == models.RoleManager || role == models.RoleMember
}

func ValidStatus(status models.TaskStatus) bool {
	switch status {
	case models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCompleted:
		return true
	}
	return false
}

func ValidPriority(priority models.TaskPriority) bool {
	switch priority {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
		return true
	}
	return false
}

package services

import (
	"errors"
	"fmt"

	"github.com/yukikurage/team-task-api/internal/authz"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"gorm.io/gorm"
)

// taskAccess answers per-task permission questions for the task and comment services.
type taskAccess struct {
	taskRepo repository.TaskRepository
	teamRepo repository.TeamRepository
}

// canView reports whether the user created the task, is assigned to it or belongs to its team.
func (a taskAccess) canView(task *models.Task, userID uint64) (bool, error) {
	if task.CreatorID == userID {
		return true, nil
	}

	if _, err := a.taskRepo.FindAssignment(task.ID, userID); err == nil {
		return true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}

	if task.TeamID == nil {
		return false, nil
	}

	ok, err := authz.IsTeamMember(a.teamRepo, *task.TeamID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to verify team membership: %w", err)
	}
	return ok, nil
}

// canManage reports whether the user created the task or administers its team.
func (a taskAccess) canManage(task *models.Task, userID uint64) (bool, error) {
	teamAdmin := false
	if task.TeamID != nil && task.CreatorID != userID {
		team, err := a.teamRepo.FindByID(*task.TeamID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("failed to find team: %w", err)
		}
		teamAdmin = err == nil && authz.IsTeamAdmin(*team, userID)
	}
	return authz.CanManageTask(*task, userID, teamAdmin), nil
}

// sharesTeam reports whether two users belong to at least one common team.
func (a taskAccess) sharesTeam(userID, otherID uint64) (bool, error) {
	if userID == otherID {
		return true, nil
	}

	mine, err := a.teamRepo.TeamIDsForUser(userID)
	if err != nil {
		return false, fmt.Errorf("failed to list teams: %w", err)
	}
	theirs, err := a.teamRepo.TeamIDsForUser(otherID)
	if err != nil {
		return false, fmt.Errorf("failed to list teams: %w", err)
	}

	set := make(map[uint64]struct{}, len(mine))
	for _, id := range mine {
		set[id] = struct{}{}
	}
	for _, id := range theirs {
		if _, ok := set[id]; ok {
			return true, nil
		}
	}
	return false, nil
}

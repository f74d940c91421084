package repository

import (
	"github.com/yukikurage/team-task-api/internal/models"
	"gorm.io/gorm"
)

// deleteTasks removes the given tasks and every row hanging off them.
func deleteTasks(tx *gorm.DB, taskIDs []uint64) error {
	if len(taskIDs) == 0 {
		return nil
	}

	if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskAssignment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Notification{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", taskIDs).Delete(&models.Task{}).Error
}

// deleteTasksWhere removes the tasks matching the condition with their children.
func deleteTasksWhere(tx *gorm.DB, query interface{}, args ...interface{}) error {
	var taskIDs []uint64
	if err := tx.Model(&models.Task{}).Where(query, args...).Pluck("id", &taskIDs).Error; err != nil {
		return err
	}
	return deleteTasks(tx, taskIDs)
}

// deleteTeams removes the given teams with their projects, tasks and memberships.
func deleteTeams(tx *gorm.DB, teamIDs []uint64) error {
	if len(teamIDs) == 0 {
		return nil
	}

	var projectIDs []uint64
	if err := tx.Model(&models.Project{}).Where("team_id IN ?", teamIDs).Pluck("id", &projectIDs).Error; err != nil {
		return err
	}

	if err := deleteTasksWhere(tx, "team_id IN ?", teamIDs); err != nil {
		return err
	}
	if len(projectIDs) > 0 {
		if err := deleteTasksWhere(tx, "project_id IN ?", projectIDs); err != nil {
			return err
		}
		if err := tx.Where("id IN ?", projectIDs).Delete(&models.Project{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("team_id IN ?", teamIDs).Delete(&models.TeamMember{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", teamIDs).Delete(&models.Team{}).Error
}

package database

import (
	"fmt"
	"log"

	"github.com/yukikurage/team-task-api/internal/models"
	"gorm.io/gorm"
)

type index struct {
	model   interface{}
	table   string
	name    string
	columns string
}

// indexes covers the lookups behind the task universe and the dashboard reports.
var indexes = []index{
	// Task indexes for the three universe sources and sorting
	{&models.Task{}, "tasks", "idx_tasks_creator_id", "creator_id"},
	{&models.Task{}, "tasks", "idx_tasks_team_id", "team_id"},
	{&models.Task{}, "tasks", "idx_tasks_project_id", "project_id"},
	{&models.Task{}, "tasks", "idx_tasks_status", "status"},
	{&models.Task{}, "tasks", "idx_tasks_due_date", "due_date"},
	{&models.Task{}, "tasks", "idx_tasks_created_at", "created_at"},

	// Team members by user (the composite key already covers team_id first)
	{&models.TeamMember{}, "team_members", "idx_team_members_user_id", "user_id"},

	// Assignments by assignee
	{&models.TaskAssignment{}, "task_assignments", "idx_task_assignments_assigned_to", "assigned_to"},

	{&models.Project{}, "projects", "idx_projects_team_id", "team_id"},
	{&models.Comment{}, "comments", "idx_comments_task_id", "task_id"},
}

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("[database][migrate] created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}

// MigrateDatabase runs the migration steps that follow AutoMigrate
func MigrateDatabase(db *gorm.DB) error {
	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}

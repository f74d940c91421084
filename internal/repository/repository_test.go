package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-task-api/internal/database"
	"github.com/yukikurage/team-task-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(database.Models...))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedTeam(t *testing.T, db *gorm.DB, name string, admin *models.User) *models.Team {
	t.Helper()
	team := &models.Team{Name: name, AdminID: admin.ID}
	require.NoError(t, NewTeamRepository(db).CreateWithAdmin(team, &models.TeamMember{JoinedAt: time.Now()}))
	return team
}

func seedTask(t *testing.T, db *gorm.DB, title string, creator *models.User, teamID *uint64) *models.Task {
	t.Helper()
	now := time.Now()
	task := &models.Task{
		Title:     title,
		StartDate: now,
		DueDate:   now.Add(48 * time.Hour),
		Priority:  models.PriorityMedium,
		Status:    models.TaskStatusPending,
		CreatorID: creator.ID,
		TeamID:    teamID,
	}
	require.NoError(t, NewTaskRepository(db).CreateWithAssignments(task, nil))
	return task
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&count).Error)
	return count
}

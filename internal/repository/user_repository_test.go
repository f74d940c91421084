package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-task-api/internal/models"
)

func TestUserRepository_CreateWithStats(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	user := &models.User{Name: "Ada", Username: "ada", Email: "ada@example.com", PasswordHash: "x"}
	require.NoError(t, repo.CreateWithStats(user))
	require.NotZero(t, user.ID)

	stats, err := NewStatsRepository(db).FindByUserID(user.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalTasks)
	assert.Zero(t, stats.CompletionRate)
}

func TestUserRepository_CreateWithStats_DuplicateEmailRollsBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	require.NoError(t, repo.CreateWithStats(&models.User{Name: "A", Username: "a", Email: "same@example.com", PasswordHash: "x"}))

	err := repo.CreateWithStats(&models.User{Name: "B", Username: "b", Email: "same@example.com", PasswordHash: "x"})
	require.ErrorIs(t, err, ErrCreateUser)

	assert.Equal(t, int64(1), countRows(t, db, &models.User{}, "email = ?", "same@example.com"))
	assert.Equal(t, int64(1), countRows(t, db, &models.DashboardStats{}, "1 = 1"))
}

func TestUserRepository_FindByEmailAndUsername(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	user := seedUser(t, db, "grace")

	byEmail, err := repo.FindByEmail("grace@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byUsername, err := repo.FindByUsername("grace")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUsername.ID)

	count, err := repo.CountByIDs([]uint64{user.ID, user.ID + 100})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	owner := seedUser(t, db, "owner")
	other := seedUser(t, db, "other")
	team := seedTeam(t, db, "Core", owner)
	teamTask := seedTask(t, db, "team task", other, &team.ID)
	ownTask := seedTask(t, db, "own task", owner, nil)
	otherTask := seedTask(t, db, "other task", other, nil)

	require.NoError(t, db.Create(&models.TaskAssignment{TaskID: otherTask.ID, AssignedByID: other.ID, AssignedToID: owner.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{TaskID: otherTask.ID, UserID: owner.ID, Comment: "hi"}).Error)
	require.NoError(t, db.Create(&models.Notification{UserID: owner.ID, Message: "assigned"}).Error)
	require.NoError(t, db.Create(&models.DashboardStats{UserID: owner.ID, UpdatedAt: time.Now()}).Error)

	require.NoError(t, repo.Delete(owner.ID))

	assert.Equal(t, int64(0), countRows(t, db, &models.User{}, "id = ?", owner.ID))
	assert.Equal(t, int64(0), countRows(t, db, &models.Team{}, "id = ?", team.ID))
	assert.Equal(t, int64(0), countRows(t, db, &models.TeamMember{}, "team_id = ?", team.ID))
	assert.Equal(t, int64(0), countRows(t, db, &models.Task{}, "id IN ?", []uint64{teamTask.ID, ownTask.ID}))
	assert.Equal(t, int64(0), countRows(t, db, &models.TaskAssignment{}, "assigned_to = ?", owner.ID))
	assert.Equal(t, int64(0), countRows(t, db, &models.Comment{}, "user_id = ?", owner.ID))
	assert.Equal(t, int64(0), countRows(t, db, &models.Notification{}, "user_id = ?", owner.ID))
	assert.Equal(t, int64(0), countRows(t, db, &models.DashboardStats{}, "user_id = ?", owner.ID))

	assert.Equal(t, int64(1), countRows(t, db, &models.Task{}, "id = ?", otherTask.ID))
	assert.Equal(t, int64(1), countRows(t, db, &models.User{}, "id = ?", other.ID))
}

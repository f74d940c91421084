package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-task-api/internal/config"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		driver  string
		want    string
		wantErr bool
	}{
		{driver: "", want: "mysql"},
		{driver: "mysql", want: "mysql"},
		{driver: "postgres", want: "postgres"},
		{driver: "sqlite", want: "sqlite"},
		{driver: "oracle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := Dialector(&config.Config{DBDriver: tt.driver, SQLitePath: "test.db"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func TestMigrate_CreatesTablesAndIndexes(t *testing.T) {
	db := setupTestDB(t)
	SetDB(db)

	require.NoError(t, Migrate())
	// idempotent
	require.NoError(t, Migrate())

	for _, m := range Models {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.True(t, db.Migrator().HasIndex(&models.Task{}, "idx_tasks_due_date"))
	assert.True(t, db.Migrator().HasIndex(&models.TaskAssignment{}, "idx_task_assignments_assigned_to"))
}

func TestScopes_NewestFirstAndPaginate(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.AutoMigrate(Models...))

	user := models.User{Name: "a", Username: "a", Email: "a@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	for _, title := range []string{"first", "second", "third"} {
		require.NoError(t, db.Create(&models.Task{Title: title, CreatorID: user.ID, Priority: models.PriorityLow, Status: models.TaskStatusPending}).Error)
	}

	var tasks []models.Task
	err := db.Scopes(NewestFirst("tasks"), Paginate(utils.PaginationParams{Page: 1, Limit: 2, Offset: 0})).Find(&tasks).Error
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "third", tasks[0].Title)
	assert.Equal(t, "second", tasks[1].Title)

	err = db.Scopes(NewestFirst("tasks"), Paginate(utils.PaginationParams{Page: 2, Limit: 2, Offset: 2})).Find(&tasks).Error
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "first", tasks[0].Title)
}

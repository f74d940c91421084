package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-task-api/internal/constants"
	"github.com/yukikurage/team-task-api/internal/database"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/pdf"
	"github.com/yukikurage/team-task-api/internal/repository"
	"github.com/yukikurage/team-task-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type handlerTestEnv struct {
	db           *gorm.DB
	authService  *services.AuthService
	teamService  *services.TeamService
	taskService  *services.TaskService
	tokenService *services.TokenService

	auth         *AuthHandler
	users        *UserHandler
	teams        *TeamHandler
	projects     *ProjectHandler
	tasks        *TaskHandler
	comments     *CommentHandler
	dashboard    *DashboardHandler
	notification *NotificationHandler
}

func setupHandlerTestEnv(t *testing.T) handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	authService := services.NewAuthService(userRepo)
	tokenService := services.NewTokenService("test-secret", time.Hour)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, nil)
	teamService := services.NewTeamService(teamRepo, userRepo, taskRepo)
	taskService := services.NewTaskService(taskRepo, teamRepo, projectRepo, userRepo, notificationService, nil)

	return handlerTestEnv{
		db:           db,
		authService:  authService,
		teamService:  teamService,
		taskService:  taskService,
		tokenService: tokenService,

		auth:         NewAuthHandler(authService, tokenService),
		users:        NewUserHandler(services.NewUserService(userRepo, teamRepo, notificationRepo, statsRepo)),
		teams:        NewTeamHandler(teamService),
		projects:     NewProjectHandler(services.NewProjectService(projectRepo, teamRepo, taskRepo)),
		tasks:        NewTaskHandler(taskService),
		comments:     NewCommentHandler(services.NewCommentService(commentRepo, taskRepo, teamRepo)),
		dashboard:    NewDashboardHandler(services.NewDashboardService(taskRepo, teamRepo, projectRepo, userRepo, statsRepo), pdf.NewWeeklyReportGenerator()),
		notification: NewNotificationHandler(notificationService),
	}
}

func (env handlerTestEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := env.authService.Register(services.RegisterInput{
		Name:     username,
		Username: username,
		Email:    username + "@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	return user
}

func (env handlerTestEnv) createTeam(t *testing.T, name string, admin *models.User, members ...*models.User) *models.Team {
	t.Helper()
	team, err := env.teamService.CreateTeam(services.CreateTeamInput{Name: name, AdminID: admin.ID})
	require.NoError(t, err)
	for _, m := range members {
		_, err := env.teamService.AddMember(services.AddMemberInput{
			TeamID:   team.ID,
			ActorID:  admin.ID,
			Username: m.Username,
		})
		require.NoError(t, err)
	}
	return team
}

func (env handlerTestEnv) createTask(t *testing.T, title string, creator *models.User, teamID *uint64, assignees ...uint64) *models.Task {
	t.Helper()
	start := time.Now().Add(-time.Hour)
	task, err := env.taskService.CreateTask(services.CreateTaskInput{
		Title:      title,
		StartDate:  start,
		DueDate:    start.Add(48 * time.Hour),
		Priority:   models.PriorityMedium,
		Category:   "Backend",
		Status:     models.TaskStatusPending,
		TeamID:     teamID,
		AssignedTo: assignees,
		CreatorID:  creator.ID,
	})
	require.NoError(t, err)
	return task
}

// createAuthContext builds a context for calling a handler directly as userID.
// A zero userID leaves the context anonymous.
func createAuthContext(method, url string, body interface{}, userID uint64, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		raw, _ := json.Marshal(body)
		req = httptest.NewRequest(method, url, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params
	if userID != 0 {
		c.Set(constants.ContextKeyUserID, userID)
	}

	return c, w
}

func idParamOf(name string, id uint64) gin.Param {
	return gin.Param{Key: name, Value: strconv.FormatUint(id, 10)}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&count).Error)
	return count
}

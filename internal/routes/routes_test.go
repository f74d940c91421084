package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-task-api/internal/constants"
	"github.com/yukikurage/team-task-api/internal/database"
	"github.com/yukikurage/team-task-api/internal/handlers"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/pdf"
	"github.com/yukikurage/team-task-api/internal/repository"
	"github.com/yukikurage/team-task-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type apiClient struct {
	t       *testing.T
	router  *gin.Engine
	cookies []*http.Cookie
	bearer  string
}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
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

	database.SetDB(db)
	require.NoError(t, database.Migrate())

	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	tokenService := services.NewTokenService("test-secret", time.Hour)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, nil)
	taskService := services.NewTaskService(taskRepo, teamRepo, projectRepo, userRepo, notificationService, nil)

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))

	SetupRoutes(r, Handlers{
		Auth:         handlers.NewAuthHandler(services.NewAuthService(userRepo), tokenService),
		User:         handlers.NewUserHandler(services.NewUserService(userRepo, teamRepo, notificationRepo, statsRepo)),
		Team:         handlers.NewTeamHandler(services.NewTeamService(teamRepo, userRepo, taskRepo)),
		Project:      handlers.NewProjectHandler(services.NewProjectService(projectRepo, teamRepo, taskRepo)),
		Task:         handlers.NewTaskHandler(taskService),
		Comment:      handlers.NewCommentHandler(services.NewCommentService(commentRepo, taskRepo, teamRepo)),
		Dashboard:    handlers.NewDashboardHandler(services.NewDashboardService(taskRepo, teamRepo, projectRepo, userRepo, statsRepo), pdf.NewWeeklyReportGenerator()),
		Notification: handlers.NewNotificationHandler(notificationService),
	}, tokenService, taskService)

	return r, db
}

func (a *apiClient) do(method, path string, payload interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(a.t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range a.cookies {
		req.AddCookie(c)
	}
	if a.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+a.bearer)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *apiClient) decode(w *httptest.ResponseRecorder, v interface{}) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// signUp registers a user and returns a client holding their session cookie
func signUp(t *testing.T, r *gin.Engine, username string) (*apiClient, uint64) {
	t.Helper()
	anon := &apiClient{t: t, router: r}

	w := anon.do(http.MethodPost, "/api/register", map[string]string{
		"name":     username,
		"username": username,
		"email":    username + "@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user struct {
		ID uint64 `json:"id"`
	}
	anon.decode(w, &user)

	w = anon.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    username + "@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	return &apiClient{t: t, router: r, cookies: w.Result().Cookies()}, user.ID
}

func id(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func TestRoutes_HealthAndRequestID(t *testing.T) {
	r, _ := setupRouter(t)
	client := &apiClient{t: t, router: r}

	w := client.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRoutes_ProtectedRoutesRequireSession(t *testing.T) {
	r, _ := setupRouter(t)
	client := &apiClient{t: t, router: r}

	for _, path := range []string{"/api/auth/me", "/api/tasks", "/api/teams", "/api/dashboard/statistics", "/api/notifications"} {
		w := client.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := client.do(http.MethodPost, "/api/tasks/assign", map[string]uint64{"taskId": 1, "assignedToId": 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutes_LogoutEndsSession(t *testing.T) {
	r, _ := setupRouter(t)
	alice, _ := signUp(t, r, "alice")

	w := alice.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = alice.do(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	alice.cookies = w.Result().Cookies()

	w = alice.do(http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutes_BearerToken(t *testing.T) {
	r, _ := setupRouter(t)
	_, aliceID := signUp(t, r, "alice")
	anon := &apiClient{t: t, router: r}

	w := anon.do(http.MethodPost, "/api/auth/token", map[string]string{
		"email":    "alice@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var token struct {
		Token string `json:"token"`
	}
	anon.decode(w, &token)

	client := &apiClient{t: t, router: r, bearer: token.Token}
	w = client.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		ID uint64 `json:"id"`
	}
	client.decode(w, &me)
	assert.Equal(t, aliceID, me.ID)
}

func TestRoutes_TeamTaskFlow(t *testing.T) {
	r, db := setupRouter(t)
	alice, aliceID := signUp(t, r, "alice")
	bob, bobID := signUp(t, r, "bob")
	carol, _ := signUp(t, r, "carol")

	// alice creates a team and adds bob
	w := alice.do(http.MethodPost, "/api/teams", map[string]string{"name": "Platform"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var team struct {
		ID uint64 `json:"id"`
	}
	alice.decode(w, &team)

	w = alice.do(http.MethodPost, "/api/teams/"+id(team.ID)+"/members", map[string]string{"username": "bob"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = carol.do(http.MethodGet, "/api/teams/"+id(team.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// bob cannot remove alice's members
	w = bob.do(http.MethodDelete, "/api/teams/"+id(team.ID)+"/members/"+id(aliceID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// outsiders get 403 on member management, not 404
	w = carol.do(http.MethodDelete, "/api/teams/"+id(team.ID)+"/members/"+id(bobID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = carol.do(http.MethodPost, "/api/teams/"+id(team.ID)+"/members", map[string]string{"username": "carol"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// task with two assignees
	w = alice.do(http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":      "Ship it",
		"startDate":  "2024-03-18",
		"dueDate":    "2024-03-22",
		"priority":   "High",
		"category":   "Release",
		"status":     "In Progress",
		"progress":   40,
		"teamId":     team.ID,
		"assignedTo": []uint64{aliceID, bobID},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var task struct {
		ID uint64 `json:"id"`
	}
	alice.decode(w, &task)

	var assignments int64
	require.NoError(t, db.Model(&models.TaskAssignment{}).Where("task_id = ?", task.ID).Count(&assignments).Error)
	assert.EqualValues(t, 2, assignments)

	// static segments under /tasks resolve next to /tasks/:id
	w = bob.do(http.MethodGet, "/api/tasks/assigned/"+id(bobID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = bob.do(http.MethodGet, "/api/tasks/completion-rate/"+id(aliceID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = bob.do(http.MethodGet, "/api/tasks/"+id(task.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = carol.do(http.MethodGet, "/api/tasks/"+id(task.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = bob.do(http.MethodPost, "/api/tasks/comments", map[string]interface{}{"taskId": task.ID, "comment": "on it"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = alice.do(http.MethodGet, "/api/tasks/"+id(task.ID)+"/comments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "on it")

	w = bob.do(http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ship it")

	w = alice.do(http.MethodGet, "/api/dashboard/weekly-report/pdf?date=2024-03-20", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	// deleting the team removes its tasks and their assignments
	w = alice.do(http.MethodDelete, "/api/teams/"+id(team.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, db.Model(&models.TaskAssignment{}).Where("task_id = ?", task.ID).Count(&assignments).Error)
	assert.EqualValues(t, 0, assignments)
}

package middleware

import (
	"errors"
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
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"github.com/yukikurage/team-task-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type staticTokens map[string]uint64

func (s staticTokens) Parse(token string) (uint64, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return 0, errors.New("invalid token")
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	return r
}

// asUser stands in for RequireAuth in routes that only exercise later middleware
func asUser(userID uint64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

func echoUser(c *gin.Context) {
	userID, _ := GetUserID(c)
	c.JSON(http.StatusOK, gin.H{"userId": userID})
}

func TestRequireAuth_RejectsAnonymousRequests(t *testing.T) {
	r := newRouter()
	r.GET("/me", RequireAuth(staticTokens{}), echoUser)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestRequireAuth_AcceptsBearerToken(t *testing.T) {
	r := newRouter()
	r.GET("/me", RequireAuth(staticTokens{"good": 7}), echoUser)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":7}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bad")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_AcceptsSession(t *testing.T) {
	r := newRouter()
	r.POST("/login", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(constants.ContextKeyUserID, uint64(3))
		require.NoError(t, session.Save())
		c.Status(http.StatusOK)
	})
	r.GET("/me", RequireAuth(nil), echoUser)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":3}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	r := newRouter()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(constants.ContextKeyRequestID))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get("X-Request-ID")
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func setupTeamDB(t *testing.T) (admin, member, outsider models.User, team models.Team) {
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
	database.SetDB(db)

	users := []*models.User{&admin, &member, &outsider}
	for i, name := range []string{"admin", "member", "outsider"} {
		*users[i] = models.User{Name: name, Username: name, Email: name + "@example.com", PasswordHash: "x"}
		require.NoError(t, db.Create(users[i]).Error)
	}

	teamRepo := repository.NewTeamRepository(db)
	team = models.Team{Name: "Platform", AdminID: admin.ID}
	require.NoError(t, teamRepo.CreateWithAdmin(&team, &models.TeamMember{JoinedAt: time.Now()}))
	require.NoError(t, teamRepo.AddMember(&models.TeamMember{
		TeamID:   team.ID,
		UserID:   member.ID,
		Role:     models.RoleMember,
		JoinedAt: time.Now(),
	}))
	return admin, member, outsider, team
}

func TestRequireTeamAccessAndAdmin(t *testing.T) {
	admin, member, outsider, team := setupTeamDB(t)

	serve := func(userID uint64, action string) int {
		r := newRouter()
		r.GET("/teams/:id", asUser(userID), RequireTeamAccess(), func(c *gin.Context) {
			got, ok := GetTeam(c)
			require.True(t, ok)
			c.JSON(http.StatusOK, gin.H{"id": got.ID})
		})
		r.DELETE("/teams/:id", asUser(userID), RequireTeamAccess(), RequireTeamAdmin(), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		method := http.MethodGet
		if action == "admin" {
			method = http.MethodDelete
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, "/teams/"+strconv.FormatUint(team.ID, 10), nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, serve(member.ID, "view"))
	assert.Equal(t, http.StatusNotFound, serve(outsider.ID, "view"))
	assert.Equal(t, http.StatusForbidden, serve(member.ID, "admin"))
	assert.Equal(t, http.StatusNoContent, serve(admin.ID, "admin"))
}

func TestRequireTeamAccess_BadID(t *testing.T) {
	r := newRouter()
	r.GET("/teams/:id", asUser(1), RequireTeamAccess(), echoUser)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/teams/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakeTaskLoader struct {
	task *models.Task
	err  error
}

func (f fakeTaskLoader) GetTaskForUser(taskID, userID uint64) (*models.Task, error) {
	return f.task, f.err
}

func TestRequireTaskAccess(t *testing.T) {
	visible := fakeTaskLoader{task: &models.Task{ID: 5, Title: "Visible"}}
	hidden := fakeTaskLoader{err: services.ErrTaskNotFound}

	for _, tc := range []struct {
		name   string
		loader TaskLoader
		want   int
	}{
		{"visible", visible, http.StatusOK},
		{"hidden", hidden, http.StatusNotFound},
		{"failure", fakeTaskLoader{err: errors.New("boom")}, http.StatusInternalServerError},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter()
			r.GET("/tasks/:id", asUser(1), RequireTaskAccess(tc.loader), func(c *gin.Context) {
				task, ok := GetTask(c)
				require.True(t, ok)
				c.JSON(http.StatusOK, gin.H{"title": task.Title})
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/5", nil))
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

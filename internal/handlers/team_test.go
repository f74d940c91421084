package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-task-api/internal/constants"
	"github.com/yukikurage/team-task-api/internal/dto"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/middleware"
	"github.com/yukikurage/team-task-api/internal/models"
)

// newTeamRouter mounts the team routes with the production middleware chain,
// authenticating every request as userID.
func newTeamRouter(env handlerTestEnv, userID uint64) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	})
	r.GET("/teams/:id", middleware.RequireTeamAccess(), env.teams.GetTeam)
	r.PUT("/teams/:id", middleware.RequireTeamAccess(), middleware.RequireTeamAdmin(), env.teams.UpdateTeam)
	r.GET("/teams/:id/members", middleware.RequireTeamAccess(), middleware.RequireTeamAdmin(), env.teams.ListMembers)
	r.POST("/teams/:id/members", env.teams.AddMember)
	r.DELETE("/teams/:id/members/:user_id", env.teams.RemoveMember)
	r.GET("/teams/:id/tasks", middleware.RequireTeamAccess(), env.teams.ListTeamTasks)
	return r
}

func teamPath(teamID uint64, rest string) string {
	return "/teams/" + strconv.FormatUint(teamID, 10) + rest
}

func serve(r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	c, w := createAuthContext(method, path, payload, 0)
	r.ServeHTTP(w, c.Request)
	return w
}

func TestTeamHandler_CreateTeam(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := env.createUser(t, "admin")

	c, w := createAuthContext(http.MethodPost, "/api/teams", map[string]string{
		"name":        "Platform",
		"description": "Infra work",
	}, admin.ID)
	env.teams.CreateTeam(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.TeamDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Platform", response.Name)
	assert.Equal(t, admin.ID, response.AdminID)

	assert.EqualValues(t, 1, countRows(t, env.db, &models.TeamMember{}, "team_id = ?", response.ID))
	assert.EqualValues(t, 1, countRows(t, env.db, &models.TeamMember{}, "team_id = ? AND user_id = ? AND role = ?", response.ID, admin.ID, models.RoleAdmin))
}

func TestTeamHandler_CreateTeam_MissingName(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := env.createUser(t, "admin")

	c, w := createAuthContext(http.MethodPost, "/api/teams", map[string]string{"description": "x"}, admin.ID)
	env.teams.CreateTeam(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.EqualValues(t, 0, countRows(t, env.db, &models.Team{}, "admin_id = ?", admin.ID))
}

func TestTeamHandler_GetTeam_NonMemberGets404(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := env.createUser(t, "admin")
	outsider := env.createUser(t, "outsider")
	team := env.createTeam(t, "Platform", admin)

	w := serve(newTeamRouter(env, outsider.ID), http.MethodGet, teamPath(team.ID, ""), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(newTeamRouter(env, admin.ID), http.MethodGet, teamPath(team.ID, ""), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.TeamDetailDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, models.RoleAdmin, response.YourRole)
	assert.Len(t, response.Members, 1)
}

func TestTeamHandler_AddMember(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := env.createUser(t, "admin")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")
	dave := env.createUser(t, "dave")
	team := env.createTeam(t, "Platform", admin, carol)

	tests := []struct {
		name     string
		actor    uint64
		payload  map[string]string
		wantCode int
	}{
		{name: "admin adds member", actor: admin.ID, payload: map[string]string{"username": "bob", "role": "MANAGER"}, wantCode: http.StatusOK},
		{name: "duplicate member", actor: admin.ID, payload: map[string]string{"username": "bob"}, wantCode: http.StatusConflict},
		{name: "invalid role", actor: admin.ID, payload: map[string]string{"username": "carol", "role": "OWNER"}, wantCode: http.StatusBadRequest},
		{name: "admin role reserved", actor: admin.ID, payload: map[string]string{"username": "carol", "role": "ADMIN"}, wantCode: http.StatusBadRequest},
		{name: "unknown user", actor: admin.ID, payload: map[string]string{"username": "nobody"}, wantCode: http.StatusNotFound},
		{name: "non-admin member", actor: carol.ID, payload: map[string]string{"username": "bob"}, wantCode: http.StatusForbidden},
		{name: "outsider", actor: dave.ID, payload: map[string]string{"username": "dave"}, wantCode: http.StatusForbidden},
		{name: "missing username", actor: admin.ID, payload: map[string]string{"role": "MEMBER"}, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(newTeamRouter(env, tt.actor), http.MethodPost, teamPath(team.ID, "/members"), tt.payload)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}

	assert.EqualValues(t, 1, countRows(t, env.db, &models.TeamMember{}, "team_id = ? AND user_id = ? AND role = ?", team.ID, bob.ID, models.RoleManager))
}

func TestTeamHandler_RemoveMember_NonAdminForbidden(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := env.createUser(t, "admin")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")
	mallory := env.createUser(t, "mallory")
	team := env.createTeam(t, "Platform", admin, bob, carol)
	carolPath := teamPath(team.ID, "/members/"+strconv.FormatUint(carol.ID, 10))

	w := serve(newTeamRouter(env, bob.ID), http.MethodDelete, carolPath, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(newTeamRouter(env, mallory.ID), http.MethodDelete, carolPath, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var body apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apierrors.ErrCodeInsufficientPermissions, body.Code)
	assert.EqualValues(t, 1, countRows(t, env.db, &models.TeamMember{}, "team_id = ? AND user_id = ?", team.ID, carol.ID))

	w = serve(newTeamRouter(env, mallory.ID), http.MethodDelete, teamPath(999, "/members/"+strconv.FormatUint(carol.ID, 10)), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTeamHandler_RemoveMember(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := env.createUser(t, "admin")
	bob := env.createUser(t, "bob")
	team := env.createTeam(t, "Platform", admin, bob)
	r := newTeamRouter(env, admin.ID)

	w := serve(r, http.MethodDelete, teamPath(team.ID, "/members/"+strconv.FormatUint(admin.ID, 10)), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodDelete, teamPath(team.ID, "/members/"+strconv.FormatUint(bob.ID, 10)), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, countRows(t, env.db, &models.TeamMember{}, "team_id = ? AND user_id = ?", team.ID, bob.ID))

	w = serve(r, http.MethodDelete, teamPath(team.ID, "/members/"+strconv.FormatUint(bob.ID, 10)), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTeamHandler_AdminOnlyRoutes(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := env.createUser(t, "admin")
	bob := env.createUser(t, "bob")
	team := env.createTeam(t, "Platform", admin, bob)

	w := serve(newTeamRouter(env, bob.ID), http.MethodGet, teamPath(team.ID, "/members"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(newTeamRouter(env, bob.ID), http.MethodPut, teamPath(team.ID, ""), map[string]string{"name": "Renamed"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(newTeamRouter(env, admin.ID), http.MethodGet, teamPath(team.ID, "/members"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var members []dto.TeamMemberDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &members))
	assert.Len(t, members, 2)
}

func TestTeamHandler_ListTeamTasks(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := env.createUser(t, "admin")
	bob := env.createUser(t, "bob")
	team := env.createTeam(t, "Platform", admin, bob)
	env.createTask(t, "first", admin, &team.ID)
	env.createTask(t, "second", bob, &team.ID, admin.ID)

	w := serve(newTeamRouter(env, bob.ID), http.MethodGet, teamPath(team.ID, "/tasks"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tasks []dto.TaskDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	require.Len(t, tasks, 2)
	assert.Equal(t, "second", tasks[0].Title)
	assert.Len(t, tasks[0].Assignments, 1)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-task-api/internal/constants"
	"github.com/yukikurage/team-task-api/internal/dto"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/middleware"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/services"
)

// TeamHandler serves team and membership endpoints. Routes with a team ID run
// behind RequireTeamAccess, and mutations also behind RequireTeamAdmin.
type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// CreateTeam creates a team with the current user as its admin.
//
// @Summary      Create team
// @Tags         Teams
// @Accept       json
// @Produce      json
// @Success      200  {object}  dto.TeamDTO
// @Failure      400  {object}  apierrors.APIError
// @Failure      401  {object}  apierrors.APIError
// @Router       /teams [post]
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	type CreateTeamRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid request body")
		return
	}

	team, err := h.teamService.CreateTeam(services.CreateTeamInput{
		Name:        req.Name,
		Description: req.Description,
		AdminID:     userID,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*team))
}

// ListTeams returns the teams the user belongs to with their role in each.
func (h *TeamHandler) ListTeams(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	memberships, err := h.teamService.ListTeamsForUser(userID)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamWithRoleDTOs(memberships))
}

// GetTeam returns a team with its members.
func (h *TeamHandler) GetTeam(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	_, members, err := h.teamService.GetTeamWithMembers(team.ID)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	var yourRole models.TeamRole
	if member, ok := c.Get(constants.ContextKeyMember); ok {
		if m, ok := member.(models.TeamMember); ok {
			yourRole = m.Role
		}
	}

	c.JSON(http.StatusOK, dto.ToTeamDetailDTO(team, members, yourRole))
}

// UpdateTeam updates the team's name or description.
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	type UpdateTeamRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}

	var req UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid request body")
		return
	}

	updated, err := h.teamService.UpdateTeam(team.ID, services.UpdateTeamInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*updated))
}

// DeleteTeam deletes the team with its projects, tasks and memberships.
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	if err := h.teamService.DeleteTeam(team.ID); err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Team deleted successfully",
	})
}

// ListMembers returns the members of the team.
func (h *TeamHandler) ListMembers(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	members, err := h.teamService.ListMembers(team.ID)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamMemberDTOs(members))
}

// AddMember adds a user to the team by username.
//
// @Summary      Add team member
// @Tags         Teams
// @Accept       json
// @Produce      json
// @Param        id   path      int  true  "Team ID"
// @Success      200  {object}  dto.TeamMemberDTO
// @Failure      400  {object}  apierrors.APIError
// @Failure      403  {object}  apierrors.APIError
// @Failure      404  {object}  apierrors.APIError
// @Failure      409  {object}  apierrors.APIError
// @Router       /teams/{id}/members [post]
func (h *TeamHandler) AddMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	teamID, ok := idParam(c, "id", "team ID")
	if !ok {
		return
	}

	type AddMemberRequest struct {
		Username string          `json:"username" binding:"required"`
		Role     models.TeamRole `json:"role"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid request body")
		return
	}

	member, err := h.teamService.AddMember(services.AddMemberInput{
		TeamID:   teamID,
		ActorID:  userID,
		Username: req.Username,
		Role:     req.Role,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamMemberDTO(*member))
}

// RemoveMember removes a member from the team.
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	teamID, ok := idParam(c, "id", "team ID")
	if !ok {
		return
	}
	targetID, ok := idParam(c, "user_id", "user ID")
	if !ok {
		return
	}

	if err := h.teamService.RemoveMember(teamID, userID, targetID); err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

// ListTeamTasks returns the team's tasks, newest first.
func (h *TeamHandler) ListTeamTasks(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	tasks, err := h.teamService.ListTeamTasks(team.ID)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

func respondTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidTeamName):
		apierrors.MissingField(c, "name")
	case errors.Is(err, services.ErrInvalidRole):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrRoleReserved),
		errors.Is(err, services.ErrCannotRemoveAdmin):
		apierrors.InvalidOperation(c, err.Error())
	case errors.Is(err, services.ErrNotTeamAdmin):
		apierrors.InsufficientPermissions(c, err.Error())
	case errors.Is(err, services.ErrNotTeamMember):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTeamMemberNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAlreadyTeamMember):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrFailedToCreateTeam),
		errors.Is(err, services.ErrFailedToAddTeamUser):
		apierrors.InternalError(c, err.Error())
	default:
		internalError(c, "[team]", err)
	}
}

package middleware

import (
	"errors"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-task-api/internal/authz"
	"github.com/yukikurage/team-task-api/internal/constants"
	"github.com/yukikurage/team-task-api/internal/database"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"gorm.io/gorm"
)

// RequireTeamAccess checks if the user is a member of the team in the :id parameter
func RequireTeamAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.InvalidFormat(c, "Invalid team ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		teamRepo := repository.NewTeamRepository(database.GetDB())

		team, err := teamRepo.FindByID(teamID)
		if err != nil {
			respondLookupError(c, err, "Team not found")
			return
		}

		member, err := teamRepo.FindMember(teamID, userID)
		if err != nil {
			// Non-members get 404 so team existence is not leaked
			respondLookupError(c, err, "Team not found")
			return
		}

		c.Set(constants.ContextKeyTeam, *team)
		c.Set(constants.ContextKeyMember, *member)
		c.Next()
	}
}

// RequireTeamAdmin checks if the user administers the team loaded by RequireTeamAccess
func RequireTeamAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		team, ok := GetTeam(c)
		if !ok {
			apierrors.Forbidden(c, "Team access required")
			c.Abort()
			return
		}

		userID, _ := GetUserID(c)
		if !authz.IsTeamAdmin(team, userID) {
			apierrors.InsufficientPermissions(c, "Only the team admin can perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetTeam returns the team stored by RequireTeamAccess
func GetTeam(c *gin.Context) (models.Team, bool) {
	value, exists := c.Get(constants.ContextKeyTeam)
	if !exists {
		return models.Team{}, false
	}
	team, ok := value.(models.Team)
	return team, ok
}

func respondLookupError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		apierrors.NotFound(c, notFound)
	} else {
		log.Printf("[middleware][lookup] %v", err)
		apierrors.InternalError(c, "")
	}
	c.Abort()
}

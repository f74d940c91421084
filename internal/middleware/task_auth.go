package middleware

import (
	"errors"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-task-api/internal/constants"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/services"
)

// TaskLoader loads a task on behalf of a user, hiding tasks they cannot see.
type TaskLoader interface {
	GetTaskForUser(taskID, userID uint64) (*models.Task, error)
}

// RequireTaskAccess checks if the user can see the task in the :id parameter.
// The creator, the assignees and members of the task's team can.
func RequireTaskAccess(tasks TaskLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.InvalidFormat(c, "Invalid task ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		task, err := tasks.GetTaskForUser(taskID, userID)
		if err != nil {
			if errors.Is(err, services.ErrTaskNotFound) {
				// Return 404 instead of 403 to avoid leaking task existence
				apierrors.NotFound(c, "Task not found")
			} else {
				log.Printf("[middleware][task] failed to load task %d: %v", taskID, err)
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, *task)
		c.Next()
	}
}

// GetTask returns the task stored by RequireTaskAccess
func GetTask(c *gin.Context) (models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.Task{}, false
	}
	task, ok := value.(models.Task)
	return task, ok
}

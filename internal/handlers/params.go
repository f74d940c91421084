package handlers

import (
	"errors"
	"log"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/middleware"
)

func init() {
	// Report validation failures under the JSON field names clients send
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// bindError answers a failed ShouldBindJSON. The first missing required field is
// named in the response; any other failure gets message.
func bindError(c *gin.Context, err error, message string) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Tag() == "required" {
		apierrors.MissingField(c, fieldErrs[0].Field())
		return
	}
	apierrors.BadRequest(c, message)
}

// currentUserID returns the authenticated user or writes a 401.
func currentUserID(c *gin.Context) (uint64, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, false
	}
	return userID, true
}

// idParam parses a numeric path parameter or writes a 400.
func idParam(c *gin.Context, name, label string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.InvalidFormat(c, "Invalid "+label)
		return 0, false
	}
	return id, true
}

// internalError logs the cause and answers with a generic 500.
func internalError(c *gin.Context, area string, err error) {
	log.Printf("%s %s %s: %v", area, c.Request.Method, c.FullPath(), err)
	apierrors.InternalError(c, "")
}

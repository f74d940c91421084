package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-task-api/internal/dto"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/middleware"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/services"
	"github.com/yukikurage/team-task-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks the current user created or is assigned to.
// Supports ?status= and ?page=&limit=.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	input := services.ListTasksInput{
		UserID:   userID,
		Page:     params.Page,
		PageSize: params.Limit,
	}
	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		input.Status = &s
	}

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// GetTask returns a specific task by ID
// Task is already loaded with relations by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

type createTaskRequest struct {
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description"`
	StartDate   string              `json:"startDate" binding:"required"`
	DueDate     string              `json:"dueDate" binding:"required"`
	Priority    models.TaskPriority `json:"priority" binding:"required"`
	Category    string              `json:"category"`
	Status      models.TaskStatus   `json:"status"`
	Progress    int                 `json:"progress"`
	TeamID      *uint64             `json:"teamId"`
	ProjectID   *uint64             `json:"projectId"`
	AssignedTo  []uint64            `json:"assignedTo"`
}

// CreateTask creates a new task together with its initial assignments.
//
// @Summary      Create task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        body  body      createTaskRequest  true  "Task"
// @Success      200   {object}  dto.TaskDTO
// @Failure      400   {object}  apierrors.APIError
// @Failure      403   {object}  apierrors.APIError
// @Failure      404   {object}  apierrors.APIError
// @Router       /tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid request body")
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		apierrors.InvalidFormat(c, "Invalid startDate")
		return
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		apierrors.InvalidFormat(c, "Invalid dueDate")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   startDate,
		DueDate:     dueDate,
		Priority:    req.Priority,
		Category:    req.Category,
		Status:      req.Status,
		Progress:    req.Progress,
		TeamID:      req.TeamID,
		ProjectID:   req.ProjectID,
		AssignedTo:  req.AssignedTo,
		CreatorID:   userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask updates the fields present in the body
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type UpdateTaskRequest struct {
		Title       *string              `json:"title"`
		Description *string              `json:"description"`
		StartDate   *string              `json:"startDate"`
		DueDate     *string              `json:"dueDate"`
		Priority    *models.TaskPriority `json:"priority"`
		Category    *string              `json:"category"`
		Status      *models.TaskStatus   `json:"status"`
		Progress    *int                 `json:"progress"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
		Status:      req.Status,
		Progress:    req.Progress,
	}
	if req.StartDate != nil {
		startDate, err := parseDate(*req.StartDate)
		if err != nil {
			apierrors.InvalidFormat(c, "Invalid startDate")
			return
		}
		input.StartDate = &startDate
	}
	if req.DueDate != nil {
		dueDate, err := parseDate(*req.DueDate)
		if err != nil {
			apierrors.InvalidFormat(c, "Invalid dueDate")
			return
		}
		input.DueDate = &dueDate
	}

	updated, err := h.taskService.UpdateTask(task.ID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask deletes a task with its comments and assignments
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if err := h.taskService.DeleteTask(task.ID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// AssignTask assigns a user to a task
//
// @Summary      Assign task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Success      200  {object}  dto.TaskAssignmentDTO
// @Failure      400  {object}  apierrors.APIError
// @Failure      401  {object}  apierrors.APIError
// @Failure      403  {object}  apierrors.APIError
// @Failure      404  {object}  apierrors.APIError
// @Failure      409  {object}  apierrors.APIError
// @Router       /tasks/assign [post]
func (h *TaskHandler) AssignTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	type AssignTaskRequest struct {
		TaskID       uint64 `json:"taskId"`
		AssignedToID uint64 `json:"assignedToId"`
	}

	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid request body")
		return
	}

	assignment, err := h.taskService.AssignTask(services.AssignTaskInput{
		TaskID:     req.TaskID,
		ActorID:    userID,
		AssigneeID: req.AssignedToID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskAssignmentDTO(*assignment))
}

// ListAssignees returns the users assigned to a task
func (h *TaskHandler) ListAssignees(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	users, err := h.taskService.ListAssignees(task.ID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserSummaryDTOs(users))
}

// UnassignTask removes a user's assignment from a task
func (h *TaskHandler) UnassignTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	assigneeID, ok := idParam(c, "user_id", "user ID")
	if !ok {
		return
	}

	if err := h.taskService.UnassignTask(task.ID, userID, assigneeID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User unassigned successfully",
	})
}

// ListAssignedTo returns the tasks assigned to a user
func (h *TaskHandler) ListAssignedTo(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := idParam(c, "user_id", "user ID")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListAssignedTo(actorID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// CompletionRate reports how many of the tasks a user created are completed
func (h *TaskHandler) CompletionRate(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := idParam(c, "user_id", "user ID")
	if !ok {
		return
	}

	completion, err := h.taskService.CompletionRateForUser(actorID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCompletionRateDTO(userID, completion))
}

// GenerateTasks uses AI to suggest tasks from free text. Suggestions are not saved.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid request body")
		return
	}

	tasks, err := h.taskService.GenerateTasks(c.Request.Context(), services.GenerateTasksInput{
		Text:      req.Text,
		CreatorID: userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
	})
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return t, nil
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTitleRequired):
		apierrors.MissingField(c, "title")
	case errors.Is(err, services.ErrCategoryRequired):
		apierrors.MissingField(c, "category")
	case errors.Is(err, services.ErrStatusRequired):
		apierrors.MissingField(c, "status")
	case errors.Is(err, services.ErrDatesRequired),
		errors.Is(err, services.ErrInvalidDateRange),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidProgress),
		errors.Is(err, services.ErrProjectTeamMismatch),
		errors.Is(err, services.ErrAssigneeNotTeamMember),
		errors.Is(err, services.ErrMissingAssignmentIDs):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotTeamMember),
		errors.Is(err, services.ErrTaskPermissionDenied),
		errors.Is(err, services.ErrUserPermissionDenied):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrInvalidTaskAssignee),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrAssignmentNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAlreadyAssigned):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.UnprocessableEntity(c, err.Error())
	default:
		internalError(c, "[task]", err)
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yukikurage/team-task-api/internal/authz"
	"github.com/yukikurage/team-task-api/internal/constants"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/reporting"
	"github.com/yukikurage/team-task-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTaskPermissionDenied   = errors.New("only the task creator or the team admin can perform this action")
	ErrTitleRequired          = errors.New("title is required")
	ErrDatesRequired          = errors.New("startDate and dueDate are required")
	ErrCategoryRequired       = errors.New("category is required")
	ErrStatusRequired         = errors.New("status is required")
	ErrInvalidDateRange       = errors.New("dueDate cannot be before startDate")
	ErrInvalidPriority        = errors.New("priority must be Low, Medium, High or Urgent")
	ErrInvalidStatus          = errors.New("status must be Pending, In Progress or Completed")
	ErrInvalidProgress        = errors.New("progress must be between 0 and 100")
	ErrProjectTeamMismatch    = errors.New("project does not belong to the given team")
	ErrInvalidTaskAssignee    = errors.New("one or more assignees do not exist")
	ErrAssigneeNotTeamMember  = errors.New("assignees must be members of the task's team")
	ErrMissingAssignmentIDs   = errors.New("taskId and assignedToId are required")
	ErrAlreadyAssigned        = errors.New("user is already assigned to this task")
	ErrAssignmentNotFound     = errors.New("assignment not found")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo      repository.TaskRepository
	teamRepo      repository.TeamRepository
	projectRepo   repository.ProjectRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
	aiService     *AIService
	access        taskAccess
}

// NewTaskService creates a new TaskService. notifications and aiService may be nil.
func NewTaskService(
	taskRepo repository.TaskRepository,
	teamRepo repository.TeamRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	notifications *NotificationService,
	aiService *AIService,
) *TaskService {
	return &TaskService{
		taskRepo:      taskRepo,
		teamRepo:      teamRepo,
		projectRepo:   projectRepo,
		userRepo:      userRepo,
		notifications: notifications,
		aiService:     aiService,
		access:        taskAccess{taskRepo: taskRepo, teamRepo: teamRepo},
	}
}

var taskDetailPreloads = []string{"Creator", "Team", "Project", "Assignments", "Assignments.AssignedTo"}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	StartDate   time.Time
	DueDate     time.Time
	Priority    models.TaskPriority
	Category    string
	Status      models.TaskStatus
	Progress    int
	TeamID      *uint64
	ProjectID   *uint64
	AssignedTo  []uint64
	CreatorID   uint64
}

// UpdateTaskInput represents input for updating a task. Nil fields are left untouched.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	DueDate     *time.Time
	Priority    *models.TaskPriority
	Category    *string
	Status      *models.TaskStatus
	Progress    *int
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	UserID   uint64
	Status   *models.TaskStatus
	Page     int
	PageSize int
}

// AssignTaskInput represents input for assigning a user to a task
type AssignTaskInput struct {
	TaskID     uint64
	ActorID    uint64
	AssigneeID uint64
}

// CreateTask validates the input and creates the task with its initial assignees atomically
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.StartDate.IsZero() || input.DueDate.IsZero() {
		return nil, ErrDatesRequired
	}
	if input.DueDate.Before(input.StartDate) {
		return nil, ErrInvalidDateRange
	}
	if !authz.ValidPriority(input.Priority) {
		return nil, ErrInvalidPriority
	}
	input.Category = strings.TrimSpace(input.Category)
	if input.Category == "" {
		return nil, ErrCategoryRequired
	}
	if input.Status == "" {
		return nil, ErrStatusRequired
	}
	if !authz.ValidStatus(input.Status) {
		return nil, ErrInvalidStatus
	}
	progress, err := normalizeProgress(input.Status, input.Progress)
	if err != nil {
		return nil, err
	}

	teamID, err := s.resolveTaskTeam(input.TeamID, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if teamID != nil {
		if err := s.ensureTeamMember(*teamID, input.CreatorID); err != nil {
			return nil, err
		}
	}

	assigneeIDs := uniqueUint64(input.AssignedTo)
	if err := s.validateAssignees(assigneeIDs, teamID); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		StartDate:   input.StartDate,
		DueDate:     input.DueDate,
		Priority:    input.Priority,
		Category:    strings.TrimSpace(input.Category),
		Status:      input.Status,
		Progress:    progress,
		CreatorID:   input.CreatorID,
		TeamID:      teamID,
		ProjectID:   input.ProjectID,
	}

	assignments := make([]models.TaskAssignment, len(assigneeIDs))
	for i, id := range assigneeIDs {
		assignments[i] = models.TaskAssignment{
			AssignedByID: input.CreatorID,
			AssignedToID: id,
		}
	}

	if err := s.taskRepo.CreateWithAssignments(task, assignments); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	for _, id := range assigneeIDs {
		s.notifyAssigned(*task, id, input.CreatorID)
	}

	return s.taskRepo.FindByID(task.ID, taskDetailPreloads...)
}

// ListTasks returns the tasks the user created or is assigned to, newest first
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	if input.Status != nil && !authz.ValidStatus(*input.Status) {
		return nil, 0, ErrInvalidStatus
	}

	filter := repository.TaskFilter{
		VisibleToUserID: &input.UserID,
		Status:          input.Status,
		Page:            input.Page,
		PageSize:        input.PageSize,
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with related data
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, taskDetailPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// GetTaskForUser returns a task the user may see. Tasks outside their reach are reported as missing.
func (s *TaskService) GetTaskForUser(taskID, userID uint64) (*models.Task, error) {
	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	ok, err := s.access.canView(task, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTaskNotFound
	}

	return task, nil
}

// UpdateTask updates an existing task
func (s *TaskService) UpdateTask(taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.StartDate != nil {
		task.StartDate = *input.StartDate
	}
	if input.DueDate != nil {
		task.DueDate = *input.DueDate
	}
	if task.DueDate.Before(task.StartDate) {
		return nil, ErrInvalidDateRange
	}
	if input.Priority != nil {
		if !authz.ValidPriority(*input.Priority) {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, ErrCategoryRequired
		}
		task.Category = category
	}
	if input.Status != nil {
		if !authz.ValidStatus(*input.Status) {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.Progress != nil {
		task.Progress = *input.Progress
	}

	progress, err := normalizeProgress(task.Status, task.Progress)
	if err != nil {
		return nil, err
	}
	task.Progress = progress

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskDetailPreloads...)
}

// DeleteTask deletes a task if the actor created it or administers its team
func (s *TaskService) DeleteTask(taskID, actorID uint64) error {
	task, err := s.manageableTask(taskID, actorID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// AssignTask assigns one user to a task and notifies them
func (s *TaskService) AssignTask(input AssignTaskInput) (*models.TaskAssignment, error) {
	if input.TaskID == 0 || input.AssigneeID == 0 {
		return nil, ErrMissingAssignmentIDs
	}

	task, err := s.manageableTask(input.TaskID, input.ActorID)
	if err != nil {
		return nil, err
	}

	assignee, err := s.userRepo.FindByID(input.AssigneeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find assignee: %w", err)
	}

	if task.TeamID != nil {
		ok, err := authz.IsTeamMember(s.teamRepo, *task.TeamID, assignee.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to verify team membership: %w", err)
		}
		if !ok {
			return nil, ErrAssigneeNotTeamMember
		}
	}

	if _, err := s.taskRepo.FindAssignment(task.ID, assignee.ID); err == nil {
		return nil, ErrAlreadyAssigned
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check assignment: %w", err)
	}

	err = s.taskRepo.Assign([]models.TaskAssignment{{
		TaskID:       task.ID,
		AssignedByID: input.ActorID,
		AssignedToID: assignee.ID,
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to assign user: %w", err)
	}

	assignment, err := s.taskRepo.FindAssignment(task.ID, assignee.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload assignment: %w", err)
	}
	assignment.AssignedTo = *assignee

	s.notifyAssigned(*task, assignee.ID, input.ActorID)

	return assignment, nil
}

// ListAssignees returns the users currently assigned to a task
func (s *TaskService) ListAssignees(taskID uint64) ([]models.User, error) {
	assignments, err := s.taskRepo.ListAssignments(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	users := make([]models.User, len(assignments))
	for i, a := range assignments {
		users[i] = a.AssignedTo
	}
	return users, nil
}

// UnassignTask removes a user's assignment from a task
func (s *TaskService) UnassignTask(taskID, actorID, userID uint64) error {
	task, err := s.manageableTask(taskID, actorID)
	if err != nil {
		return err
	}

	removed, err := s.taskRepo.Unassign(task.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to unassign user: %w", err)
	}
	if removed == 0 {
		return ErrAssignmentNotFound
	}

	return nil
}

// ListAssignedTo returns the tasks assigned to a user. The actor must be that
// user or share a team with them.
func (s *TaskService) ListAssignedTo(actorID, userID uint64) ([]models.Task, error) {
	if err := s.ensureCanSeeUser(actorID, userID); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListAssignedTo(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned tasks: %w", err)
	}
	return tasks, nil
}

// CompletionRateForUser computes the completion rate of the tasks a user created
func (s *TaskService) CompletionRateForUser(actorID, userID uint64) (reporting.Completion, error) {
	if err := s.ensureCanSeeUser(actorID, userID); err != nil {
		return reporting.Completion{}, err
	}

	tasks, err := s.taskRepo.ListCreatedBy(userID)
	if err != nil {
		return reporting.Completion{}, fmt.Errorf("failed to list created tasks: %w", err)
	}
	return reporting.CompletionRate(tasks), nil
}

// GenerateTasksInput represents input for AI task generation
type GenerateTasksInput struct {
	Text      string
	CreatorID uint64
}

// GenerateTasks uses AI to suggest tasks from free text. Nothing is persisted.
func (s *TaskService) GenerateTasks(ctx context.Context, input GenerateTasksInput) ([]GeneratedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	aiTasks, err := s.aiService.GenerateTasksFromText(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	return sanitizeGeneratedTasks(aiTasks, time.Now())
}

func sanitizeGeneratedTasks(aiTasks []GeneratedTask, now time.Time) ([]GeneratedTask, error) {
	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := now.Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		if strings.TrimSpace(aiTask.Title) == "" {
			continue
		}

		if aiTask.DueDate != nil && aiTask.DueDate.Before(cutoff) {
			aiTask.DueDate = nil
		}
		if !authz.ValidPriority(aiTask.Priority) {
			aiTask.Priority = models.PriorityMedium
		}
		if strings.TrimSpace(aiTask.Category) == "" {
			aiTask.Category = constants.UncategorizedLabel
		}

		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

// resolveTaskTeam returns the team a new task belongs to. A project implies its team.
func (s *TaskService) resolveTaskTeam(teamID, projectID *uint64) (*uint64, error) {
	if teamID != nil {
		if _, err := s.teamRepo.FindByID(*teamID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTeamNotFound
			}
			return nil, fmt.Errorf("failed to find team: %w", err)
		}
	}

	if projectID == nil {
		return teamID, nil
	}

	project, err := s.projectRepo.FindByID(*projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if teamID != nil && *teamID != project.TeamID {
		return nil, ErrProjectTeamMismatch
	}

	resolved := project.TeamID
	return &resolved, nil
}

func (s *TaskService) validateAssignees(userIDs []uint64, teamID *uint64) error {
	if len(userIDs) == 0 {
		return nil
	}

	count, err := s.userRepo.CountByIDs(userIDs)
	if err != nil {
		return fmt.Errorf("failed to verify assignees: %w", err)
	}
	if int(count) != len(userIDs) {
		return ErrInvalidTaskAssignee
	}

	if teamID == nil {
		return nil
	}

	for _, id := range userIDs {
		ok, err := authz.IsTeamMember(s.teamRepo, *teamID, id)
		if err != nil {
			return fmt.Errorf("failed to verify team membership: %w", err)
		}
		if !ok {
			return ErrAssigneeNotTeamMember
		}
	}

	return nil
}

func (s *TaskService) manageableTask(taskID, actorID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	ok, err := s.access.canManage(task, actorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTaskPermissionDenied
	}

	return task, nil
}

func (s *TaskService) ensureCanSeeUser(actorID, userID uint64) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	ok, err := s.access.sharesTeam(actorID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserPermissionDenied
	}
	return nil
}

// ensureTeamMember verifies that a user belongs to a team
func (s *TaskService) ensureTeamMember(teamID, userID uint64) error {
	ok, err := authz.IsTeamMember(s.teamRepo, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to verify team membership: %w", err)
	}
	if !ok {
		return ErrNotTeamMember
	}
	return nil
}

func (s *TaskService) notifyAssigned(task models.Task, assigneeID, assignerID uint64) {
	if s.notifications == nil {
		return
	}
	if err := s.notifications.TaskAssigned(task, assigneeID, assignerID); err != nil {
		log.Printf("[task][assign] failed to notify user %d about task %d: %v", assigneeID, task.ID, err)
	}
}

// normalizeProgress validates progress and pins completed tasks to 100
func normalizeProgress(status models.TaskStatus, progress int) (int, error) {
	if progress < 0 || progress > constants.MaxProgress {
		return 0, ErrInvalidProgress
	}
	if status == models.TaskStatusCompleted {
		return constants.MaxProgress, nil
	}
	return progress, nil
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}

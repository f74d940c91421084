package repository

import (
	"github.com/yukikurage/team-task-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// CreateWithStats creates a user and its zero-valued dashboard statistics
	// row within a single transaction.
	CreateWithStats(user *models.User) error

	// FindByID finds a user by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// Update updates a user
	Update(user *models.User) error

	// Delete deletes a user, the teams they administer, the tasks they created
	// and every row that references them
	Delete(id uint64) error

	// CountByIDs counts how many of the given user IDs exist
	CountByIDs(userIDs []uint64) (int64, error)
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// CreateWithAdmin creates a team and the admin's membership atomically
	CreateWithAdmin(team *models.Team, admin *models.TeamMember) error

	// FindByID finds a team by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Team, error)

	// Update updates a team
	Update(team *models.Team) error

	// Delete deletes a team with its projects, tasks and memberships
	Delete(id uint64) error

	// AddMember adds a member to a team
	AddMember(member *models.TeamMember) error

	// RemoveMember removes a member from a team
	RemoveMember(teamID, userID uint64) error

	// FindMember finds a specific team member
	FindMember(teamID, userID uint64) (*models.TeamMember, error)

	// IsMember reports whether the user holds a membership row in the team
	IsMember(teamID, userID uint64) (bool, error)

	// ListMembers lists all members of a team with their users
	ListMembers(teamID uint64) ([]models.TeamMember, error)

	// ListMembershipsByUserID lists the memberships of a user with their teams
	ListMembershipsByUserID(userID uint64) ([]models.TeamMember, error)

	// TeamIDsForUser returns the IDs of the teams a user belongs to
	TeamIDsForUser(userID uint64) ([]uint64, error)

	// AdminTeamIDs returns the IDs of the teams a user administers
	AdminTeamIDs(userID uint64) ([]uint64, error)

	// ListWithTasks returns the given teams with their tasks preloaded
	ListWithTasks(teamIDs []uint64) ([]models.Team, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(project *models.Project) error
	FindByID(id uint64, preload ...string) (*models.Project, error)
	Update(project *models.Project) error

	// Delete deletes a project and its tasks
	Delete(id uint64) error

	// ListByTeamIDs lists the projects of the given teams, newest first
	ListByTeamIDs(teamIDs []uint64, withTasks bool) ([]models.Project, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// CreateWithAssignments creates a task and its initial assignments within a
	// single transaction. Assignment TaskIDs are filled in from the new task.
	CreateWithAssignments(task *models.Task, assignments []models.TaskAssignment) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// ListCreatedBy lists the tasks a user created
	ListCreatedBy(userID uint64) ([]models.Task, error)

	// ListAssignedTo lists the tasks assigned to a user
	ListAssignedTo(userID uint64) ([]models.Task, error)

	// ListByTeamIDs lists the tasks of the given teams
	ListByTeamIDs(teamIDs []uint64) ([]models.Task, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete deletes a task with its comments, assignments and notifications
	Delete(id uint64) error

	// Assign creates assignments, ignoring pairs that already exist
	Assign(assignments []models.TaskAssignment) error

	// Unassign removes a user's assignment from a task
	Unassign(taskID, userID uint64) (int64, error)

	// FindAssignment finds a specific task assignment
	FindAssignment(taskID, userID uint64) (*models.TaskAssignment, error)

	// ListAssignments lists the assignments of a task with their assignees
	ListAssignments(taskID uint64) ([]models.TaskAssignment, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	// VisibleToUserID matches tasks the user created or is assigned to
	VisibleToUserID *uint64
	TeamID          *uint64
	ProjectID       *uint64
	Status          *models.TaskStatus
	Page            int
	PageSize        int
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	FindByID(id uint64, preload ...string) (*models.Comment, error)
	Update(comment *models.Comment) error
	Delete(id uint64) error

	// ListByTask lists the comments of a task in chronological order
	ListByTask(taskID uint64) ([]models.Comment, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	Create(notification *models.Notification) error
	FindByID(id uint64) (*models.Notification, error)

	// ListByUser lists a user's notifications, newest first
	ListByUser(userID uint64) ([]models.Notification, error)

	// MarkRead flags a notification as read
	MarkRead(id uint64) error
}

// StatsRepository defines the interface for dashboard statistics data access
type StatsRepository interface {
	FindByUserID(userID uint64) (*models.DashboardStats, error)

	// Upsert inserts or replaces the statistics row of stats.UserID
	Upsert(stats *models.DashboardStats) error
}

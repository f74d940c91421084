package constants

import "time"

// Context and session keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyTeam      = "team"
	ContextKeyMember    = "team_member"
	ContextKeyTask      = "task"
	ContextKeyProject   = "project"
	ContextKeyRequestID = "request_id"

	SessionCookieName = "task_session"
	SessionMaxAge     = 86400 * 7
)

// Validation limits
const (
	MinPasswordLength = 8
	MaxProgress       = 100
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// AI suggestions
const (
	MaxAIGeneratedTasks = 20
)

// Tokens
const (
	DefaultTokenTTL = 24 * time.Hour
	TokenIssuer     = "team-task-api"
)

// UncategorizedLabel is the bucket for tasks without a category.
const UncategorizedLabel = "Uncategorized"

package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/yukikurage/team-task-api/internal/handlers"
	"github.com/yukikurage/team-task-api/internal/middleware"
)

// Handlers bundles every HTTP handler the API serves.
type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Team         *handlers.TeamHandler
	Project      *handlers.ProjectHandler
	Task         *handlers.TaskHandler
	Comment      *handlers.CommentHandler
	Dashboard    *handlers.DashboardHandler
	Notification *handlers.NotificationHandler
}

// SetupRoutes registers the health check, swagger UI and every /api route on r.
// tokens enables bearer authentication next to sessions; tasks resolves :id on task routes.
func SetupRoutes(r *gin.Engine, h Handlers, tokens middleware.TokenParser, tasks middleware.TaskLoader) *gin.Engine {
	r.Use(middleware.RequestID())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Team Task API is running",
		})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requireAuth := middleware.RequireAuth(tokens)
	requireTask := middleware.RequireTaskAccess(tasks)

	api := r.Group("/api")
	{
		// Public
		api.POST("/register", h.Auth.Register)

		auth := api.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/token", h.Auth.IssueToken)
			auth.POST("/logout", h.Auth.Logout)
			auth.GET("/me", requireAuth, h.Auth.GetCurrentUser)
		}

		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("/profile", h.User.GetProfile)
			users.GET("/:id", h.User.GetUser)
			users.PUT("/:id", h.User.UpdateUser)
			users.DELETE("/:id", h.User.DeleteUser)
		}

		teams := api.Group("/teams")
		teams.Use(requireAuth)
		{
			teams.POST("", h.Team.CreateTeam)
			teams.GET("", h.Team.ListTeams)
			teams.GET("/:id", middleware.RequireTeamAccess(), h.Team.GetTeam)
			teams.PUT("/:id", middleware.RequireTeamAccess(), middleware.RequireTeamAdmin(), h.Team.UpdateTeam)
			teams.DELETE("/:id", middleware.RequireTeamAccess(), middleware.RequireTeamAdmin(), h.Team.DeleteTeam)
			teams.GET("/:id/members", middleware.RequireTeamAccess(), middleware.RequireTeamAdmin(), h.Team.ListMembers)
			teams.POST("/:id/members", h.Team.AddMember)
			teams.DELETE("/:id/members/:user_id", h.Team.RemoveMember)
			teams.GET("/:id/tasks", middleware.RequireTeamAccess(), h.Team.ListTeamTasks)
		}

		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.POST("", h.Project.CreateProject)
			projects.GET("", h.Project.ListProjects)
			projects.GET("/:id", h.Project.GetProject)
			projects.PUT("/:id", h.Project.UpdateProject)
			projects.DELETE("/:id", h.Project.DeleteProject)
			projects.GET("/:id/tasks", h.Project.ListProjectTasks)
		}

		taskRoutes := api.Group("/tasks")
		taskRoutes.Use(requireAuth)
		{
			taskRoutes.GET("", h.Task.ListTasks)
			taskRoutes.POST("", h.Task.CreateTask)
			taskRoutes.POST("/generate", h.Task.GenerateTasks)
			taskRoutes.POST("/assign", h.Task.AssignTask)
			taskRoutes.GET("/assigned/:user_id", h.Task.ListAssignedTo)
			taskRoutes.GET("/completion-rate/:user_id", h.Task.CompletionRate)

			taskRoutes.POST("/comments", h.Comment.CreateComment)
			taskRoutes.PUT("/comments/:comment_id", h.Comment.UpdateComment)
			taskRoutes.DELETE("/comments/:comment_id", h.Comment.DeleteComment)

			taskRoutes.GET("/:id", requireTask, h.Task.GetTask)
			taskRoutes.PUT("/:id", requireTask, h.Task.UpdateTask)
			taskRoutes.PATCH("/:id", requireTask, h.Task.UpdateTask)
			taskRoutes.DELETE("/:id", requireTask, h.Task.DeleteTask)
			taskRoutes.GET("/:id/assign", requireTask, h.Task.ListAssignees)
			taskRoutes.DELETE("/:id/assign/:user_id", requireTask, h.Task.UnassignTask)
			taskRoutes.GET("/:id/comments", h.Comment.ListComments)
		}

		dashboard := api.Group("/dashboard")
		dashboard.Use(requireAuth)
		{
			dashboard.GET("/task-completion", h.Dashboard.TaskCompletion)
			dashboard.GET("/top-category", h.Dashboard.TopCategory)
			dashboard.GET("/weekly-report", h.Dashboard.WeeklyReport)
			dashboard.GET("/weekly-report/pdf", h.Dashboard.WeeklyReportPDF)
			dashboard.GET("/project-completion", h.Dashboard.ProjectCompletion)
			dashboard.GET("/team-productivity", h.Dashboard.TeamProductivity)
			dashboard.GET("/statistics", h.Dashboard.Statistics)
		}

		notifications := api.Group("/notifications")
		notifications.Use(requireAuth)
		{
			notifications.GET("", h.Notification.ListNotifications)
			notifications.PATCH("/:id/read", h.Notification.MarkRead)
		}
	}

	return r
}

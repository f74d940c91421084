package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	cookieStore "github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	_ "github.com/yukikurage/team-task-api/docs"
	"github.com/yukikurage/team-task-api/internal/config"
	"github.com/yukikurage/team-task-api/internal/constants"
	"github.com/yukikurage/team-task-api/internal/database"
	"github.com/yukikurage/team-task-api/internal/handlers"
	"github.com/yukikurage/team-task-api/internal/pdf"
	"github.com/yukikurage/team-task-api/internal/repository"
	"github.com/yukikurage/team-task-api/internal/routes"
	"github.com/yukikurage/team-task-api/internal/services"
)

// @title        Team Task API
// @version      1.0
// @description  Team and task management backend with dashboards and weekly reports.
// @BasePath     /api
func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	store, err := newSessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}
	// Configure session options based on environment
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(), // HTTPS only in release mode
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	db := database.GetDB()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	// Assignment emails are only sent when an SMTP relay is configured
	var mailer services.Mailer
	if cfg.SMTP.Host != "" {
		mailer = services.NewSMTPMailer(cfg.SMTP)
	}

	// Services
	authService := services.NewAuthService(userRepo)
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, mailer)
	userService := services.NewUserService(userRepo, teamRepo, notificationRepo, statsRepo)
	teamService := services.NewTeamService(teamRepo, userRepo, taskRepo)
	projectService := services.NewProjectService(projectRepo, teamRepo, taskRepo)
	taskService := services.NewTaskService(taskRepo, teamRepo, projectRepo, userRepo, notificationService, aiService)
	commentService := services.NewCommentService(commentRepo, taskRepo, teamRepo)
	dashboardService := services.NewDashboardService(taskRepo, teamRepo, projectRepo, userRepo, statsRepo)

	routes.SetupRoutes(r, routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService, tokenService),
		User:         handlers.NewUserHandler(userService),
		Team:         handlers.NewTeamHandler(teamService),
		Project:      handlers.NewProjectHandler(projectService),
		Task:         handlers.NewTaskHandler(taskService),
		Comment:      handlers.NewCommentHandler(commentService),
		Dashboard:    handlers.NewDashboardHandler(dashboardService, pdf.NewWeeklyReportGenerator()),
		Notification: handlers.NewNotificationHandler(notificationService),
	}, tokenService, taskService)

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	if cfg.SessionStore == "cookie" {
		return cookieStore.NewStore([]byte(cfg.SessionSecret)), nil
	}

	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	return redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret),
	)
}

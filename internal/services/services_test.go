package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-task-api/internal/database"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []sentMail
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type serviceTestEnv struct {
	db            *gorm.DB
	mailer        *fakeMailer
	auth          *AuthService
	users         *UserService
	teams         *TeamService
	projects      *ProjectService
	tasks         *TaskService
	comments      *CommentService
	dashboard     *DashboardService
	notifications *NotificationService
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(database.Models...))

	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	mailer := &fakeMailer{}
	notifications := NewNotificationService(notificationRepo, userRepo, mailer)

	return serviceTestEnv{
		db:            db,
		mailer:        mailer,
		auth:          NewAuthService(userRepo),
		users:         NewUserService(userRepo, teamRepo, notificationRepo, statsRepo),
		teams:         NewTeamService(teamRepo, userRepo, taskRepo),
		projects:      NewProjectService(projectRepo, teamRepo, taskRepo),
		tasks:         NewTaskService(taskRepo, teamRepo, projectRepo, userRepo, notifications, nil),
		comments:      NewCommentService(commentRepo, taskRepo, teamRepo),
		dashboard:     NewDashboardService(taskRepo, teamRepo, projectRepo, userRepo, statsRepo),
		notifications: notifications,
	}
}

func (env serviceTestEnv) register(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := env.auth.Register(RegisterInput{
		Name:     username,
		Username: username,
		Email:    username + "@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	return user
}

func (env serviceTestEnv) team(t *testing.T, name string, admin *models.User, members ...*models.User) *models.Team {
	t.Helper()
	team, err := env.teams.CreateTeam(CreateTeamInput{Name: name, AdminID: admin.ID})
	require.NoError(t, err)
	for _, m := range members {
		_, err := env.teams.AddMember(AddMemberInput{
			TeamID:   team.ID,
			ActorID:  admin.ID,
			Username: m.Username,
		})
		require.NoError(t, err)
	}
	return team
}

func taskInput(title string, creator *models.User) CreateTaskInput {
	start := time.Now().Add(-time.Hour)
	return CreateTaskInput{
		Title:     title,
		StartDate: start,
		DueDate:   start.Add(72 * time.Hour),
		Priority:  models.PriorityMedium,
		Category:  "Backend",
		Status:    models.TaskStatusPending,
		CreatorID: creator.ID,
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&count).Error)
	return count
}

package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/yukikurage/team-task-api/internal/config"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Mailer delivers a plain-text email.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends email through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer returns nil when no SMTP host is configured.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	if cfg.Host == "" {
		return nil
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}

// NotificationService records in-app notifications and optionally mirrors them by email.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	mailer           Mailer
}

// NewNotificationService creates a NotificationService. mailer may be nil.
func NewNotificationService(notificationRepo repository.NotificationRepository, userRepo repository.UserRepository, mailer Mailer) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		mailer:           mailer,
	}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(userID uint64) ([]models.Notification, error) {
	notifications, err := s.notificationRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(notificationID, userID uint64) (*models.Notification, error) {
	notification, err := s.notificationRepo.FindByID(notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}

	// Someone else's notification is reported as missing
	if notification.UserID != userID {
		return nil, ErrNotificationNotFound
	}

	if err := s.notificationRepo.MarkRead(notification.ID); err != nil {
		return nil, fmt.Errorf("failed to mark notification as read: %w", err)
	}

	notification.Read = true
	return notification, nil
}

// TaskAssigned notifies the assignee that they were given a task.
func (s *NotificationService) TaskAssigned(task models.Task, assigneeID, assignerID uint64) error {
	if assigneeID == assignerID {
		return nil
	}

	taskID := task.ID
	notification := &models.Notification{
		UserID:  assigneeID,
		TaskID:  &taskID,
		Message: fmt.Sprintf("You have been assigned to task %q", task.Title),
	}
	if err := s.notificationRepo.Create(notification); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	if s.mailer == nil {
		return nil
	}

	assignee, err := s.userRepo.FindByID(assigneeID)
	if err != nil {
		return fmt.Errorf("failed to find assignee: %w", err)
	}

	body := fmt.Sprintf("Hi %s,\n\n%s.\nDue: %s\nPriority: %s\n",
		assignee.Name,
		notification.Message,
		task.DueDate.Format("2006-01-02"),
		task.Priority,
	)
	if err := s.mailer.Send(assignee.Email, "New task assignment", body); err != nil {
		// The in-app notification is already stored
		log.Printf("[notification][email] failed to send to user %d: %v", assigneeID, err)
	}

	return nil
}

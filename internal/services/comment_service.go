package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound         = errors.New("comment not found")
	ErrCommentRequired         = errors.New("taskId and comment are required")
	ErrCommentPermissionDenied = errors.New("you cannot modify this comment")
)

// CommentService manages discussion threads on tasks.
type CommentService struct {
	commentRepo repository.CommentRepository
	taskRepo    repository.TaskRepository
	access      taskAccess
}

// NewCommentService creates a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, taskRepo repository.TaskRepository, teamRepo repository.TeamRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
		access:      taskAccess{taskRepo: taskRepo, teamRepo: teamRepo},
	}
}

// ListComments returns a task's comments in chronological order.
func (s *CommentService) ListComments(taskID, userID uint64) ([]models.Comment, error) {
	if _, err := s.visibleTask(taskID, userID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// CreateComment adds a comment authored by userID.
func (s *CommentService) CreateComment(taskID, userID uint64, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if taskID == 0 || text == "" {
		return nil, ErrCommentRequired
	}

	if _, err := s.visibleTask(taskID, userID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		TaskID:  taskID,
		UserID:  userID,
		Comment: text,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return s.commentRepo.FindByID(comment.ID, "User")
}

// UpdateComment edits a comment. Only its author may do so.
func (s *CommentService) UpdateComment(commentID, userID uint64, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrCommentRequired
	}

	comment, err := s.findComment(commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrCommentPermissionDenied
	}

	comment.Comment = text
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return s.commentRepo.FindByID(comment.ID, "User")
}

// DeleteComment removes a comment. The author and the task creator may do so.
func (s *CommentService) DeleteComment(commentID, userID uint64) error {
	comment, err := s.findComment(commentID, "Task")
	if err != nil {
		return err
	}
	if comment.UserID != userID && comment.Task.CreatorID != userID {
		return ErrCommentPermissionDenied
	}

	if err := s.commentRepo.Delete(comment.ID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

func (s *CommentService) findComment(commentID uint64, preload ...string) (*models.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return comment, nil
}

func (s *CommentService) visibleTask(taskID, userID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
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

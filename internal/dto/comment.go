package dto

import (
	"time"

	"github.com/yukikurage/team-task-api/internal/models"
)

// CommentAuthorDTO is the author shown next to a comment
type CommentAuthorDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID        uint64            `json:"id"`
	TaskID    uint64            `json:"taskId"`
	UserID    uint64            `json:"userId"`
	Comment   string            `json:"comment"`
	Timestamp time.Time         `json:"timestamp"`
	User      *CommentAuthorDTO `json:"user,omitempty"`
}

// ToCommentDTO converts a Comment model to CommentDTO
func ToCommentDTO(comment models.Comment) CommentDTO {
	dto := CommentDTO{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		UserID:    comment.UserID,
		Comment:   comment.Comment,
		Timestamp: comment.Timestamp,
	}
	if comment.User.ID != 0 {
		dto.User = &CommentAuthorDTO{ID: comment.User.ID, Name: comment.User.Name}
	}
	return dto
}

// ToCommentDTOs converts a slice of comments
func ToCommentDTOs(comments []models.Comment) []CommentDTO {
	result := make([]CommentDTO, len(comments))
	for i, comment := range comments {
		result[i] = ToCommentDTO(comment)
	}
	return result
}

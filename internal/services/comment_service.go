package services

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/buk/tasker-be/internal/models"
	"github.com/buk/tasker-be/internal/websocket"
)

// CommentServiceProvider defines the interface for comment services.
// Visibility of the parent task is the caller's responsibility: the
// boundary layer verifies the task through the task service before
// listing or creating comments.
type CommentServiceProvider interface {
	ListByTask(taskID string) ([]models.Comment, error)
	CreateComment(task models.Task, text string) (models.Comment, error)
	UpdateComment(id, text string) (models.Comment, error)
	DeleteComment(id string) error
}

// CommentService provides business logic for task comments.
type CommentService struct {
	db  *sql.DB
	hub *websocket.Hub
}

// NewCommentService creates a new CommentService.
func NewCommentService(db *sql.DB, hub *websocket.Hub) *CommentService {
	return &CommentService{db: db, hub: hub}
}

// ListByTask retrieves all comments attached to the given task. An
// unknown or deleted task id yields an empty list, not an error.
func (s *CommentService) ListByTask(taskID string) ([]models.Comment, error) {
	rows, err := s.db.Query("SELECT id, text, task_id, created_at FROM comments WHERE task_id = ?", taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.TaskID, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// CreateComment attaches a new comment to an already-resolved task.
func (s *CommentService) CreateComment(task models.Task, text string) (models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return models.Comment{}, &ValidationError{Field: "text", Message: "Comment text must not be blank"}
	}

	id := uuid.New().String()
	stmt, err := s.db.Prepare("INSERT INTO comments(id, text, task_id) VALUES(?, ?, ?)")
	if err != nil {
		return models.Comment{}, err
	}
	defer stmt.Close()

	if _, err := stmt.Exec(id, text, task.ID); err != nil {
		return models.Comment{}, err
	}

	comment, err := s.getByID(id)
	if err != nil {
		return models.Comment{}, err
	}

	log.Info().Str("comment_id", id).Str("task_id", task.ID).Msg("Comment created")
	s.hub.NotifyUser(task.UserID, "comment_created", comment)
	return comment, nil
}

// UpdateComment replaces the text of an existing comment. Missing
// comments are reported with ErrNotFound.
func (s *CommentService) UpdateComment(id, text string) (models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return models.Comment{}, &ValidationError{Field: "text", Message: "Comment text must not be blank"}
	}

	ownerID, err := s.ownerOf(id)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Warn().Str("comment_id", id).Msg("Attempt to update non-existent comment")
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, err
	}

	if _, err := s.db.Exec("UPDATE comments SET text = ? WHERE id = ?", text, id); err != nil {
		return models.Comment{}, err
	}

	comment, err := s.getByID(id)
	if err != nil {
		return models.Comment{}, err
	}

	log.Info().Str("comment_id", id).Msg("Comment updated")
	s.hub.NotifyUser(ownerID, "comment_updated", comment)
	return comment, nil
}

// DeleteComment removes a comment by id. Deleting a comment that does
// not exist is a no-op.
func (s *CommentService) DeleteComment(id string) error {
	ownerID, err := s.ownerOf(id)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Warn().Str("comment_id", id).Msg("Attempt to delete non-existent comment")
			return nil
		}
		return err
	}

	if _, err := s.db.Exec("DELETE FROM comments WHERE id = ?", id); err != nil {
		return err
	}

	log.Info().Str("comment_id", id).Msg("Comment deleted")
	s.hub.NotifyUser(ownerID, "comment_deleted", map[string]string{"id": id})
	return nil
}

func (s *CommentService) getByID(id string) (models.Comment, error) {
	var c models.Comment
	row := s.db.QueryRow("SELECT id, text, task_id, created_at FROM comments WHERE id = ?", id)
	if err := row.Scan(&c.ID, &c.Text, &c.TaskID, &c.CreatedAt); err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

// ownerOf resolves the user owning the comment's parent task, for
// notification routing.
func (s *CommentService) ownerOf(commentID string) (string, error) {
	var ownerID string
	row := s.db.QueryRow("SELECT t.user_id FROM comments c JOIN tasks t ON t.id = c.task_id WHERE c.id = ?", commentID)
	if err := row.Scan(&ownerID); err != nil {
		return "", err
	}
	return ownerID, nil
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/buk/tasker-be/internal/services"
)

// CommentHandler handles HTTP requests for task comments. The parent
// task is resolved through the task service first, so a task that is
// absent or owned by someone else yields a 404 before any comment
// operation runs.
type CommentHandler struct {
	comments services.CommentServiceProvider
	tasks    services.TaskServiceProvider
	users    services.UserServiceProvider
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(comments services.CommentServiceProvider, tasks services.TaskServiceProvider, users services.UserServiceProvider) *CommentHandler {
	return &CommentHandler{comments: comments, tasks: tasks, users: users}
}

// CommentPayload defines the structure for comment create/update
// requests.
type CommentPayload struct {
	Text string `json:"text"`
}

// GetByTask handles the request to list comments of a task.
func (h *CommentHandler) GetByTask(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.users)
	if !ok {
		return
	}

	taskID := chi.URLParam(r, "taskId")
	if _, err := h.tasks.GetTask(taskID, user); err != nil {
		writeServiceError(w, err)
		return
	}

	comments, err := h.comments.ListByTask(taskID)
	if err != nil {
		log.Error().Err(err).Str("task_id", taskID).Msg("Failed to list comments")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

// Create handles the request to add a comment to a task.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.users)
	if !ok {
		return
	}

	taskID := chi.URLParam(r, "taskId")
	task, err := h.tasks.GetTask(taskID, user)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var payload CommentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	comment, err := h.comments.CreateComment(task, payload.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comment)
}

// Update handles the request to change a comment's text.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r, h.users); !ok {
		return
	}

	id := chi.URLParam(r, "id")
	var payload CommentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	comment, err := h.comments.UpdateComment(id, payload.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comment)
}

// Delete handles the request to delete a comment. The operation is
// idempotent; deleting an unknown id still returns 204.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r, h.users); !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.comments.DeleteComment(id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

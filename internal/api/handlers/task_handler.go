package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/buk/tasker-be/internal/models"
	"github.com/buk/tasker-be/internal/services"
)

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	tasks services.TaskServiceProvider
	users services.UserServiceProvider
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks services.TaskServiceProvider, users services.UserServiceProvider) *TaskHandler {
	return &TaskHandler{tasks: tasks, users: users}
}

// CreateTaskPayload defines the structure for task creation requests.
type CreateTaskPayload struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
}

// GetAll handles the request to list the current user's tasks.
func (h *TaskHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.users)
	if !ok {
		return
	}

	tasks, err := h.tasks.ListTasks(user)
	if err != nil {
		log.Error().Err(err).Str("username", user.Username).Msg("Failed to list tasks")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// Get handles the request to get a single task by its ID.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.users)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	task, err := h.tasks.GetTask(id, user)
	if err != nil {
		log.Warn().Str("task_id", id).Str("username", user.Username).Msg("Task not found or access denied")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Create handles the request to create a new task.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.users)
	if !ok {
		return
	}

	var payload CreateTaskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	task, err := h.tasks.CreateTask(user, payload.Title, payload.Description, payload.Priority)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// Update handles partial updates of a task. Fields absent from the
// body keep their stored values.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.users)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	var patch models.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	task, err := h.tasks.UpdateTask(id, user, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Delete handles the request to delete a task and its comments.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.users)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.tasks.DeleteTask(id, user); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

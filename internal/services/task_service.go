package services

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/buk/tasker-be/internal/models"
	"github.com/buk/tasker-be/internal/websocket"
)

// TaskServiceProvider defines the interface for task services. Every
// operation takes the resolved acting user explicitly; there is no
// hidden request-global principal.
type TaskServiceProvider interface {
	ListTasks(user models.User) ([]models.Task, error)
	GetTask(id string, user models.User) (models.Task, error)
	CreateTask(user models.User, title, description string, priority models.Priority) (models.Task, error)
	UpdateTask(id string, user models.User, patch models.TaskPatch) (models.Task, error)
	DeleteTask(id string, user models.User) error
}

// TaskService provides ownership-scoped business logic for tasks.
type TaskService struct {
	db  *sql.DB
	hub *websocket.Hub
}

// NewTaskService creates a new TaskService.
func NewTaskService(db *sql.DB, hub *websocket.Hub) *TaskService {
	return &TaskService{db: db, hub: hub}
}

const taskColumns = "id, title, description, completed, priority, user_id, created_at"

func scanTask(scanner interface{ Scan(...interface{}) error }) (models.Task, error) {
	var task models.Task
	var desc sql.NullString
	err := scanner.Scan(&task.ID, &task.Title, &desc, &task.Completed, &task.Priority, &task.UserID, &task.CreatedAt)
	if err != nil {
		return task, err
	}
	task.Description = desc.String
	return task, nil
}

// findByIDAndOwner is the shared ownership-scoped lookup used by Get,
// Update and Delete. A row that exists but belongs to someone else is
// reported exactly like a row that does not exist.
func (s *TaskService) findByIDAndOwner(id string, user models.User) (models.Task, error) {
	row := s.db.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = ? AND user_id = ?", id, user.ID)
	task, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

// ListTasks retrieves all tasks owned by the given user.
func (s *TaskService) ListTasks(user models.User) ([]models.Task, error) {
	rows, err := s.db.Query("SELECT "+taskColumns+" FROM tasks WHERE user_id = ?", user.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// GetTask retrieves a single task, only if the given user owns it.
func (s *TaskService) GetTask(id string, user models.User) (models.Task, error) {
	return s.findByIDAndOwner(id, user)
}

// CreateTask persists a new task owned by the given user. An empty
// priority defaults to MEDIUM; completed always starts false.
func (s *TaskService) CreateTask(user models.User, title, description string, priority models.Priority) (models.Task, error) {
	if strings.TrimSpace(title) == "" {
		return models.Task{}, &ValidationError{Field: "title", Message: "Title must not be blank"}
	}
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.IsValid() {
		return models.Task{}, &ValidationError{Field: "priority", Message: "Priority must be one of LOW, MEDIUM, HIGH"}
	}

	id := uuid.New().String()
	stmt, err := s.db.Prepare("INSERT INTO tasks(id, title, description, completed, priority, user_id) VALUES(?, ?, ?, 0, ?, ?)")
	if err != nil {
		return models.Task{}, err
	}
	defer stmt.Close()

	if _, err := stmt.Exec(id, title, description, priority, user.ID); err != nil {
		return models.Task{}, err
	}

	task, err := s.findByIDAndOwner(id, user)
	if err != nil {
		return models.Task{}, err
	}

	log.Info().Str("task_id", task.ID).Str("username", user.Username).Msg("Task created")
	s.hub.NotifyUser(user.ID, "task_created", task)
	return task, nil
}

// UpdateTask applies a partial update to a task owned by the given
// user. Only non-nil patch fields overwrite stored values; an omitted
// completed flag leaves completion state untouched.
func (s *TaskService) UpdateTask(id string, user models.User, patch models.TaskPatch) (models.Task, error) {
	task, err := s.findByIDAndOwner(id, user)
	if err != nil {
		return models.Task{}, err
	}

	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return models.Task{}, &ValidationError{Field: "title", Message: "Title must not be blank"}
		}
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		if !patch.Priority.IsValid() {
			return models.Task{}, &ValidationError{Field: "priority", Message: "Priority must be one of LOW, MEDIUM, HIGH"}
		}
		task.Priority = *patch.Priority
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}

	stmt, err := s.db.Prepare("UPDATE tasks SET title = ?, description = ?, completed = ?, priority = ? WHERE id = ? AND user_id = ?")
	if err != nil {
		return models.Task{}, err
	}
	defer stmt.Close()

	if _, err := stmt.Exec(task.Title, task.Description, task.Completed, task.Priority, id, user.ID); err != nil {
		return models.Task{}, err
	}

	log.Info().Str("task_id", id).Str("username", user.Username).Msg("Task updated")
	s.hub.NotifyUser(user.ID, "task_updated", task)
	return task, nil
}

// DeleteTask removes a task owned by the given user. Deleting the task
// cascades to all of its comments.
func (s *TaskService) DeleteTask(id string, user models.User) error {
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM tasks WHERE id = ? AND user_id = ?)", id, user.ID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		log.Warn().Str("task_id", id).Str("username", user.Username).Msg("Attempt to delete non-existent or foreign task")
		return ErrNotFound
	}

	if _, err := s.db.Exec("DELETE FROM tasks WHERE id = ?", id); err != nil {
		return err
	}

	log.Info().Str("task_id", id).Str("username", user.Username).Msg("Task deleted")
	s.hub.NotifyUser(user.ID, "task_deleted", map[string]string{"id": id})
	return nil
}

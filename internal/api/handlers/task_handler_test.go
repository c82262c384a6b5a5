package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/buk/tasker-be/internal/api"
	"github.com/buk/tasker-be/internal/auth"
	"github.com/buk/tasker-be/internal/models"
	"github.com/buk/tasker-be/internal/services"
	"github.com/buk/tasker-be/internal/websocket"
)

var (
	alice = models.User{ID: "u-alice", Username: "alice"}
	bob   = models.User{ID: "u-bob", Username: "bob"}
)

// stubUserService resolves the fixed test users.
type stubUserService struct{}

func (s *stubUserService) Register(username, password string) (models.User, error) {
	return models.User{}, services.ErrUsernameTaken
}

func (s *stubUserService) Authenticate(username, password string) (models.User, error) {
	return models.User{}, services.ErrInvalidCredentials
}

func (s *stubUserService) ResolveUser(username string) (models.User, error) {
	switch username {
	case alice.Username:
		return alice, nil
	case bob.Username:
		return bob, nil
	}
	return models.User{}, services.ErrPrincipalNotFound
}

// stubTaskService serves a single task owned by alice and records the
// last patch it was handed.
type stubTaskService struct {
	task      models.Task
	lastPatch *models.TaskPatch
}

func (s *stubTaskService) ListTasks(user models.User) ([]models.Task, error) {
	if user.ID == s.task.UserID {
		return []models.Task{s.task}, nil
	}
	return []models.Task{}, nil
}

func (s *stubTaskService) GetTask(id string, user models.User) (models.Task, error) {
	if id == s.task.ID && user.ID == s.task.UserID {
		return s.task, nil
	}
	return models.Task{}, services.ErrNotFound
}

func (s *stubTaskService) CreateTask(user models.User, title, description string, priority models.Priority) (models.Task, error) {
	if strings.TrimSpace(title) == "" {
		return models.Task{}, &services.ValidationError{Field: "title", Message: "Title must not be blank"}
	}
	if priority == "" {
		priority = models.PriorityMedium
	}
	return models.Task{ID: "t-new", Title: title, Description: description, Priority: priority, UserID: user.ID}, nil
}

func (s *stubTaskService) UpdateTask(id string, user models.User, patch models.TaskPatch) (models.Task, error) {
	task, err := s.GetTask(id, user)
	if err != nil {
		return models.Task{}, err
	}
	s.lastPatch = &patch
	return task, nil
}

func (s *stubTaskService) DeleteTask(id string, user models.User) error {
	_, err := s.GetTask(id, user)
	return err
}

// stubCommentService tracks whether any operation reached it.
type stubCommentService struct {
	called bool
}

func (s *stubCommentService) ListByTask(taskID string) ([]models.Comment, error) {
	s.called = true
	return []models.Comment{}, nil
}

func (s *stubCommentService) CreateComment(task models.Task, text string) (models.Comment, error) {
	s.called = true
	if strings.TrimSpace(text) == "" {
		return models.Comment{}, &services.ValidationError{Field: "text", Message: "Comment text must not be blank"}
	}
	return models.Comment{ID: "c-new", Text: text, TaskID: task.ID}, nil
}

func (s *stubCommentService) UpdateComment(id, text string) (models.Comment, error) {
	s.called = true
	return models.Comment{}, services.ErrNotFound
}

func (s *stubCommentService) DeleteComment(id string) error {
	s.called = true
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *stubTaskService, *stubCommentService) {
	t.Helper()
	auth.Init("test-secret")
	tasks := &stubTaskService{
		task: models.Task{ID: "t-1", Title: "Buy milk", Priority: models.PriorityHigh, UserID: alice.ID},
	}
	comments := &stubCommentService{}
	router := api.NewRouter(websocket.NewHub(), &stubUserService{}, tasks, comments, false)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, tasks, comments
}

func doRequest(t *testing.T, method, url string, body string, user *models.User) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if user != nil {
		token, err := auth.GenerateJWT(*user)
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func TestTasks_RequireAuth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/tasks", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestCreateTask_BlankTitleRejected(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/tasks", `{"title":"   "}`, &alice)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "INVALID_TITLE" {
		t.Errorf("error code = %q, want INVALID_TITLE", body.Error)
	}
}

func TestCreateTask_Created(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/tasks", `{"title":"Buy milk","priority":"HIGH"}`, &alice)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var task models.Task
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if task.ID == "" || task.Priority != models.PriorityHigh || task.Completed {
		t.Errorf("task = %+v", task)
	}
}

func TestGetTask_ForeignLooksMissing(t *testing.T) {
	srv, tasks, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/tasks/"+tasks.task.ID, "", &bob)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestUpdateTask_OmittedCompletedStaysNil(t *testing.T) {
	srv, tasks, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPatch, srv.URL+"/api/v1/tasks/"+tasks.task.ID, `{"priority":"LOW"}`, &alice)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	patch := tasks.lastPatch
	if patch == nil {
		t.Fatal("service never received a patch")
	}
	if patch.Priority == nil || *patch.Priority != models.PriorityLow {
		t.Errorf("priority patch = %v", patch.Priority)
	}
	if patch.Completed != nil {
		t.Error("absent completed field decoded as non-nil")
	}
	if patch.Title != nil {
		t.Error("absent title field decoded as non-nil")
	}
}

func TestDeleteTask_Statuses(t *testing.T) {
	srv, tasks, _ := newTestServer(t)

	resp := doRequest(t, http.MethodDelete, srv.URL+"/api/v1/tasks/"+tasks.task.ID, "", &bob)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("foreign delete status = %d, want 404", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodDelete, srv.URL+"/api/v1/tasks/"+tasks.task.ID, "", &alice)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("owner delete status = %d, want 204", resp.StatusCode)
	}
}

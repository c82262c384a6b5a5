package handlers_test

import (
	"net/http"
	"testing"
)

func TestComments_TaskVisibilityCheckedAtBoundary(t *testing.T) {
	srv, tasks, comments := newTestServer(t)

	// bob cannot see alice's task, so the comment service must never
	// be reached for listing or creating.
	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/comments/task/"+tasks.task.ID, "", &bob)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("foreign list status = %d, want 404", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodPost, srv.URL+"/api/v1/comments/task/"+tasks.task.ID, `{"text":"hi"}`, &bob)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("foreign create status = %d, want 404", resp.StatusCode)
	}

	if comments.called {
		t.Error("comment service was reached despite failing task check")
	}
}

func TestComments_OwnerPath(t *testing.T) {
	srv, tasks, comments := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/comments/task/"+tasks.task.ID, "", &alice)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("owner list status = %d, want 200", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodPost, srv.URL+"/api/v1/comments/task/"+tasks.task.ID, `{"text":"hi"}`, &alice)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("owner create status = %d, want 200", resp.StatusCode)
	}
	if !comments.called {
		t.Error("comment service was never reached")
	}
}

func TestCreateComment_BlankText(t *testing.T) {
	srv, tasks, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/comments/task/"+tasks.task.ID, `{"text":" "}`, &alice)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUpdateComment_Missing(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPut, srv.URL+"/api/v1/comments/no-such-id", `{"text":"hi"}`, &alice)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestDeleteComment_Idempotent(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doRequest(t, http.MethodDelete, srv.URL+"/api/v1/comments/no-such-id", "", &alice)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}

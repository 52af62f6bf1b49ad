package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/okvist/taskboard/internal/handler"
	"github.com/okvist/taskboard/internal/repository/sqlite"
	"github.com/okvist/taskboard/internal/service"
)

const testJWTSecret = "test-secret-key-for-unit-tests-0"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	auth := service.NewAuthService(db.Users(), testJWTSecret, 24*time.Hour, 4)
	tasks := service.NewTaskService(db.Tasks())

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, auth, tasks)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// doJSON issues a request with an optional bearer token and JSON body,
// decoding the response body into a generic map.
func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode response %q: %v", raw, err)
		}
	}
	return resp.StatusCode, decoded
}

// registerAndLogin creates an account and returns a valid token for it.
func registerAndLogin(t *testing.T, srv *httptest.Server, name, email, role string) string {
	t.Helper()

	reg := map[string]any{"name": name, "email": email, "password": "password123"}
	if role != "" {
		reg["role"] = role
	}
	status, body := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", reg)
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %v", email, status, body)
	}

	status, body = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": email, "password": "password123",
	})
	if status != http.StatusOK {
		t.Fatalf("login %s: status %d, body %v", email, status, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token in %v", email, body)
	}
	return token
}

func taskField(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	task, ok := body["task"].(map[string]any)
	if !ok {
		t.Fatalf("no task object in %v", body)
	}
	return task
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, srv, http.MethodGet, "/api/health", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestRegister_Responses(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Alice", "email": "alice@example.com", "password": "password123",
	})
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", status, body)
	}
	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("no user object in %v", body)
	}
	if user["role"] != "user" {
		t.Fatalf("expected default role user, got %v", user["role"])
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Fatal("response leaked password hash")
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatal("response leaked password hash")
	}

	// Same email again conflicts.
	status, _ = doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Other", "email": "alice@example.com", "password": "password456",
	})
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", status)
	}

	// Validation failures report per-field messages.
	status, body = doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "A", "email": "not-an-email", "password": "short",
	})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", status)
	}
	fields, ok := body["fields"].(map[string]any)
	if !ok {
		t.Fatalf("expected fields map, got %v", body)
	}
	for _, f := range []string{"name", "email", "password"} {
		if _, present := fields[f]; !present {
			t.Fatalf("expected field error for %s in %v", f, fields)
		}
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv, "Alice", "alice@example.com", "")

	wrongPwStatus, wrongPwBody := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "alice@example.com", "password": "wrongpassword",
	})
	noUserStatus, noUserBody := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "nobody@example.com", "password": "password123",
	})

	if wrongPwStatus != http.StatusUnauthorized || noUserStatus != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPwStatus, noUserStatus)
	}
	if wrongPwBody["error"] != noUserBody["error"] {
		t.Fatalf("failure bodies differ: %v vs %v", wrongPwBody, noUserBody)
	}
}

func TestMe_ReturnsCurrentUser(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "Alice", "alice@example.com", "")

	status, body := doJSON(t, srv, http.MethodGet, "/api/auth/me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	user, ok := body["user"].(map[string]any)
	if !ok || user["email"] != "alice@example.com" {
		t.Fatalf("unexpected me response: %v", body)
	}
}

func TestCreateTask_IgnoresSpoofedOwner(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv, "Victim", "victim@example.com", "")
	token := registerAndLogin(t, srv, "Attacker", "attacker@example.com", "")

	// createdBy and id in the payload are not part of the request type
	// and must be silently ignored.
	status, body := doJSON(t, srv, http.MethodPost, "/api/tasks", token, map[string]any{
		"title":     "Spoofed task",
		"createdBy": 1,
		"id":        42,
	})
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", status, body)
	}

	task := taskField(t, body)
	owner, ok := task["createdBy"].(map[string]any)
	if !ok {
		t.Fatalf("no createdBy in %v", task)
	}
	if owner["name"] != "Attacker" {
		t.Fatalf("expected caller as owner, got %v", owner)
	}
	if task["status"] != "pending" {
		t.Fatalf("expected default status pending, got %v", task["status"])
	}
}

func TestTaskVisibility_NonOwnerGets404(t *testing.T) {
	srv := newTestServer(t)
	aliceToken := registerAndLogin(t, srv, "Alice", "alice@example.com", "")
	bobToken := registerAndLogin(t, srv, "Bob", "bob@example.com", "")
	adminToken := registerAndLogin(t, srv, "Admin", "admin@example.com", "admin")

	status, body := doJSON(t, srv, http.MethodPost, "/api/tasks", aliceToken, map[string]any{
		"title": "Alice's secret task",
	})
	if status != http.StatusCreated {
		t.Fatalf("create: %d %v", status, body)
	}
	id := fmt.Sprintf("%.0f", taskField(t, body)["id"].(float64))

	// Owner and admin can read it.
	if status, _ := doJSON(t, srv, http.MethodGet, "/api/tasks/"+id, aliceToken, nil); status != http.StatusOK {
		t.Fatalf("owner get: expected 200, got %d", status)
	}
	if status, _ := doJSON(t, srv, http.MethodGet, "/api/tasks/"+id, adminToken, nil); status != http.StatusOK {
		t.Fatalf("admin get: expected 200, got %d", status)
	}

	// For Bob the task does not exist, on every verb.
	if status, _ := doJSON(t, srv, http.MethodGet, "/api/tasks/"+id, bobToken, nil); status != http.StatusNotFound {
		t.Fatalf("foreign get: expected 404, got %d", status)
	}
	if status, _ := doJSON(t, srv, http.MethodPut, "/api/tasks/"+id, bobToken, map[string]any{
		"title": "Bob's takeover",
	}); status != http.StatusNotFound {
		t.Fatalf("foreign update: expected 404, got %d", status)
	}
	if status, _ := doJSON(t, srv, http.MethodDelete, "/api/tasks/"+id, bobToken, nil); status != http.StatusNotFound {
		t.Fatalf("foreign delete: expected 404, got %d", status)
	}
}

func TestTaskLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "Alice", "alice@example.com", "")

	status, body := doJSON(t, srv, http.MethodPost, "/api/tasks", token, map[string]any{
		"title":       "Ship release",
		"description": "Cut the final build",
	})
	if status != http.StatusCreated {
		t.Fatalf("create: %d %v", status, body)
	}
	id := fmt.Sprintf("%.0f", taskField(t, body)["id"].(float64))

	// Partial update: only status changes, title survives.
	status, body = doJSON(t, srv, http.MethodPut, "/api/tasks/"+id, token, map[string]any{
		"status": "completed",
	})
	if status != http.StatusOK {
		t.Fatalf("update: %d %v", status, body)
	}
	task := taskField(t, body)
	if task["status"] != "completed" || task["title"] != "Ship release" {
		t.Fatalf("unexpected task after update: %v", task)
	}

	// Empty update payload is rejected.
	status, _ = doJSON(t, srv, http.MethodPut, "/api/tasks/"+id, token, map[string]any{})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("empty update: expected 422, got %d", status)
	}

	status, _ = doJSON(t, srv, http.MethodDelete, "/api/tasks/"+id, token, nil)
	if status != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", status)
	}
	status, _ = doJSON(t, srv, http.MethodGet, "/api/tasks/"+id, token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", status)
	}
}

func TestListTasks_ScopeFilterAndPaging(t *testing.T) {
	srv := newTestServer(t)
	aliceToken := registerAndLogin(t, srv, "Alice", "alice@example.com", "")
	bobToken := registerAndLogin(t, srv, "Bob", "bob@example.com", "")
	adminToken := registerAndLogin(t, srv, "Admin", "admin@example.com", "admin")

	for _, title := range []string{"Draft report", "Review budget", "File report"} {
		if status, body := doJSON(t, srv, http.MethodPost, "/api/tasks", aliceToken, map[string]any{
			"title": title,
		}); status != http.StatusCreated {
			t.Fatalf("create %q: %d %v", title, status, body)
		}
	}
	if status, _ := doJSON(t, srv, http.MethodPost, "/api/tasks", bobToken, map[string]any{
		"title": "Bob's report",
	}); status != http.StatusCreated {
		t.Fatal("create bob task failed")
	}

	// Alice sees only her own tasks.
	status, body := doJSON(t, srv, http.MethodGet, "/api/tasks", aliceToken, nil)
	if status != http.StatusOK {
		t.Fatalf("list: %d %v", status, body)
	}
	pagination := body["pagination"].(map[string]any)
	if pagination["total"].(float64) != 3 {
		t.Fatalf("expected alice total 3, got %v", pagination["total"])
	}

	// The search filter stays inside her scope.
	status, body = doJSON(t, srv, http.MethodGet, "/api/tasks?search=report", aliceToken, nil)
	if status != http.StatusOK {
		t.Fatalf("search list: %d %v", status, body)
	}
	if total := body["pagination"].(map[string]any)["total"].(float64); total != 2 {
		t.Fatalf("expected 2 matches for alice, got %v", total)
	}

	// Admin sees everything.
	status, body = doJSON(t, srv, http.MethodGet, "/api/tasks", adminToken, nil)
	if status != http.StatusOK {
		t.Fatalf("admin list: %d %v", status, body)
	}
	if total := body["pagination"].(map[string]any)["total"].(float64); total != 4 {
		t.Fatalf("expected admin total 4, got %v", total)
	}

	// Page past the end: empty list, true totals.
	status, body = doJSON(t, srv, http.MethodGet, "/api/tasks?page=5&limit=10", aliceToken, nil)
	if status != http.StatusOK {
		t.Fatalf("past-end list: %d %v", status, body)
	}
	tasks := body["tasks"].([]any)
	pagination = body["pagination"].(map[string]any)
	if len(tasks) != 0 || pagination["total"].(float64) != 3 || pagination["page"].(float64) != 5 {
		t.Fatalf("unexpected past-end page: tasks=%v pagination=%v", tasks, pagination)
	}

	// Malformed paging values fall back to defaults.
	status, body = doJSON(t, srv, http.MethodGet, "/api/tasks?page=abc&limit=-1", aliceToken, nil)
	if status != http.StatusOK {
		t.Fatalf("malformed paging: %d %v", status, body)
	}
	pagination = body["pagination"].(map[string]any)
	if pagination["page"].(float64) != 1 || pagination["limit"].(float64) != 10 {
		t.Fatalf("expected clamped paging, got %v", pagination)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	aliceToken := registerAndLogin(t, srv, "Alice", "alice@example.com", "")
	bobToken := registerAndLogin(t, srv, "Bob", "bob@example.com", "")
	adminToken := registerAndLogin(t, srv, "Admin", "admin@example.com", "admin")

	seed := []struct {
		token  string
		status string
	}{
		{aliceToken, "pending"},
		{aliceToken, "in-progress"},
		{aliceToken, "completed"},
		{bobToken, "pending"},
	}
	for i, s := range seed {
		if status, body := doJSON(t, srv, http.MethodPost, "/api/tasks", s.token, map[string]any{
			"title": fmt.Sprintf("Seed task %d", i), "status": s.status,
		}); status != http.StatusCreated {
			t.Fatalf("seed %d: %d %v", i, status, body)
		}
	}

	status, body := doJSON(t, srv, http.MethodGet, "/api/tasks/stats", aliceToken, nil)
	if status != http.StatusOK {
		t.Fatalf("stats: %d %v", status, body)
	}
	stats := body["stats"].(map[string]any)
	if stats["total"].(float64) != 3 || stats["pending"].(float64) != 1 ||
		stats["in-progress"].(float64) != 1 || stats["completed"].(float64) != 1 {
		t.Fatalf("unexpected alice stats: %v", stats)
	}

	status, body = doJSON(t, srv, http.MethodGet, "/api/tasks/stats", adminToken, nil)
	if status != http.StatusOK {
		t.Fatalf("admin stats: %d %v", status, body)
	}
	stats = body["stats"].(map[string]any)
	if stats["total"].(float64) != 4 {
		t.Fatalf("expected admin total 4, got %v", stats)
	}
}

func TestCreateTask_Validation(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "Alice", "alice@example.com", "")

	status, body := doJSON(t, srv, http.MethodPost, "/api/tasks", token, map[string]any{
		"title": "ab", "status": "archived",
	})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %v", status, body)
	}
	fields := body["fields"].(map[string]any)
	if _, ok := fields["title"]; !ok {
		t.Fatalf("expected title error in %v", fields)
	}
	if _, ok := fields["status"]; !ok {
		t.Fatalf("expected status error in %v", fields)
	}
}

func TestTaskRoutes_InvalidID(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "Alice", "alice@example.com", "")

	status, _ := doJSON(t, srv, http.MethodGet, "/api/tasks/not-a-number", token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for invalid id, got %d", status)
	}
}

package handler

import (
	"net/http"

	"github.com/okvist/taskboard/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. Every task
// route sits behind RequireAuth; register, login, and health are the
// only anonymous endpoints.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, tasks *service.TaskService) {
	authHandler := NewAuthHandler(auth)
	taskHandler := NewTaskHandler(tasks)

	protected := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, h)
	}

	mux.HandleFunc("GET /api/health", HandleHealth)

	mux.HandleFunc("POST /api/auth/register", authHandler.HandleRegister)
	mux.HandleFunc("POST /api/auth/login", authHandler.HandleLogin)
	mux.Handle("GET /api/auth/me", protected(authHandler.HandleMe))

	mux.Handle("GET /api/tasks", protected(taskHandler.HandleList))
	mux.Handle("POST /api/tasks", protected(taskHandler.HandleCreate))
	mux.Handle("GET /api/tasks/stats", protected(taskHandler.HandleStats))
	mux.Handle("GET /api/tasks/{id}", protected(taskHandler.HandleGet))
	mux.Handle("PUT /api/tasks/{id}", protected(taskHandler.HandleUpdate))
	mux.Handle("DELETE /api/tasks/{id}", protected(taskHandler.HandleDelete))
}

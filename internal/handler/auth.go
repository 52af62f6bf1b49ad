package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/okvist/taskboard/internal/domain"
	"github.com/okvist/taskboard/internal/service"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r registerRequest) validate() map[string]string {
	fields := make(map[string]string)
	name := strings.TrimSpace(r.Name)
	if name == "" {
		fields["name"] = "Name is required"
	} else if len(name) < 2 || len(name) > 50 {
		fields["name"] = "Name must be 2-50 characters"
	}
	email := strings.TrimSpace(r.Email)
	if email == "" {
		fields["email"] = "Email is required"
	} else if !strings.Contains(email, "@") {
		fields["email"] = "Please provide a valid email address"
	}
	if r.Password == "" {
		fields["password"] = "Password is required"
	} else if len(r.Password) < 6 || len(r.Password) > 50 {
		fields["password"] = "Password must be 6-50 characters"
	}
	if r.Role != "" && !domain.Role(r.Role).Valid() {
		fields["role"] = "Role must be either user or admin"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// HandleRegister creates a new account.
// POST /api/auth/register
// Request:  {"name":"...","email":"...","password":"...","role":"user"}
// Response: 201 {"user": {...}}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if fields := req.validate(); fields != nil {
		writeFieldErrors(w, fields)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			writeError(w, http.StatusConflict, "An account with that email already exists.")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.Error("register user", "error", err)
			writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user": toUserDTO(user),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) validate() map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(r.Email) == "" {
		fields["email"] = "Email is required"
	}
	if r.Password == "" {
		fields["password"] = "Password is required"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// HandleLogin verifies credentials and issues an identity token.
// POST /api/auth/login
// Request:  {"email":"...","password":"..."}
// Response: 200 {"token":"...","user": {...}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if fields := req.validate(); fields != nil {
		writeFieldErrors(w, fields)
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		slog.Error("login user", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  toUserDTO(user),
	})
}

// HandleMe returns the currently authenticated user.
// GET /api/auth/me
// Response: 200 {"user": {...}}
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), caller.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Token outlived its account.
			writeError(w, http.StatusUnauthorized, "Authentication required.")
			return
		}
		slog.Error("get current user", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

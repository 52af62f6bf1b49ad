package service_test

import (
	"testing"

	"github.com/okvist/taskboard/internal/domain"
	"github.com/okvist/taskboard/internal/service"
)

func TestCanAccessTask(t *testing.T) {
	task := &domain.Task{ID: 1, CreatedBy: 42}

	tests := []struct {
		name   string
		caller domain.Caller
		want   bool
	}{
		{"owner", domain.Caller{UserID: 42, Role: domain.RoleUser}, true},
		{"other user", domain.Caller{UserID: 7, Role: domain.RoleUser}, false},
		{"admin non-owner", domain.Caller{UserID: 7, Role: domain.RoleAdmin}, true},
		{"admin owner", domain.Caller{UserID: 42, Role: domain.RoleAdmin}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := service.CanAccessTask(tc.caller, task); got != tc.want {
				t.Fatalf("CanAccessTask = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScopeFor(t *testing.T) {
	user := domain.Caller{UserID: 42, Role: domain.RoleUser}
	if scope := service.ScopeFor(user); scope.OwnerID != 42 {
		t.Fatalf("user scope OwnerID = %d, want 42", scope.OwnerID)
	}

	admin := domain.Caller{UserID: 42, Role: domain.RoleAdmin}
	if scope := service.ScopeFor(admin); scope.OwnerID != 0 {
		t.Fatalf("admin scope OwnerID = %d, want 0 (unscoped)", scope.OwnerID)
	}
}

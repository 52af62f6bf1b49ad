package service

import "github.com/okvist/taskboard/internal/domain"

// CanAccessTask decides whether a caller may view, update, or delete a
// task: admins always, otherwise only the owner. Callers that fail this
// check are answered with ErrNotFound rather than ErrForbidden so that
// task ids belonging to other users are indistinguishable from ids
// that do not exist.
func CanAccessTask(caller domain.Caller, task *domain.Task) bool {
	return caller.IsAdmin() || caller.UserID == task.CreatedBy
}

// ScopeFor returns the visibility scope for list and stats queries:
// everything for admins, own tasks only for regular users. The scope is
// applied before any filter, so filter values can never widen it.
func ScopeFor(caller domain.Caller) domain.TaskScope {
	if caller.IsAdmin() {
		return domain.TaskScope{}
	}
	return domain.TaskScope{OwnerID: caller.UserID}
}

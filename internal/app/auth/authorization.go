// Package auth decides what an authenticated principal may see or do.
package auth

import (
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/pkg/apperrors"
)

// Principal is the authenticated caller of a request
type Principal struct {
	ID   string
	Role models.RoleType
}

// IsAdmin reports whether the principal holds the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// AuthorizeJobAccess allows admins to read any job and students only their own.
// A student asking for someone else's job gets NotFound so ids cannot be probed.
func AuthorizeJobAccess(p Principal, job *models.Job) error {
	if job == nil {
		return apperrors.NewNotFoundError("job not found")
	}
	if p.IsAdmin() {
		return nil
	}
	if p.Role == models.RoleStudent && job.StudentID == p.ID {
		return nil
	}
	return apperrors.NewNotFoundError("job not found")
}

// RequireAdmin fails with Forbidden unless the principal is an admin
func RequireAdmin(p Principal) error {
	if !p.IsAdmin() {
		return apperrors.NewForbiddenError("admin role required")
	}
	return nil
}

// RequireStudent fails with Forbidden unless the principal is a student
func RequireStudent(p Principal) error {
	if p.Role != models.RoleStudent {
		return apperrors.NewForbiddenError("student role required")
	}
	return nil
}

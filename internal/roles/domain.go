package roles

import (
	"time"

	"github.com/newsdesk-cms/newsdesk/internal/permissions"
)

// Role is a named bundle of permissions assigned to accounts.
type Role struct {
	ID          int64                    `json:"id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Permissions []permissions.Permission `json:"permissions"`
	IsDefault   bool                     `json:"isDefault"`
	Deleted     bool                     `json:"-"`
	DeletedAt   *time.Time               `json:"-"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
}

// Protected reports whether the role may never be deleted. All default
// roles are undeletable so seeded references stay valid.
func (r *Role) Protected() bool {
	return r.IsDefault
}

// AdminLocked reports whether the role may never be mutated either.
// Only the default admin role is fully immutable.
func (r *Role) AdminLocked() bool {
	return r.IsDefault && r.Title == "admin"
}

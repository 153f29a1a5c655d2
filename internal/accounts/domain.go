package accounts

import (
	"time"

	"github.com/newsdesk-cms/newsdesk/internal/roles"
	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// Account statuses.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// ValidStatus reports whether the given status is a known enum value.
func ValidStatus(status string) bool {
	return status == StatusActive || status == StatusInactive || status == StatusSuspended
}

// Account is an identity bound to exactly one role. Every read populates
// the role and its permissions so authorization always sees live grants.
// The password hash never serializes outward.
type Account struct {
	ID           int64       `json:"id"`
	FullName     string      `json:"fullName"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Phone        string      `json:"phone"`
	Role         *roles.Role `json:"role"`
	Status       string      `json:"status"`
	LastLogin    *time.Time  `json:"lastLogin"`
	Deleted      bool        `json:"-"`
	DeletedAt    *time.Time  `json:"-"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Identity projects the account into the request-context value the
// authorization gate evaluates.
func (a *Account) Identity() *shared.Identity {
	id := &shared.Identity{
		ID:       a.ID,
		Email:    a.Email,
		FullName: a.FullName,
	}
	if a.Role != nil {
		id.RoleTitle = a.Role.Title
		for _, p := range a.Role.Permissions {
			id.Permissions = append(id.Permissions, shared.GrantedPermission{
				Resource: p.Resource,
				Actions:  p.Actions,
			})
		}
	}
	return id
}

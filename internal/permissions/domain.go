package permissions

import "time"

// Actions a permission may grant on its resource. ActionManage is a
// wildcard for the permission's resource only, not a global wildcard.
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionManage = "manage"
)

// KnownActions enumerates every valid action value.
var KnownActions = []string{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage}

// Permission grants a set of actions over one resource tag.
type Permission struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Resource    string     `json:"resource"`
	Actions     []string   `json:"actions"`
	Deleted     bool       `json:"-"`
	DeletedAt   *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ValidAction reports whether the given action is a known enum value.
func ValidAction(action string) bool {
	for _, a := range KnownActions {
		if a == action {
			return true
		}
	}
	return false
}

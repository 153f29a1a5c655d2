// Package rbac implements the authorization gate: composable guards that
// admit or reject a request based on the verified identity's role and
// permission set. Guards are pure over the identity already attached to
// the request context; they never read the store themselves.
package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/newsdesk-cms/newsdesk/internal/platform/httpx"
	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// AdminRole is the super-role title. Identities holding it bypass
// permission checks entirely.
const AdminRole = "admin"

// Middleware wires authorization guards for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// RequireAuthenticated rejects with 401 unless token verification
// attached an identity to the request context.
func (m Middleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shared.IdentityFromContext(r.Context()) == nil {
			httpx.Fail(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects with 403 unless the identity's role title exactly
// matches roleName.
func (m Middleware) RequireRole(roleName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := shared.IdentityFromContext(r.Context())
			if id == nil {
				httpx.Fail(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if id.RoleTitle != roleName {
				m.logDenied(r, id, "role "+roleName)
				httpx.Fail(w, http.StatusForbidden, "role "+roleName+" required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is shorthand for RequireRole(AdminRole).
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireRole(AdminRole)(next)
}

// RequirePermission admits iff the identity's role grants the requested
// action on the resource. The admin role short-circuits; "manage" acts as
// a per-resource wildcard.
func (m Middleware) RequirePermission(resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := shared.IdentityFromContext(r.Context())
			if id == nil {
				httpx.Fail(w, http.StatusUnauthorized, "authentication required")
				return
			}
			verdict := Decide(id, resource, action)
			switch verdict {
			case Admit:
				next.ServeHTTP(w, r)
			case DenyNoPermissions:
				m.logDenied(r, id, resource+":"+action)
				httpx.Fail(w, http.StatusForbidden, "no permissions assigned")
			default:
				m.logDenied(r, id, resource+":"+action)
				httpx.Fail(w, http.StatusForbidden, "permission denied for "+action+" on "+resource)
			}
		})
	}
}

// Verdict is the outcome of a permission decision.
type Verdict int

const (
	// Admit allows the request.
	Admit Verdict = iota
	// DenyNoPermissions rejects because the role carries no permissions at all.
	DenyNoPermissions
	// DenyNoMatch rejects because no permission matched the resource and action.
	DenyNoMatch
)

// Decide evaluates the (resource, action) request against the identity's
// effective permission set. Pure and side-effect-free.
func Decide(id *shared.Identity, resource, action string) Verdict {
	if id.RoleTitle == AdminRole {
		return Admit
	}
	if len(id.Permissions) == 0 {
		return DenyNoPermissions
	}
	for _, p := range id.Permissions {
		if p.Resource != resource {
			continue
		}
		for _, a := range p.Actions {
			if a == action || a == "manage" {
				return Admit
			}
		}
	}
	return DenyNoMatch
}

func (m Middleware) logDenied(r *http.Request, id *shared.Identity, want string) {
	if m.Logger == nil {
		return
	}
	m.Logger.Warn("authorization denied",
		slog.Int64("account", id.ID),
		slog.String("role", id.RoleTitle),
		slog.String("required", want),
		slog.String("path", strings.TrimSpace(r.URL.Path)),
	)
}

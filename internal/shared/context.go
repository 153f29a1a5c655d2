package shared

import "context"

// GrantedPermission is one resource grant on the identity's role.
type GrantedPermission struct {
	Resource string
	Actions  []string
}

// Identity is the authenticated account attached to a request after token
// verification. Role and permissions are re-fetched from the store per
// request; the token is only an identity pointer.
type Identity struct {
	ID          int64
	Email       string
	FullName    string
	RoleTitle   string
	Permissions []GrantedPermission
}

type identityContextKey struct{}

// ContextWithIdentity stores the verified identity in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the verified identity from context.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}

package shared

import "context"

// Principal identifies the caller of a request: the organisation it acts
// for and the user performing the action.
type Principal struct {
	OrgID  string
	UserID string
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	if !ok || p.OrgID == "" || p.UserID == "" {
		return Principal{}, false
	}
	return p, true
}

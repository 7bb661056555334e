package domain

import "context"

type principalKey struct{}

// ContextPrincipal carries the authenticated identity through request context.
type ContextPrincipal struct {
	Subject  string
	Nickname string
	TenantID string
}

// WithPrincipal stores a ContextPrincipal in the context.
func WithPrincipal(ctx context.Context, p ContextPrincipal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext extracts the ContextPrincipal from the context.
func PrincipalFromContext(ctx context.Context) (ContextPrincipal, bool) {
	p, ok := ctx.Value(principalKey{}).(ContextPrincipal)
	return p, ok
}

// RequireTenant fails with *AccessDeniedError when the caller is bound to a
// different tenant. Callers without a tenant claim, or without a principal
// at all, are not restricted.
func RequireTenant(ctx context.Context, tenantID string) error {
	p, ok := PrincipalFromContext(ctx)
	if !ok || p.TenantID == "" || p.TenantID == tenantID {
		return nil
	}
	return ErrAccessDenied("access denied to tenant %q", tenantID)
}

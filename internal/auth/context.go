package auth

import "context"

type identityContextKey struct{}
type apiKeyContextKey struct{}

// ContextWithIdentity attaches the authenticated identity to the context.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, &identity)
}

// IdentityFromContext extracts the authenticated identity from the context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	v, ok := ctx.Value(identityContextKey{}).(*Identity)
	if !ok || v == nil || v.UserID == "" {
		return Identity{}, false
	}
	return *v, true
}

// ContextWithAPICaller marks the request as authenticated through the shared
// API key. API-key callers carry no identity and no ownership.
func ContextWithAPICaller(ctx context.Context) context.Context {
	return context.WithValue(ctx, apiKeyContextKey{}, true)
}

// IsAPICaller reports whether the request authenticated with the API key.
func IsAPICaller(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, ok := ctx.Value(apiKeyContextKey{}).(bool)
	return ok && v
}

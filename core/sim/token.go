package sim

import "context"

type tokenKey struct{}

// WithToken returns a context carrying the bearer token used by gateway
// calls. The token is written only on the serialized control path, so no
// call chain can observe a half-updated value.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext extracts the bearer token, or "" when none is set.
func TokenFromContext(ctx context.Context) string {
	if t, ok := ctx.Value(tokenKey{}).(string); ok {
		return t
	}
	return ""
}

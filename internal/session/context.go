package session

import "context"

// TokenHeader carries the session token on authenticated requests.
const TokenHeader = "X-Rejuvena-Token"

type contextKey struct{}

// ToContext attaches the authenticated session to the request context.
func ToContext(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session attached by the auth middleware, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(*Session)
	return sess, ok
}

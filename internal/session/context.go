package session

import "context"

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request's session, or nil when signed out.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// Token is an apiclient.TokenSource backed by the request's session.
func Token(ctx context.Context) (string, error) {
	if s := FromContext(ctx); s != nil {
		return s.IDToken, nil
	}
	return "", nil
}

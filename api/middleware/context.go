package middleware

import (
	"context"

	"github.com/travelia-app/travelia-backend/internal/session"
)

type contextKey string

const ctxSession contextKey = "session"

// SessionFromContext returns the authenticated session seeded by Auth.
func SessionFromContext(ctx context.Context) session.Session {
	if ctx == nil {
		return session.Session{}
	}
	if v, ok := ctx.Value(ctxSession).(session.Session); ok {
		return v
	}
	return session.Session{}
}

// WithSession injects a session into the context. Tests use it to bypass Auth.
func WithSession(ctx context.Context, sess session.Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSession, sess)
}

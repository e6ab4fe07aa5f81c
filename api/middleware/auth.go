package middleware

import (
	"net/http"
	"strings"

	"github.com/travelia-app/travelia-backend/api/responses"
	"github.com/travelia-app/travelia-backend/internal/session"
	pkgerrors "github.com/travelia-app/travelia-backend/pkg/errors"
	"github.com/travelia-app/travelia-backend/pkg/logger"
)

// tokenCookieName matches the cookie the web client sets at login.
const tokenCookieName = "token"

// Auth requires a bearer token and seeds the request context with the
// session. The token is opaque; the upstream travel API is the authority on
// its validity, so the only local check is presence.
func Auth(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			sess := session.FromToken(token)
			ctx := WithSession(r.Context(), sess)
			if logg != nil {
				ctx = logg.WithSession(ctx, sess.ID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken reads the token from the Authorization header, falling back to
// the session cookie the browser client carries.
func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw != "" {
		if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
			return strings.TrimSpace(raw[7:])
		}
		return raw
	}

	cookie, err := r.Cookie(tokenCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

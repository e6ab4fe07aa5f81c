package middleware

import (
	"context"
	"net/http"

	"github.com/travelia-app/travelia-backend/api/responses"
	"github.com/travelia-app/travelia-backend/pkg/enums"
	pkgerrors "github.com/travelia-app/travelia-backend/pkg/errors"
	"github.com/travelia-app/travelia-backend/pkg/logger"
	"github.com/travelia-app/travelia-backend/pkg/travel"
)

// RoleResolver maps a bearer token to the upstream user record.
type RoleResolver interface {
	GetLoggedUser(ctx context.Context, token string) (*travel.User, error)
}

// RequireAdmin resolves the caller through the upstream API and rejects
// non-admin roles before the handler runs. Upstream enforces the role on
// the mutation itself as well.
func RequireAdmin(resolver RoleResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolver == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "role resolver unavailable"))
				return
			}

			sess := SessionFromContext(r.Context())
			if !sess.Authenticated() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			user, err := resolver.GetLoggedUser(r.Context(), sess.Token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if user.Role != enums.RoleAdmin {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

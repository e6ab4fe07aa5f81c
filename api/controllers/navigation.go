package controllers

import (
	"net/http"

	"github.com/travelia-app/travelia-backend/api/middleware"
	"github.com/travelia-app/travelia-backend/api/responses"
	"github.com/travelia-app/travelia-backend/internal/navigation"
	pkgerrors "github.com/travelia-app/travelia-backend/pkg/errors"
	"github.com/travelia-app/travelia-backend/pkg/logger"
)

// Navigation returns the role-appropriate chrome links, resolving the role
// through the upstream user record.
func Navigation(resolver middleware.RoleResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "role resolver unavailable"))
			return
		}

		sess := middleware.SessionFromContext(r.Context())
		user, err := resolver.GetLoggedUser(r.Context(), sess.Token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"role":  user.Role,
			"links": navigation.LinksFor(user.Role),
		})
	}
}

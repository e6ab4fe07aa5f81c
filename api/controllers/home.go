package controllers

import (
	"net/http"

	"github.com/travelia-app/travelia-backend/api/responses"
	"github.com/travelia-app/travelia-backend/internal/catalog"
	pkgerrors "github.com/travelia-app/travelia-backend/pkg/errors"
	"github.com/travelia-app/travelia-backend/pkg/logger"
)

// Home serves the joined initial page load: banners, promos, categories,
// and activities, fetched concurrently. One failed fetch fails the whole
// response; the client shows a retryable error state, never a partial page.
func Home(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		view, err := svc.LoadHome(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

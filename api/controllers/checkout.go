package controllers

import (
	"net/http"

	"github.com/travelia-app/travelia-backend/api/middleware"
	"github.com/travelia-app/travelia-backend/api/responses"
	checkoutsvc "github.com/travelia-app/travelia-backend/internal/checkout"
	pkgerrors "github.com/travelia-app/travelia-backend/pkg/errors"
	"github.com/travelia-app/travelia-backend/pkg/logger"
)

// Checkout submits the session's selection as one transaction. The route
// sits behind the idempotency middleware, so a retried Idempotency-Key
// replays the stored response instead of double-booking.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		result, err := svc.Checkout(r.Context(), middleware.SessionFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

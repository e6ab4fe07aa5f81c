package controllers

import (
	"net/http"

	"github.com/travelia-app/travelia-backend/api/middleware"
	"github.com/travelia-app/travelia-backend/api/responses"
	"github.com/travelia-app/travelia-backend/internal/notify"
	pkgerrors "github.com/travelia-app/travelia-backend/pkg/errors"
	"github.com/travelia-app/travelia-backend/pkg/logger"
)

// Notifications drains the session's pending notices.
func Notifications(svc notify.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification service unavailable"))
			return
		}

		notices, err := svc.Drain(r.Context(), middleware.SessionFromContext(r.Context()).ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, notices)
	}
}

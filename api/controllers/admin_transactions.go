package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/travelia-app/travelia-backend/api/middleware"
	"github.com/travelia-app/travelia-backend/api/responses"
	"github.com/travelia-app/travelia-backend/api/validators"
	txsvc "github.com/travelia-app/travelia-backend/internal/transactions"
	"github.com/travelia-app/travelia-backend/pkg/enums"
	pkgerrors "github.com/travelia-app/travelia-backend/pkg/errors"
	"github.com/travelia-app/travelia-backend/pkg/logger"
)

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending success failed cancelled"`
}

// AdminTransactions lists every transaction for the back office.
func AdminTransactions(svc txsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transactions service unavailable"))
			return
		}

		list, err := svc.ListAll(r.Context(), middleware.SessionFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminUpdateTransactionStatus posts a new status from the fixed enum.
func AdminUpdateTransactionStatus(svc txsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transactions service unavailable"))
			return
		}

		var payload updateStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess := middleware.SessionFromContext(r.Context())
		if err := svc.UpdateStatus(r.Context(), sess, chi.URLParam(r, "transactionID"), enums.TransactionStatus(payload.Status)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": payload.Status})
	}
}

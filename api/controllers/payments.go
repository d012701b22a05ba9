package controllers

import (
	"net/http"

	"github.com/angelmondragon/fruitstand-backend/api/middleware"
	"github.com/angelmondragon/fruitstand-backend/api/responses"
	"github.com/angelmondragon/fruitstand-backend/internal/payments"
	pkgerrors "github.com/angelmondragon/fruitstand-backend/pkg/errors"
	"github.com/angelmondragon/fruitstand-backend/pkg/logger"
)

// CreatePaymentIntent prices the cart server side and returns the client secret.
func CreatePaymentIntent(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeDependency, "payments are not configured")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.CreateIntent(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, intent)
	}
}

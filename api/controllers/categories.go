package controllers

import (
	"net/http"

	"github.com/solostack/marketplace-backend/api/responses"
	"github.com/solostack/marketplace-backend/api/validators"
	"github.com/solostack/marketplace-backend/internal/categories"
	pkgerrors "github.com/solostack/marketplace-backend/pkg/errors"
	"github.com/solostack/marketplace-backend/pkg/logger"
)

// CategoryCreate adds a catalog category. Admin only.
func CategoryCreate(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body categories.CreateCategoryInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

// CategoryList serves all categories.
func CategoryList(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

package controllers

import (
	"net/http"

	"github.com/solostack/marketplace-backend/api/responses"
	"github.com/solostack/marketplace-backend/internal/stats"
	pkgerrors "github.com/solostack/marketplace-backend/pkg/errors"
	"github.com/solostack/marketplace-backend/pkg/logger"
)

// PlatformStats serves the marketplace-wide counters.
func PlatformStats(svc stats.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "stats service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data, err := svc.Platform(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, data)
	}
}

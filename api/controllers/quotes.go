package controllers

import (
	"net/http"

	"github.com/angelmondragon/pricingdef/api/responses"
	"github.com/angelmondragon/pricingdef/api/validators"
	"github.com/angelmondragon/pricingdef/internal/quote"
	"github.com/angelmondragon/pricingdef/pkg/logger"
)

// CreateQuote prices one resource record. Answers 422 when no definition or
// tier applies.
func CreateQuote(svc quote.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body quote.Request
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.ResourceType = validators.SanitizeString(body.ResourceType, 128)

		result, err := svc.Quote(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status := http.StatusOK
		if result.SnapshotID != nil {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

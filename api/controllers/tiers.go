package controllers

import (
	"net/http"

	"github.com/angelmondragon/pricingdef/api/responses"
	"github.com/angelmondragon/pricingdef/api/validators"
	"github.com/angelmondragon/pricingdef/internal/tiers"
	"github.com/angelmondragon/pricingdef/pkg/enums"
	pkgerrors "github.com/angelmondragon/pricingdef/pkg/errors"
	"github.com/angelmondragon/pricingdef/pkg/logger"
	"github.com/angelmondragon/pricingdef/pkg/metrics"
)

type validateTiersRequest struct {
	Tiers           tiers.RawTiers `json:"tiers"`
	Minimum         *int64         `json:"minimum" validate:"omitempty,min=1"`
	Maximum         *int64         `json:"maximum" validate:"omitempty,min=1"`
	HighestBoundary string         `json:"highest_boundary"`
	Categories      []string       `json:"categories" validate:"omitempty,dive,required"`
}

// ValidateTiers checks a raw tier set against ad-hoc bounds. It always answers
// 200 with the report; an invalid set is a valid answer here.
func ValidateTiers(m *metrics.QuoteMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body validateTiersRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mode, err := enums.ParseBoundaryMode(body.HighestBoundary)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid highest_boundary").
				WithDetails(map[string]any{"field": "highest_boundary"}))
			return
		}

		report := tiers.Validate(body.Tiers, tiers.Bounds{
			Minimum:    body.Minimum,
			Maximum:    body.Maximum,
			Mode:       mode,
			Categories: body.Categories,
		})
		for _, issue := range report.Issues {
			m.IncIssue(string(issue.Kind))
		}
		responses.WriteSuccess(w, report)
	}
}

package controllers

import (
	"net/http"

	"github.com/angelmondragon/pricingdef/api/responses"
	"github.com/angelmondragon/pricingdef/api/validators"
	"github.com/angelmondragon/pricingdef/internal/definitions"
	"github.com/angelmondragon/pricingdef/internal/resource"
	pkgerrors "github.com/angelmondragon/pricingdef/pkg/errors"
	"github.com/angelmondragon/pricingdef/pkg/logger"
)

// definitionRequest carries the definition plus the priceable attributes its
// bounds are read from (minimum, maximum).
type definitionRequest struct {
	Priceable  resource.Map      `json:"priceable"`
	Definition definitions.Input `json:"definition"`
}

func ListDefinitions(svc definitions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := validators.PathOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defs, err := svc.List(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if defs == nil {
			defs = []definitions.Definition{}
		}
		responses.WriteSuccess(w, defs)
	}
}

// CurrentDefinition returns the definition that applies on as_of (default today).
func CurrentDefinition(svc definitions.Service, selector definitions.Selector, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := validators.PathOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		asOf, err := validators.ParseQueryDate(r, "as_of")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		day, err := selector.ReferenceDate(asOf)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInvalidArgument, err, "invalid as_of"))
			return
		}

		defs, err := svc.ListAvailable(r.Context(), owner, day)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		def, err := selector.Select(defs, day)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInvalidArgument, err, "invalid as_of"))
			return
		}
		if def == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no pricing definition applies on "+day.String()))
			return
		}
		responses.WriteSuccess(w, def)
	}
}

func CreateDefinition(svc definitions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := validators.PathOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body definitionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		def, err := svc.Create(r.Context(), owner, body.Priceable, body.Definition)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, def)
	}
}

func UpdateDefinition(svc definitions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := validators.PathOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.PathUUID(r, "definitionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body definitionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		def, err := svc.Update(r.Context(), owner, id, body.Priceable, body.Definition)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, def)
	}
}

func DeleteDefinition(svc definitions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := validators.PathOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.PathUUID(r, "definitionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), owner, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeletePriceable drops every definition of a removed priceable.
func DeletePriceable(svc definitions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := validators.PathOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		removed, err := svc.DeleteOwner(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": removed})
	}
}

package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/pricingdef/pkg/errors"
	"github.com/angelmondragon/pricingdef/pkg/types"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxParamLen = 128

// ParseQueryDate reads an optional YYYY-MM-DD query parameter.
func ParseQueryDate(r *http.Request, key string) (*types.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := types.ParseDate(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a date").WithDetails(map[string]any{"field": key, "format": "YYYY-MM-DD"})
	}
	return &value, nil
}

// PathOwner builds an owner reference from the {type} and {id} URL params.
func PathOwner(r *http.Request) (types.OwnerRef, error) {
	ref := types.NewOwnerRef(
		SanitizeString(chi.URLParam(r, "type"), maxParamLen),
		SanitizeString(chi.URLParam(r, "id"), maxParamLen),
	)
	if err := ref.Validate(); err != nil {
		return types.OwnerRef{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid path").WithDetails(map[string]any{"type": ref.Type, "id": ref.ID})
	}
	return ref, nil
}

// PathUUID parses a uuid URL param.
func PathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := SanitizeString(chi.URLParam(r, key), maxParamLen)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a uuid").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}

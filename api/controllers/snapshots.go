package controllers

import (
	"net/http"

	"github.com/angelmondragon/pricingdef/api/responses"
	"github.com/angelmondragon/pricingdef/api/validators"
	"github.com/angelmondragon/pricingdef/internal/snapshots"
	"github.com/angelmondragon/pricingdef/pkg/logger"
)

func ListSnapshots(svc snapshots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := validators.PathOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.List(r.Context(), ref)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if rows == nil {
			rows = []snapshots.Snapshot{}
		}
		responses.WriteSuccess(w, rows)
	}
}

func GetSnapshot(svc snapshots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "snapshotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snapshot, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// DetachResource unlinks a removed resource from its quotes. The quotes stay.
func DetachResource(svc snapshots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := validators.PathOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detached, err := svc.Detach(r.Context(), ref)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"detached": detached})
	}
}

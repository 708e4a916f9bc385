package controllers

import (
	"net/http"

	"github.com/foresttrail/trailops/api/responses"
	"github.com/foresttrail/trailops/api/validators"
	"github.com/foresttrail/trailops/internal/inventory"
	pkgerrors "github.com/foresttrail/trailops/pkg/errors"
	"github.com/foresttrail/trailops/pkg/logger"
)

// StockLevel reports the quantity of one item at one location.
func StockLevel(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}
		locationID, err := validators.ParsePathUUID(r, "locationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParsePathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		level, err := svc.GetStock(r.Context(), locationID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, level)
	}
}

// LocationMovements pages through the movements touching a location.
func LocationMovements(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}
		locationID, err := validators.ParsePathUUID(r, "locationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListMovements(r.Context(), locationID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, list.Movements, list.NextCursor)
	}
}

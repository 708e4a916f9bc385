package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/foresttrail/trailops/api/middleware"
	"github.com/foresttrail/trailops/api/responses"
	"github.com/foresttrail/trailops/api/validators"
	"github.com/foresttrail/trailops/internal/transfers"
	"github.com/foresttrail/trailops/pkg/enums"
	pkgerrors "github.com/foresttrail/trailops/pkg/errors"
	"github.com/foresttrail/trailops/pkg/logger"
)

const maxTextField = 500

type transferLineRequest struct {
	ItemID   string  `json:"item_id" validate:"required,uuid"`
	Quantity int     `json:"quantity" validate:"required,gt=0"`
	Remarks  *string `json:"remarks" validate:"omitempty,max=500"`
}

type transferCreateRequest struct {
	SourceLocationID      string                `json:"source_location_id" validate:"required,uuid"`
	DestinationLocationID string                `json:"destination_location_id" validate:"required,uuid"`
	Reason                *string               `json:"reason" validate:"omitempty,max=500"`
	Lines                 []transferLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type transferLinesRequest struct {
	Reason *string               `json:"reason" validate:"omitempty,max=500"`
	Lines  []transferLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type transferStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes" validate:"omitempty,max=500"`
}

func toLineInputs(lines []transferLineRequest) ([]transfers.LineInput, error) {
	out := make([]transfers.LineInput, 0, len(lines))
	for i, line := range lines {
		itemID, err := uuid.Parse(strings.TrimSpace(line.ItemID))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item_id").
				WithDetails(map[string]any{"line": i})
		}
		out = append(out, transfers.LineInput{
			ItemID:   itemID,
			Quantity: line.Quantity,
			Remarks:  sanitizeOptional(line.Remarks),
		})
	}
	return out, nil
}

func (r transferCreateRequest) toInput(actor string) (transfers.CreateInput, error) {
	src, err := uuid.Parse(strings.TrimSpace(r.SourceLocationID))
	if err != nil {
		return transfers.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid source_location_id")
	}
	dst, err := uuid.Parse(strings.TrimSpace(r.DestinationLocationID))
	if err != nil {
		return transfers.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid destination_location_id")
	}
	lines, err := toLineInputs(r.Lines)
	if err != nil {
		return transfers.CreateInput{}, err
	}
	return transfers.CreateInput{
		SourceLocationID:      src,
		DestinationLocationID: dst,
		Lines:                 lines,
		Reason:                sanitizeOptional(r.Reason),
		Actor:                 actor,
	}, nil
}

func sanitizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	clean := validators.SanitizeString(*value, maxTextField)
	if clean == "" {
		return nil
	}
	return &clean
}

// TransferCreate records a new pending transfer.
func TransferCreate(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}

		var payload transferCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput(middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// TransferList returns transfers newest first.
func TransferList(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}

		filters, err := parseListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, list.Transfers, list.NextCursor)
	}
}

func parseListFilters(r *http.Request) (transfers.ListFilters, error) {
	var filters transfers.ListFilters
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseTransferStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter").
				WithDetails(map[string]any{"field": "status"})
		}
		filters.Status = &status
	}
	var err error
	if filters.SourceLocationID, err = validators.ParseQueryUUID(r, "source_location_id"); err != nil {
		return filters, err
	}
	if filters.DestinationLocationID, err = validators.ParseQueryUUID(r, "destination_location_id"); err != nil {
		return filters, err
	}
	if filters.CreatedFrom, err = validators.ParseQueryTime(r, "from"); err != nil {
		return filters, err
	}
	if filters.CreatedTo, err = validators.ParseQueryTime(r, "to"); err != nil {
		return filters, err
	}
	return filters, nil
}

// TransferDetail returns one transfer with its lines.
func TransferDetail(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}
		id, err := validators.ParsePathUUID(r, "transferId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// TransferUpdateLines replaces the lines of an editable transfer.
func TransferUpdateLines(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}
		id, err := validators.ParsePathUUID(r, "transferId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transferLinesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lines, err := toLineInputs(payload.Lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateLines(r.Context(), transfers.UpdateLinesInput{
			TransferID: id,
			Lines:      lines,
			Reason:     sanitizeOptional(payload.Reason),
			Actor:      middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// TransferTransition moves a transfer to a new status.
func TransferTransition(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}
		id, err := validators.ParsePathUUID(r, "transferId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transferStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseTransferStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
				WithDetails(map[string]any{"field": "status"}))
			return
		}

		detail, err := svc.TransitionStatus(r.Context(), transfers.TransitionInput{
			TransferID: id,
			Status:     status,
			Notes:      sanitizeOptional(payload.Notes),
			Actor:      middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// TransferMovements lists the ledger movements a transfer produced.
func TransferMovements(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}
		id, err := validators.ParsePathUUID(r, "transferId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		moves, err := svc.Movements(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, moves)
	}
}

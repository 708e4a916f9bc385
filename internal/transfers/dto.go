package transfers

import (
	"time"

	"github.com/google/uuid"

	"github.com/foresttrail/trailops/pkg/db/models"
	"github.com/foresttrail/trailops/pkg/enums"
)

// LineInput is one requested item quantity.
type LineInput struct {
	ItemID   uuid.UUID `json:"item_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
	Remarks  *string   `json:"remarks,omitempty" validate:"omitempty,max=500"`
}

// CreateInput carries a new transfer request.
type CreateInput struct {
	SourceLocationID      uuid.UUID
	DestinationLocationID uuid.UUID
	Lines                 []LineInput
	Reason                *string
	Actor                 string
}

// UpdateLinesInput replaces every line of an editable transfer.
type UpdateLinesInput struct {
	TransferID uuid.UUID
	Lines      []LineInput
	Reason     *string
	Actor      string
}

// TransitionInput moves a transfer to a new status.
type TransitionInput struct {
	TransferID uuid.UUID
	Status     enums.TransferStatus
	Notes      *string
	Actor      string
}

// ListFilters narrows the transfer list. Zero values match everything.
type ListFilters struct {
	Status                *enums.TransferStatus
	SourceLocationID      *uuid.UUID
	DestinationLocationID *uuid.UUID
	CreatedFrom           *time.Time
	CreatedTo             *time.Time
}

// TransferLineDTO is one line of a transfer.
type TransferLineDTO struct {
	ID                  uuid.UUID `json:"id"`
	ItemID              uuid.UUID `json:"item_id"`
	RequestedQuantity   int       `json:"requested_quantity"`
	AvailableSnapshot   int       `json:"available_snapshot"`
	TransferredQuantity int       `json:"transferred_quantity"`
	Remarks             *string   `json:"remarks,omitempty"`
}

// TransferSummary is the header of a transfer.
type TransferSummary struct {
	ID                    uuid.UUID            `json:"id"`
	Code                  string               `json:"code"`
	SourceLocationID      uuid.UUID            `json:"source_location_id"`
	DestinationLocationID uuid.UUID            `json:"destination_location_id"`
	Status                enums.TransferStatus `json:"status"`
	Reason                *string              `json:"reason,omitempty"`
	TotalItems            int                  `json:"total_items"`
	TotalQuantity         int                  `json:"total_quantity"`
	CreatedBy             string               `json:"created_by"`
	UpdatedBy             string               `json:"updated_by"`
	CreatedAt             time.Time            `json:"created_at"`
	UpdatedAt             time.Time            `json:"updated_at"`
}

// TransferDetail is a header plus its lines.
type TransferDetail struct {
	TransferSummary
	AllowedTransitions []enums.TransferStatus `json:"allowed_transitions"`
	Lines              []TransferLineDTO      `json:"lines"`
}

// TransferList wraps paginated headers plus the next page cursor.
type TransferList struct {
	Transfers  []TransferSummary `json:"transfers"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

func newSummary(header models.TransferRequest) TransferSummary {
	return TransferSummary{
		ID:                    header.ID,
		Code:                  header.Code,
		SourceLocationID:      header.SourceLocationID,
		DestinationLocationID: header.DestinationLocationID,
		Status:                header.Status,
		Reason:                header.Reason,
		TotalItems:            header.TotalItems,
		TotalQuantity:         header.TotalQuantity,
		CreatedBy:             header.CreatedBy,
		UpdatedBy:             header.UpdatedBy,
		CreatedAt:             header.CreatedAt,
		UpdatedAt:             header.UpdatedAt,
	}
}

func newDetail(header models.TransferRequest, lines []models.TransferLine) *TransferDetail {
	out := &TransferDetail{
		TransferSummary:    newSummary(header),
		AllowedTransitions: AllowedTransitions(header.Status),
		Lines:              make([]TransferLineDTO, 0, len(lines)),
	}
	for _, line := range lines {
		out.Lines = append(out.Lines, TransferLineDTO{
			ID:                  line.ID,
			ItemID:              line.ItemID,
			RequestedQuantity:   line.RequestedQuantity,
			AvailableSnapshot:   line.AvailableSnapshot,
			TransferredQuantity: line.TransferredQuantity,
			Remarks:             line.Remarks,
		})
	}
	return out
}

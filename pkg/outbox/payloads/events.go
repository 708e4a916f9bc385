package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/foresttrail/trailops/pkg/enums"
)

// TransferLine is the line shape carried by transfer events.
type TransferLine struct {
	ItemID            uuid.UUID `json:"item_id"`
	RequestedQuantity int       `json:"requested_quantity"`
	AvailableSnapshot int       `json:"available_snapshot"`
}

// TransferCreatedEvent is emitted when a new transfer request is recorded.
type TransferCreatedEvent struct {
	TransferID            uuid.UUID            `json:"transfer_id"`
	Code                  string               `json:"code"`
	SourceLocationID      uuid.UUID            `json:"source_location_id"`
	DestinationLocationID uuid.UUID            `json:"destination_location_id"`
	Status                enums.TransferStatus `json:"status"`
	TotalItems            int                  `json:"total_items"`
	TotalQuantity         int                  `json:"total_quantity"`
	Lines                 []TransferLine       `json:"lines"`
}

// TransferLinesUpdatedEvent is emitted when a pending transfer's lines are replaced.
type TransferLinesUpdatedEvent struct {
	TransferID    uuid.UUID      `json:"transfer_id"`
	Code          string         `json:"code"`
	TotalItems    int            `json:"total_items"`
	TotalQuantity int            `json:"total_quantity"`
	Lines         []TransferLine `json:"lines"`
}

// TransferStatusChangedEvent is emitted on every successful status transition.
type TransferStatusChangedEvent struct {
	TransferID         uuid.UUID            `json:"transfer_id"`
	Code               string               `json:"code"`
	FromStatus         enums.TransferStatus `json:"from_status"`
	ToStatus           enums.TransferStatus `json:"to_status"`
	Notes              string               `json:"notes,omitempty"`
	MovementsRecorded  int                  `json:"movements_recorded"`
	QuantityTransacted int                  `json:"quantity_transacted"`
	ChangedAt          time.Time            `json:"changed_at"`
}

package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/foresttrail/trailops/pkg/db/models"
	"github.com/foresttrail/trailops/pkg/enums"
)

// StockLevelDTO is the quantity of one item at one location.
type StockLevelDTO struct {
	LocationID uuid.UUID `json:"location_id"`
	ItemID     uuid.UUID `json:"item_id"`
	Quantity   int       `json:"quantity"`
}

// MovementDTO exposes one audit row.
type MovementDTO struct {
	ID             uuid.UUID          `json:"id"`
	ItemID         uuid.UUID          `json:"item_id"`
	FromLocationID *uuid.UUID         `json:"from_location_id,omitempty"`
	ToLocationID   *uuid.UUID         `json:"to_location_id,omitempty"`
	Quantity       int                `json:"quantity"`
	MovementType   enums.MovementType `json:"movement_type"`
	ReferenceID    uuid.UUID          `json:"reference_id"`
	Notes          *string            `json:"notes,omitempty"`
	Actor          string             `json:"actor"`
	CreatedAt      time.Time          `json:"created_at"`
}

// MovementList wraps a page of movements plus the next page cursor.
type MovementList struct {
	Movements  []MovementDTO `json:"movements"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// NewMovementDTO maps a movement row to its API shape.
func NewMovementDTO(row models.StockMovement) MovementDTO {
	return MovementDTO{
		ID:             row.ID,
		ItemID:         row.ItemID,
		FromLocationID: row.FromLocationID,
		ToLocationID:   row.ToLocationID,
		Quantity:       row.Quantity,
		MovementType:   row.MovementType,
		ReferenceID:    row.ReferenceID,
		Notes:          row.Notes,
		Actor:          row.Actor,
		CreatedAt:      row.CreatedAt,
	}
}

// NewMovementDTOs maps rows in order.
func NewMovementDTOs(rows []models.StockMovement) []MovementDTO {
	out := make([]MovementDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewMovementDTO(row))
	}
	return out
}

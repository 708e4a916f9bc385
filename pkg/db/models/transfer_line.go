package models

import (
	"time"

	"github.com/google/uuid"
)

// TransferLine is one item quantity requested by a transfer.
type TransferLine struct {
	ID                  uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TransferID          uuid.UUID `gorm:"column:transfer_id;type:uuid;not null;uniqueIndex:ux_transfer_lines_transfer_item,priority:1"`
	ItemID              uuid.UUID `gorm:"column:item_id;type:uuid;not null;uniqueIndex:ux_transfer_lines_transfer_item,priority:2"`
	RequestedQuantity   int       `gorm:"column:requested_quantity;not null;check:chk_transfer_lines_requested,requested_quantity > 0"`
	AvailableSnapshot   int       `gorm:"column:available_snapshot;not null;default:0"`
	TransferredQuantity int       `gorm:"column:transferred_quantity;not null;default:0"`
	Remarks             *string   `gorm:"column:remarks"`
	CreatedAt           time.Time `gorm:"column:created_at;not null"`
	UpdatedAt           time.Time `gorm:"column:updated_at;not null"`
}

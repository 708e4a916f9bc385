package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foresttrail/trailops/pkg/enums"
)

// StockMovement is an append-only audit row for a ledger mutation.
type StockMovement struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ItemID         uuid.UUID          `gorm:"column:item_id;type:uuid;not null;index:ix_stock_movements_item"`
	FromLocationID *uuid.UUID         `gorm:"column:from_location_id;type:uuid;index:ix_stock_movements_from"`
	ToLocationID   *uuid.UUID         `gorm:"column:to_location_id;type:uuid;index:ix_stock_movements_to"`
	Quantity       int                `gorm:"column:quantity;not null"`
	MovementType   enums.MovementType `gorm:"column:movement_type;type:varchar(32);not null"`
	ReferenceID    uuid.UUID          `gorm:"column:reference_id;type:uuid;not null;index:ix_stock_movements_reference"`
	Notes          *string            `gorm:"column:notes"`
	Actor          string             `gorm:"column:actor;not null"`
	CreatedAt      time.Time          `gorm:"column:created_at;not null"`
}

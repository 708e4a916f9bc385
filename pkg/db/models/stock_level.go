package models

import (
	"time"

	"github.com/google/uuid"
)

// StockLevel is the current quantity of one item at one location. A missing
// row means zero.
type StockLevel struct {
	LocationID uuid.UUID `gorm:"column:location_id;type:uuid;primaryKey"`
	ItemID     uuid.UUID `gorm:"column:item_id;type:uuid;primaryKey"`
	Quantity   int       `gorm:"column:quantity;not null;default:0;check:chk_stock_levels_quantity,quantity >= 0"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Item is a stock keeping unit from the item catalog.
type Item struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Code       string     `gorm:"column:code;not null;uniqueIndex:ux_items_code"`
	Name       string     `gorm:"column:name;not null"`
	CategoryID *uuid.UUID `gorm:"column:category_id;type:uuid"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

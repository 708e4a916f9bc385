package models

import (
	"time"

	"github.com/google/uuid"
)

// Location is a physical site (trail) that holds its own stock.
type Location struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Code      string    `gorm:"column:code;not null;uniqueIndex:ux_locations_code"`
	Name      string    `gorm:"column:name;not null"`
	Active    bool      `gorm:"column:active;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foresttrail/trailops/pkg/enums"
)

// TransferRequest is the header of a stock transfer between two locations.
type TransferRequest struct {
	ID                    uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Code                  string               `gorm:"column:code;not null;uniqueIndex:ux_transfer_requests_code"`
	SourceLocationID      uuid.UUID            `gorm:"column:source_location_id;type:uuid;not null;index:ix_transfer_requests_source"`
	DestinationLocationID uuid.UUID            `gorm:"column:destination_location_id;type:uuid;not null;index:ix_transfer_requests_destination"`
	Status                enums.TransferStatus `gorm:"column:status;type:varchar(32);not null;index:ix_transfer_requests_status"`
	Reason                *string              `gorm:"column:reason"`
	TotalItems            int                  `gorm:"column:total_items;not null;default:0"`
	TotalQuantity         int                  `gorm:"column:total_quantity;not null;default:0"`
	CreatedBy             string               `gorm:"column:created_by;not null"`
	UpdatedBy             string               `gorm:"column:updated_by;not null"`
	CreatedAt             time.Time            `gorm:"column:created_at;not null;index:ix_transfer_requests_created"`
	UpdatedAt             time.Time            `gorm:"column:updated_at;not null"`
}

package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foresttrail/trailops/pkg/db/models"
	"github.com/foresttrail/trailops/pkg/pagination"
)

// MovementLog is the append-only audit trail of ledger mutations. It has no
// update or delete operations.
type MovementLog interface {
	WithTx(tx *gorm.DB) MovementLog
	Append(ctx context.Context, entry *models.StockMovement) error
	ListByReference(ctx context.Context, referenceID uuid.UUID) ([]models.StockMovement, error)
	ListByLocation(ctx context.Context, locationID uuid.UUID, params pagination.Params) ([]models.StockMovement, string, error)
}

type movementLog struct {
	db *gorm.DB
}

// NewMovementLog returns a movement log bound to the provided database.
func NewMovementLog(db *gorm.DB) MovementLog {
	return &movementLog{db: db}
}

func (m *movementLog) WithTx(tx *gorm.DB) MovementLog {
	if tx == nil {
		return m
	}
	return &movementLog{db: tx}
}

func (m *movementLog) Append(ctx context.Context, entry *models.StockMovement) error {
	if entry == nil {
		return errors.New("movement entry required")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return m.db.WithContext(ctx).Create(entry).Error
}

func (m *movementLog) ListByReference(ctx context.Context, referenceID uuid.UUID) ([]models.StockMovement, error) {
	var rows []models.StockMovement
	err := m.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *movementLog) ListByLocation(ctx context.Context, locationID uuid.UUID, params pagination.Params) ([]models.StockMovement, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	query := m.db.WithContext(ctx).
		Model(&models.StockMovement{}).
		Where("(stock_movements.from_location_id = ? OR stock_movements.to_location_id = ?)", locationID, locationID)
	query = pagination.Newest(query, "stock_movements", cursor)

	var rows []models.StockMovement
	if err := query.Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, "", err
	}
	page, next := pagination.Trim(rows, params.Limit, func(row models.StockMovement) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	})
	return page, next, nil
}

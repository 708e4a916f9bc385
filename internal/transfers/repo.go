package transfers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foresttrail/trailops/pkg/db/models"
	"github.com/foresttrail/trailops/pkg/pagination"
)

// Repository persists transfer headers and lines. Headers are never deleted.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateTransfer(ctx context.Context, header *models.TransferRequest) error
	CreateLines(ctx context.Context, lines []models.TransferLine) error
	ReplaceLines(ctx context.Context, transferID uuid.UUID, lines []models.TransferLine) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error)
	FindForUpdate(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error)
	FindLines(ctx context.Context, transferID uuid.UUID) ([]models.TransferLine, error)
	UpdateHeader(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateLine(ctx context.Context, lineID uuid.UUID, updates map[string]any) error
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.TransferRequest, string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a transfers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateTransfer(ctx context.Context, header *models.TransferRequest) error {
	return r.db.WithContext(ctx).Create(header).Error
}

func (r *repository) CreateLines(ctx context.Context, lines []models.TransferLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *repository) ReplaceLines(ctx context.Context, transferID uuid.UUID, lines []models.TransferLine) error {
	if err := r.db.WithContext(ctx).
		Where("transfer_id = ?", transferID).
		Delete(&models.TransferLine{}).Error; err != nil {
		return err
	}
	return r.CreateLines(ctx, lines)
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error) {
	var header models.TransferRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&header).Error; err != nil {
		return nil, err
	}
	return &header, nil
}

func (r *repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error) {
	var header models.TransferRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&header).Error
	if err != nil {
		return nil, err
	}
	return &header, nil
}

func (r *repository) FindLines(ctx context.Context, transferID uuid.UUID) ([]models.TransferLine, error) {
	var lines []models.TransferLine
	err := r.db.WithContext(ctx).
		Where("transfer_id = ?", transferID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) UpdateHeader(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.TransferRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateLine(ctx context.Context, lineID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.TransferLine{}).
		Where("id = ?", lineID).
		Updates(updates).Error
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.TransferRequest, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).Model(&models.TransferRequest{})
	if filters.Status != nil {
		query = query.Where("transfer_requests.status = ?", *filters.Status)
	}
	if filters.SourceLocationID != nil {
		query = query.Where("transfer_requests.source_location_id = ?", *filters.SourceLocationID)
	}
	if filters.DestinationLocationID != nil {
		query = query.Where("transfer_requests.destination_location_id = ?", *filters.DestinationLocationID)
	}
	if filters.CreatedFrom != nil {
		query = query.Where("transfer_requests.created_at >= ?", filters.CreatedFrom.UTC())
	}
	if filters.CreatedTo != nil {
		query = query.Where("transfer_requests.created_at <= ?", filters.CreatedTo.UTC())
	}
	query = pagination.Newest(query, "transfer_requests", cursor)

	var rows []models.TransferRequest
	if err := query.Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, "", err
	}
	page, next := pagination.Trim(rows, params.Limit, func(row models.TransferRequest) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	})
	return page, next, nil
}

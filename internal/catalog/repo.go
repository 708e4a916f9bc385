// Package catalog reads the location and item catalogs the engine depends on.
// Catalog maintenance lives elsewhere; nothing here writes.
package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foresttrail/trailops/pkg/db/models"
)

// Repository looks up catalog rows by id.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindLocations(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Location, error)
	FindItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Item, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindLocations(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Location, error) {
	out := make(map[uuid.UUID]models.Location, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Location
	if err := r.db.WithContext(ctx).Where("id IN ?", dedupe(ids)).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func (r *repository) FindItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Item, error) {
	out := make(map[uuid.UUID]models.Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Item
	if err := r.db.WithContext(ctx).Where("id IN ?", dedupe(ids)).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

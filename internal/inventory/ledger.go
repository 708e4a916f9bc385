package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foresttrail/trailops/pkg/db/models"
	pkgerrors "github.com/foresttrail/trailops/pkg/errors"
)

// StockKey addresses one ledger row.
type StockKey struct {
	LocationID uuid.UUID
	ItemID     uuid.UUID
}

func (k StockKey) less(other StockKey) bool {
	if k.LocationID != other.LocationID {
		return k.LocationID.String() < other.LocationID.String()
	}
	return k.ItemID.String() < other.ItemID.String()
}

// Ledger is the per-location stock store. A missing row reads as zero.
type Ledger interface {
	WithTx(tx *gorm.DB) Ledger
	GetStock(ctx context.Context, locationID, itemID uuid.UUID) (int, error)
	GetStocks(ctx context.Context, locationID uuid.UUID, itemIDs []uuid.UUID) (map[uuid.UUID]int, error)
	Adjust(ctx context.Context, locationID, itemID uuid.UUID, delta int) error
	LockStock(ctx context.Context, keys []StockKey) (map[StockKey]int, error)
}

type ledger struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLedger returns a ledger bound to the provided database.
func NewLedger(db *gorm.DB) Ledger {
	return &ledger{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (l *ledger) WithTx(tx *gorm.DB) Ledger {
	if tx == nil {
		return l
	}
	return &ledger{db: tx, now: l.now}
}

func (l *ledger) GetStock(ctx context.Context, locationID, itemID uuid.UUID) (int, error) {
	var rows []models.StockLevel
	err := l.db.WithContext(ctx).
		Where("location_id = ? AND item_id = ?", locationID, itemID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Quantity, nil
}

func (l *ledger) GetStocks(ctx context.Context, locationID uuid.UUID, itemIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}
	var rows []models.StockLevel
	err := l.db.WithContext(ctx).
		Where("location_id = ? AND item_id IN ?", locationID, itemIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, id := range itemIDs {
		out[id] = 0
	}
	for _, row := range rows {
		out[row.ItemID] = row.Quantity
	}
	return out, nil
}

// Adjust applies quantity += delta in a single statement. Credits upsert the
// row; debits only match when the result stays non-negative, so concurrent
// debits of the same row cannot overdraw it.
func (l *ledger) Adjust(ctx context.Context, locationID, itemID uuid.UUID, delta int) error {
	switch {
	case delta == 0:
		return nil
	case delta > 0:
		return l.credit(ctx, locationID, itemID, delta)
	default:
		return l.debit(ctx, locationID, itemID, -delta)
	}
}

func (l *ledger) credit(ctx context.Context, locationID, itemID uuid.UUID, qty int) error {
	row := models.StockLevel{
		LocationID: locationID,
		ItemID:     itemID,
		Quantity:   qty,
		UpdatedAt:  l.now(),
	}
	return l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "location_id"}, {Name: "item_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("stock_levels.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(&row).Error
}

func (l *ledger) debit(ctx context.Context, locationID, itemID uuid.UUID, qty int) error {
	res := l.db.WithContext(ctx).
		Model(&models.StockLevel{}).
		Where("location_id = ? AND item_id = ? AND quantity >= ?", locationID, itemID, qty).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"updated_at": l.now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	available, err := l.GetStock(ctx, locationID, itemID)
	if err != nil {
		return err
	}
	return pkgerrors.InsufficientStock(itemID.String(), locationID.String(), available, qty)
}

// LockStock takes row locks on the given keys in a fixed order and returns
// their quantities. Absent keys report zero and hold no lock.
func (l *ledger) LockStock(ctx context.Context, keys []StockKey) (map[StockKey]int, error) {
	ordered := make([]StockKey, 0, len(keys))
	seen := make(map[StockKey]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		ordered = append(ordered, key)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].less(ordered[j]) })

	out := make(map[StockKey]int, len(ordered))
	for _, key := range ordered {
		var rows []models.StockLevel
		err := l.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("location_id = ? AND item_id = ?", key.LocationID, key.ItemID).
			Limit(1).
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		out[key] = 0
		if len(rows) > 0 {
			out[key] = rows[0].Quantity
		}
	}
	return out, nil
}

package transfers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foresttrail/trailops/internal/inventory"
	"github.com/foresttrail/trailops/pkg/db/models"
	"github.com/foresttrail/trailops/pkg/enums"
	pkgerrors "github.com/foresttrail/trailops/pkg/errors"
)

// transitionRun carries the ledger side of one status change. Every call runs
// inside the transaction that also updates the header.
type transitionRun struct {
	svc    *service
	tx     *gorm.DB
	repo   Repository
	ledger inventory.Ledger
	log    inventory.MovementLog
	header *models.TransferRequest
	lines  []models.TransferLine
	input  TransitionInput
	now    time.Time

	units     int
	movements int
}

// complete moves every line from source to destination and records one
// TRANSFER_OUT per line.
func (r *transitionRun) complete(ctx context.Context) error {
	src, dst := r.header.SourceLocationID, r.header.DestinationLocationID

	keys := make([]inventory.StockKey, 0, len(r.lines)*2)
	ids := make([]uuid.UUID, 0, len(r.lines))
	for _, line := range r.lines {
		keys = append(keys,
			inventory.StockKey{LocationID: src, ItemID: line.ItemID},
			inventory.StockKey{LocationID: dst, ItemID: line.ItemID},
		)
		ids = append(ids, line.ItemID)
	}
	locked, err := r.ledger.LockStock(ctx, keys)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "lock stock rows")
	}

	items, err := r.svc.catalog.WithTx(r.tx).FindItems(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load items")
	}
	for _, line := range r.lines {
		available := locked[inventory.StockKey{LocationID: src, ItemID: line.ItemID}]
		if line.RequestedQuantity > available {
			return insufficient(itemOrID(items, line.ItemID), src, available, line.RequestedQuantity)
		}
	}

	for i := range r.lines {
		line := &r.lines[i]
		qty := line.RequestedQuantity
		if err := r.ledger.Adjust(ctx, src, line.ItemID, -qty); err != nil {
			if typed := pkgerrors.As(err); typed != nil {
				return typed
			}
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "debit source stock")
		}
		if err := r.ledger.Adjust(ctx, dst, line.ItemID, qty); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "credit destination stock")
		}
		if err := r.repo.UpdateLine(ctx, line.ID, map[string]any{
			"transferred_quantity": qty,
			"updated_at":           r.now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "record transferred quantity")
		}
		line.TransferredQuantity = qty
		line.UpdatedAt = r.now

		if err := r.append(ctx, line.ItemID, src, dst, qty, enums.MovementTransferOut); err != nil {
			return err
		}
		r.units += qty
	}
	return nil
}

// reverse undoes a completion for every line that actually moved. A
// destination that can no longer cover the transferred quantity aborts the
// whole transition.
func (r *transitionRun) reverse(ctx context.Context) error {
	src, dst := r.header.SourceLocationID, r.header.DestinationLocationID

	keys := make([]inventory.StockKey, 0, len(r.lines)*2)
	for _, line := range r.lines {
		if line.TransferredQuantity <= 0 {
			continue
		}
		keys = append(keys,
			inventory.StockKey{LocationID: src, ItemID: line.ItemID},
			inventory.StockKey{LocationID: dst, ItemID: line.ItemID},
		)
	}
	if len(keys) == 0 {
		return nil
	}
	if _, err := r.ledger.LockStock(ctx, keys); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "lock stock rows")
	}

	for i := range r.lines {
		line := &r.lines[i]
		qty := line.TransferredQuantity
		if qty <= 0 {
			continue
		}
		if err := r.ledger.Adjust(ctx, src, line.ItemID, qty); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "credit source stock")
		}
		if err := r.ledger.Adjust(ctx, dst, line.ItemID, -qty); err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
				return pkgerrors.Wrap(pkgerrors.CodeReversal, err,
					fmt.Sprintf("destination no longer holds %d of item %s", qty, line.ItemID)).
					WithDetails(map[string]any{
						"transfer_id": r.header.ID.String(),
						"item_id":     line.ItemID.String(),
						"location_id": dst.String(),
						"required":    qty,
						"available":   availableFrom(err),
					})
			}
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "debit destination stock")
		}
		if err := r.repo.UpdateLine(ctx, line.ID, map[string]any{
			"transferred_quantity": 0,
			"updated_at":           r.now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "reset transferred quantity")
		}
		line.TransferredQuantity = 0
		line.UpdatedAt = r.now

		if err := r.append(ctx, line.ItemID, dst, src, qty, enums.MovementTransferReversal); err != nil {
			return err
		}
		r.units += qty
	}
	return nil
}

func (r *transitionRun) append(ctx context.Context, itemID, from, to uuid.UUID, qty int, kind enums.MovementType) error {
	entry := &models.StockMovement{
		ItemID:         itemID,
		FromLocationID: &from,
		ToLocationID:   &to,
		Quantity:       qty,
		MovementType:   kind,
		ReferenceID:    r.header.ID,
		Notes:          r.input.Notes,
		Actor:          r.input.Actor,
		CreatedAt:      r.now,
	}
	if err := r.log.Append(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "append stock movement")
	}
	r.movements++
	return nil
}

func itemOrID(items map[uuid.UUID]models.Item, id uuid.UUID) models.Item {
	if item, ok := items[id]; ok {
		return item
	}
	return models.Item{ID: id}
}

func availableFrom(err error) any {
	typed := pkgerrors.As(err)
	if typed == nil {
		return nil
	}
	if details, ok := typed.Details().(map[string]any); ok {
		return details["available"]
	}
	return nil
}

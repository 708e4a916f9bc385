package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/foresttrail/trailops/internal/catalog"
	pkgerrors "github.com/foresttrail/trailops/pkg/errors"
	"github.com/foresttrail/trailops/pkg/pagination"
)

// Service exposes read access to stock levels and the movement log.
type Service interface {
	GetStock(ctx context.Context, locationID, itemID uuid.UUID) (*StockLevelDTO, error)
	ListMovements(ctx context.Context, locationID uuid.UUID, params pagination.Params) (*MovementList, error)
}

type service struct {
	ledger    Ledger
	movements MovementLog
	catalog   catalog.Repository
}

// NewService wires the inventory read service.
func NewService(ledger Ledger, movements MovementLog, catalogRepo catalog.Repository) (Service, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger required")
	}
	if movements == nil {
		return nil, fmt.Errorf("movement log required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{ledger: ledger, movements: movements, catalog: catalogRepo}, nil
}

func (s *service) GetStock(ctx context.Context, locationID, itemID uuid.UUID) (*StockLevelDTO, error) {
	if err := s.ensureLocation(ctx, locationID); err != nil {
		return nil, err
	}
	items, err := s.catalog.FindItems(ctx, []uuid.UUID{itemID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load item")
	}
	if _, ok := items[itemID]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found").
			WithDetails(map[string]any{"item_id": itemID.String()})
	}

	qty, err := s.ledger.GetStock(ctx, locationID, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "read stock level")
	}
	return &StockLevelDTO{LocationID: locationID, ItemID: itemID, Quantity: qty}, nil
}

func (s *service) ListMovements(ctx context.Context, locationID uuid.UUID, params pagination.Params) (*MovementList, error) {
	if err := s.ensureLocation(ctx, locationID); err != nil {
		return nil, err
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.movements.ListByLocation(ctx, locationID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list movements")
	}
	return &MovementList{Movements: NewMovementDTOs(rows), NextCursor: next}, nil
}

func (s *service) ensureLocation(ctx context.Context, locationID uuid.UUID) error {
	if locationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	locations, err := s.catalog.FindLocations(ctx, []uuid.UUID{locationID})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load location")
	}
	if _, ok := locations[locationID]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "location not found").
			WithDetails(map[string]any{"location_id": locationID.String()})
	}
	return nil
}

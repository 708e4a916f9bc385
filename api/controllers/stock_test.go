package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/foresttrail/trailops/internal/inventory"
	pkgerrors "github.com/foresttrail/trailops/pkg/errors"
	"github.com/foresttrail/trailops/pkg/pagination"
)

type stubInventoryService struct {
	getStockFn      func(context.Context, uuid.UUID, uuid.UUID) (*inventory.StockLevelDTO, error)
	listMovementsFn func(context.Context, uuid.UUID, pagination.Params) (*inventory.MovementList, error)
}

func (s stubInventoryService) GetStock(ctx context.Context, loc, item uuid.UUID) (*inventory.StockLevelDTO, error) {
	return s.getStockFn(ctx, loc, item)
}

func (s stubInventoryService) ListMovements(ctx context.Context, loc uuid.UUID, p pagination.Params) (*inventory.MovementList, error) {
	return s.listMovementsFn(ctx, loc, p)
}

func TestStockLevel(t *testing.T) {
	loc, item := uuid.New(), uuid.New()
	svc := stubInventoryService{
		getStockFn: func(_ context.Context, l, i uuid.UUID) (*inventory.StockLevelDTO, error) {
			if l != loc {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
			}
			return &inventory.StockLevelDTO{LocationID: l, ItemID: i, Quantity: 30}, nil
		},
	}

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"locationId": loc.String(), "itemId": item.String()})
	resp := httptest.NewRecorder()
	StockLevel(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"quantity":30`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}

	req = withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"locationId": uuid.NewString(), "itemId": item.String()})
	resp = httptest.NewRecorder()
	StockLevel(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}

	req = withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"locationId": loc.String(), "itemId": "bad"})
	resp = httptest.NewRecorder()
	StockLevel(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestLocationMovementsPaginates(t *testing.T) {
	loc := uuid.New()
	var got pagination.Params
	svc := stubInventoryService{
		listMovementsFn: func(_ context.Context, l uuid.UUID, p pagination.Params) (*inventory.MovementList, error) {
			got = p
			return &inventory.MovementList{Movements: []inventory.MovementDTO{{ID: uuid.New()}}, NextCursor: "c2"}, nil
		},
	}
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/?limit=5&cursor=c1", nil), map[string]string{"locationId": loc.String()})
	resp := httptest.NewRecorder()
	LocationMovements(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got.Limit != 5 || got.Cursor != "c1" {
		t.Fatalf("unexpected params %+v", got)
	}
	if !strings.Contains(resp.Body.String(), `"next_cursor":"c2"`) {
		t.Fatalf("expected cursor in body, got %s", resp.Body.String())
	}
}

package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foresttrail/trailops/pkg/db/dbtest"
	pkgerrors "github.com/foresttrail/trailops/pkg/errors"
)

func TestLedgerGetStockMissingRowIsZero(t *testing.T) {
	client := dbtest.New(t)
	ledger := NewLedger(client.DB())

	qty, err := ledger.GetStock(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, qty)
}

func TestLedgerAdjustCreditsAndDebits(t *testing.T) {
	client := dbtest.New(t)
	ledger := NewLedger(client.DB())
	ctx := context.Background()
	loc, item := uuid.New(), uuid.New()

	require.NoError(t, ledger.Adjust(ctx, loc, item, 100))
	require.NoError(t, ledger.Adjust(ctx, loc, item, 25))
	require.NoError(t, ledger.Adjust(ctx, loc, item, -40))
	require.NoError(t, ledger.Adjust(ctx, loc, item, 0))

	qty, err := ledger.GetStock(ctx, loc, item)
	require.NoError(t, err)
	assert.Equal(t, 85, qty)

	stocks, err := ledger.GetStocks(ctx, loc, []uuid.UUID{item, uuid.Nil})
	require.NoError(t, err)
	assert.Equal(t, 85, stocks[item])
	assert.Equal(t, 0, stocks[uuid.Nil])
}

func TestLedgerDebitNeverGoesNegative(t *testing.T) {
	client := dbtest.New(t)
	ledger := NewLedger(client.DB())
	ctx := context.Background()
	loc, item := uuid.New(), uuid.New()

	require.NoError(t, ledger.Adjust(ctx, loc, item, 10))

	err := ledger.Adjust(ctx, loc, item, -11)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())
	details := typed.Details().(map[string]any)
	assert.Equal(t, 10, details["available"])
	assert.Equal(t, 11, details["requested"])

	qty, err := ledger.GetStock(ctx, loc, item)
	require.NoError(t, err)
	assert.Equal(t, 10, qty, "failed debit must not mutate the row")

	err = ledger.Adjust(ctx, loc, uuid.New(), -1)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock))
}

func TestLedgerConcurrentDebitsOnlyOneWins(t *testing.T) {
	client := dbtest.New(t)
	ledger := NewLedger(client.DB())
	ctx := context.Background()
	loc, item := uuid.New(), uuid.New()
	require.NoError(t, ledger.Adjust(ctx, loc, item, 100))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.WithTx(ctx, func(tx *gorm.DB) error {
				txLedger := ledger.WithTx(tx)
				if _, err := txLedger.LockStock(ctx, []StockKey{{LocationID: loc, ItemID: item}}); err != nil {
					return err
				}
				return txLedger.Adjust(ctx, loc, item, -60)
			})
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock), "unexpected error %v", err)
			failures++
		}
	}
	assert.Equal(t, 1, failures)

	qty, err := ledger.GetStock(ctx, loc, item)
	require.NoError(t, err)
	assert.Equal(t, 40, qty)
}

func TestLedgerLockStockReturnsQuantities(t *testing.T) {
	client := dbtest.New(t)
	ledger := NewLedger(client.DB())
	ctx := context.Background()
	locA, locB, item := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, ledger.Adjust(ctx, locA, item, 7))

	keyA := StockKey{LocationID: locA, ItemID: item}
	keyB := StockKey{LocationID: locB, ItemID: item}
	var got map[StockKey]int
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		got, err = ledger.WithTx(tx).LockStock(ctx, []StockKey{keyB, keyA, keyA})
		return err
	}))
	assert.Equal(t, map[StockKey]int{keyA: 7, keyB: 0}, got)
}

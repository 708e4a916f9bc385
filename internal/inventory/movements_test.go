package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foresttrail/trailops/pkg/db/dbtest"
	"github.com/foresttrail/trailops/pkg/db/models"
	"github.com/foresttrail/trailops/pkg/enums"
	"github.com/foresttrail/trailops/pkg/pagination"
)

func TestMovementLogAppendAndList(t *testing.T) {
	client := dbtest.New(t)
	log := NewMovementLog(client.DB())
	ctx := context.Background()

	from, to, other := uuid.New(), uuid.New(), uuid.New()
	transferID := uuid.New()
	base := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		entry := &models.StockMovement{
			ItemID:         uuid.New(),
			FromLocationID: &from,
			ToLocationID:   &to,
			Quantity:       10 * (i + 1),
			MovementType:   enums.MovementTransferOut,
			ReferenceID:    transferID,
			Actor:          "ranger-1",
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, log.Append(ctx, entry))
		assert.NotEqual(t, uuid.Nil, entry.ID)
	}
	require.NoError(t, log.Append(ctx, &models.StockMovement{
		ItemID:         uuid.New(),
		FromLocationID: &other,
		ToLocationID:   &to,
		Quantity:       1,
		MovementType:   enums.MovementTransferOut,
		ReferenceID:    uuid.New(),
		Actor:          "ranger-2",
		CreatedAt:      base.Add(time.Hour),
	}))
	assert.Error(t, log.Append(ctx, nil))

	byRef, err := log.ListByReference(ctx, transferID)
	require.NoError(t, err)
	require.Len(t, byRef, 3)
	assert.Equal(t, 10, byRef[0].Quantity)
	assert.Equal(t, 30, byRef[2].Quantity)

	page, next, err := log.ListByLocation(ctx, from, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 30, page[0].Quantity, "newest first")
	require.NotEmpty(t, next)

	page, next, err = log.ListByLocation(ctx, from, pagination.Params{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, 10, page[0].Quantity)
	assert.Empty(t, next)

	page, _, err = log.ListByLocation(ctx, to, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, page, 4)
}

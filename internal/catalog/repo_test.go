package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foresttrail/trailops/pkg/db/dbtest"
	"github.com/foresttrail/trailops/pkg/db/models"
)

func TestFindLocationsAndItems(t *testing.T) {
	client := dbtest.New(t)
	ctx := context.Background()

	north := models.Location{ID: uuid.New(), Code: "NORTH", Name: "North Trail", Active: true}
	south := models.Location{ID: uuid.New(), Code: "SOUTH", Name: "South Trail", Active: true}
	rope := models.Item{ID: uuid.New(), Code: "ROPE-10", Name: "Rope 10m"}
	require.NoError(t, client.DB().Create(&[]models.Location{north, south}).Error)
	require.NoError(t, client.DB().Create(&rope).Error)

	repo := NewRepository(client.DB())

	missing := uuid.New()
	locations, err := repo.FindLocations(ctx, []uuid.UUID{north.ID, south.ID, north.ID, missing})
	require.NoError(t, err)
	assert.Len(t, locations, 2)
	assert.Equal(t, "NORTH", locations[north.ID].Code)
	_, ok := locations[missing]
	assert.False(t, ok)

	items, err := repo.FindItems(ctx, []uuid.UUID{rope.ID})
	require.NoError(t, err)
	assert.Equal(t, "Rope 10m", items[rope.ID].Name)

	empty, err := repo.WithTx(nil).FindItems(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

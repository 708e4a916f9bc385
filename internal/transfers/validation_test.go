package transfers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/foresttrail/trailops/pkg/errors"
)

func TestValidateLineSetCollectsEveryProblem(t *testing.T) {
	item := uuid.New()
	err := validateLineSet([]LineInput{
		{ItemID: item, Quantity: 2},
		{ItemID: item, Quantity: 0},
		{Quantity: 1},
	}, 0)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	problems, ok := details["problems"].([]string)
	require.True(t, ok)
	assert.Len(t, problems, 3)
}

func TestValidateLineSetLimits(t *testing.T) {
	assert.True(t, pkgerrors.HasCode(validateLineSet(nil, 5), pkgerrors.CodeValidation))

	lines := []LineInput{
		{ItemID: uuid.New(), Quantity: 1},
		{ItemID: uuid.New(), Quantity: 1},
		{ItemID: uuid.New(), Quantity: 1},
	}
	assert.True(t, pkgerrors.HasCode(validateLineSet(lines, 2), pkgerrors.CodeValidation))
	assert.NoError(t, validateLineSet(lines, 3))
	assert.NoError(t, validateLineSet(lines, 0))
}

func TestLineTotals(t *testing.T) {
	items, qty := lineTotals([]LineInput{{Quantity: 3}, {Quantity: 4}})
	assert.Equal(t, 2, items)
	assert.Equal(t, 7, qty)
}

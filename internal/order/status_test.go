package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTransition(t *testing.T) {
	ok := [][2]Status{
		{StatusProcessing, StatusPreparing},
		{StatusPreparing, StatusReady},
		{StatusReady, StatusShipped},
		{StatusShipped, StatusDelivered},
		{StatusDelivered, StatusCompleted},
		{StatusProcessing, StatusReady},
	}
	for _, tr := range ok {
		assert.NoError(t, CheckTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	bad := [][2]Status{
		{StatusPreparing, StatusProcessing},
		{StatusReady, StatusReady},
		{StatusCompleted, StatusShipped},
		{StatusCanceled, StatusProcessing},
		{StatusProcessing, StatusCanceled},
		{StatusProcessing, Status("lost")},
	}
	for _, tr := range bad {
		assert.ErrorIs(t, CheckTransition(tr[0], tr[1]), ErrInvalidTransition, "%s -> %s", tr[0], tr[1])
	}
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, st)

	_, err = ParseStatus("SHIPPED")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSumItems(t *testing.T) {
	items := []Item{{Price: 4000, Quantity: 1}, {Price: 7000, Quantity: 1}, {Price: 350, Quantity: 3}}
	assert.EqualValues(t, 12050, SumItems(items))
	assert.Zero(t, SumItems(nil))
}

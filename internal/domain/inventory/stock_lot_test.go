package inventory

import (
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStockLot(t *testing.T) {
	markup := decimal.RequireFromString("0.30")

	t.Run("defaults unit price from markup", func(t *testing.T) {
		lot, err := NewStockLot(LotSpec{
			ProductID: uuid.New(),
			UnitCost:  d(1000),
			Quantity:  d(60),
		}, "RICE-20240101-000001", markup)
		require.NoError(t, err)
		assert.True(t, d(1300).Equal(lot.UnitPrice))
		assert.True(t, lot.IsActive)
		assert.True(t, d(60).Equal(lot.InitialQuantity))
		assert.Equal(t, lot.CreatedAt, lot.DateAcquired)
		require.Len(t, lot.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeStockLotCreated, lot.GetDomainEvents()[0].EventType())
	})

	t.Run("keeps explicit unit price", func(t *testing.T) {
		price := d(1500)
		lot, err := NewStockLot(LotSpec{ProductID: uuid.New(), UnitCost: d(1000), Quantity: d(1), UnitPrice: &price}, "X-1", markup)
		require.NoError(t, err)
		assert.True(t, d(1500).Equal(lot.UnitPrice))
	})

	tests := []struct {
		name string
		spec LotSpec
		code string
	}{
		{"zero quantity", LotSpec{ProductID: uuid.New(), UnitCost: d(1), Quantity: decimal.Zero}, "INVALID_QUANTITY"},
		{"negative quantity", LotSpec{ProductID: uuid.New(), UnitCost: d(1), Quantity: d(-1)}, "INVALID_QUANTITY"},
		{"zero cost", LotSpec{ProductID: uuid.New(), UnitCost: decimal.Zero, Quantity: d(1)}, "INVALID_COST"},
		{"missing product", LotSpec{UnitCost: d(1), Quantity: d(1)}, "INVALID_PRODUCT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStockLot(tt.spec, "X-1", markup)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.code, de.Code)
		})
	}
}

func TestFormatBatchNumber(t *testing.T) {
	at := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "RICE-25KG-20240309-000042", FormatBatchNumber("rice-25kg", at, 42))
	assert.Less(t, FormatBatchNumber("A", at, 9), FormatBatchNumber("A", at, 10))
}

func TestStockLot_Deduct(t *testing.T) {
	lot := testLot(uuid.New(), "A", 5, 10, time.Now())

	require.NoError(t, lot.Deduct(d(2)))
	assert.True(t, d(3).Equal(lot.Quantity))
	assert.True(t, lot.IsActive)

	err := lot.Deduct(d(4))
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.True(t, d(3).Equal(lot.Quantity))

	require.NoError(t, lot.Deduct(d(3)))
	assert.True(t, lot.Quantity.IsZero())
	assert.False(t, lot.IsActive)

	assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(lot.Deduct(d(1))))
}

func TestStockLot_AdjustAndRetire(t *testing.T) {
	lot := testLot(uuid.New(), "A", 5, 10, time.Now())

	assert.Equal(t, shared.KindValidation, shared.KindOf(lot.Adjust(d(4), " ")))

	require.NoError(t, lot.Adjust(d(4), "count"))
	assert.True(t, d(4).Equal(lot.Quantity))
	assert.Contains(t, lot.Notes, "adjusted 5 -> 4: count")

	require.NoError(t, lot.Adjust(decimal.Zero, "damaged"))
	assert.False(t, lot.IsActive)

	require.NoError(t, lot.Adjust(d(1), "found one"))
	assert.True(t, lot.IsActive)

	require.NoError(t, lot.Retire("recalled"))
	assert.False(t, lot.IsActive)
	assert.True(t, d(1).Equal(lot.Quantity))
	assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(lot.Retire("again")))
}

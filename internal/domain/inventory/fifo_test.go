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

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func testLot(productID uuid.UUID, batch string, qty, cost int64, acquired time.Time) StockLot {
	return StockLot{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BatchNumber:       batch,
		ProductID:         productID,
		UnitCost:          d(cost),
		UnitPrice:         d(cost * 2),
		InitialQuantity:   d(qty),
		Quantity:          d(qty),
		DateAcquired:      acquired,
		IsActive:          true,
	}
}

func TestPlanFIFODepletion_OldestFirst(t *testing.T) {
	productID := uuid.New()
	lotB := testLot(productID, "B", 5, 12, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	lotA := testLot(productID, "A", 5, 10, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	lots := []StockLot{lotB, lotA}

	plan, err := PlanFIFODepletion(productID, lots, d(7))
	require.NoError(t, err)
	require.Len(t, plan.Deductions, 2)

	assert.Equal(t, "A", plan.Deductions[0].BatchNumber)
	assert.True(t, d(5).Equal(plan.Deductions[0].Quantity))
	assert.Equal(t, "B", plan.Deductions[1].BatchNumber)
	assert.True(t, d(2).Equal(plan.Deductions[1].Quantity))
	assert.True(t, d(5*10+2*12).Equal(plan.TotalCost))

	// planning leaves the lots untouched
	assert.True(t, d(5).Equal(lots[0].Quantity))
	assert.True(t, d(5).Equal(lots[1].Quantity))
}

func TestPlanFIFODepletion_SkipsInactiveLots(t *testing.T) {
	productID := uuid.New()
	old := testLot(productID, "OLD", 10, 1, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	old.IsActive = false
	current := testLot(productID, "NEW", 10, 2, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	plan, err := PlanFIFODepletion(productID, []StockLot{old, current}, d(3))
	require.NoError(t, err)
	require.Len(t, plan.Deductions, 1)
	assert.Equal(t, "NEW", plan.Deductions[0].BatchNumber)
}

func TestPlanFIFODepletion_InsufficientStock(t *testing.T) {
	productID := uuid.New()
	lots := []StockLot{testLot(productID, "A", 4, 10, time.Now())}

	_, err := PlanFIFODepletion(productID, lots, d(5))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, shared.KindInsufficientStock, shared.KindOf(err))
	assert.True(t, d(4).Equal(lots[0].Quantity))
}

func TestPlanFIFODepletion_InvalidQuantity(t *testing.T) {
	_, err := PlanFIFODepletion(uuid.New(), nil, decimal.Zero)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestApplyDepletion_DeactivatesEmptyLots(t *testing.T) {
	productID := uuid.New()
	lots := []StockLot{
		testLot(productID, "A", 5, 10, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		testLot(productID, "B", 5, 10, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
	}

	plan, err := PlanFIFODepletion(productID, lots, d(7))
	require.NoError(t, err)
	changed, err := ApplyDepletion(lots, plan)
	require.NoError(t, err)
	require.Len(t, changed, 2)

	assert.True(t, lots[0].Quantity.IsZero())
	assert.False(t, lots[0].IsActive)
	assert.True(t, d(3).Equal(lots[1].Quantity))
	assert.True(t, lots[1].IsActive)

	view := ComputeStockView(lots, decimal.Zero, decimal.Zero)
	assert.True(t, d(3).Equal(view.TotalStock))
}

func TestTotalStockMatchesActiveLotsAfterSequence(t *testing.T) {
	productID := uuid.New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lots := make([]StockLot, 0)
	for i, qty := range []int64{3, 8, 2, 6} {
		lots = append(lots, testLot(productID, string(rune('A'+i)), qty, 5, base.AddDate(0, i, 0)))
	}

	for _, sale := range []int64{4, 1, 7} {
		plan, err := PlanFIFODepletion(productID, lots, d(sale))
		require.NoError(t, err)
		_, err = ApplyDepletion(lots, plan)
		require.NoError(t, err)

		sum := decimal.Zero
		for _, lot := range lots {
			if lot.IsActive {
				sum = sum.Add(lot.Quantity)
			}
		}
		view := ComputeStockView(lots, decimal.Zero, decimal.Zero)
		assert.True(t, sum.Equal(view.TotalStock))
	}
	assert.True(t, d(19-12).Equal(ComputeStockView(lots, decimal.Zero, decimal.Zero).TotalStock))
}

func TestPlanFIFODepletion_SkipsExpiredHead(t *testing.T) {
	productID := uuid.New()
	yesterday := shared.Now().Add(-24 * time.Hour)
	head := testLot(productID, "YOG-1", 3, 40, yesterday.Add(-72*time.Hour))
	head.ExpiryDate = &yesterday
	next := testLot(productID, "YOG-2", 2, 45, yesterday)

	plan, err := PlanFIFODepletion(productID, []StockLot{head, next}, d(2))
	require.NoError(t, err)
	require.Len(t, plan.Deductions, 1)
	assert.Equal(t, "YOG-2", plan.Deductions[0].BatchNumber)

	_, err = PlanFIFODepletion(productID, []StockLot{head, next}, d(3))
	assert.Equal(t, shared.KindInsufficientStock, shared.KindOf(err))
}

package inventory

import (
	"sort"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Deduction is the quantity taken from one lot by a depletion
type Deduction struct {
	LotID       uuid.UUID       `json:"lot_id"`
	BatchNumber string          `json:"batch_number"`
	Quantity    decimal.Decimal `json:"quantity_taken"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// Cost returns quantity times unit cost
func (d Deduction) Cost() decimal.Decimal {
	return d.Quantity.Mul(d.UnitCost)
}

// DepletionPlan lists the deductions that satisfy a requested quantity
type DepletionPlan struct {
	ProductID  uuid.UUID
	Requested  decimal.Decimal
	Deductions []Deduction
	TotalCost  decimal.Decimal
}

// SortFIFO orders lots oldest first: by date acquired, then creation time,
// then batch number.
func SortFIFO(lots []StockLot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		if !a.DateAcquired.Equal(b.DateAcquired) {
			return a.DateAcquired.Before(b.DateAcquired)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.BatchNumber < b.BatchNumber
	})
}

// PlanFIFODepletion computes which lots a sale of quantity draws from.
// Expired lots are never drawn from. It does not modify the lots. When the
// sellable quantity is short the whole plan fails with InsufficientStock.
func PlanFIFODepletion(productID uuid.UUID, lots []StockLot, quantity decimal.Decimal) (*DepletionPlan, error) {
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Requested quantity must be greater than zero")
	}

	now := shared.Now()
	sellable := make([]StockLot, 0, len(lots))
	available := decimal.Zero
	for _, lot := range lots {
		if lot.ProductID == productID && lot.IsSellableAt(now) {
			sellable = append(sellable, lot)
			available = available.Add(lot.Quantity)
		}
	}
	if available.LessThan(quantity) {
		return nil, shared.ErrInsufficientStock.
			WithDetail("product_id", productID.String()).
			WithDetail("requested", quantity.String()).
			WithDetail("available", available.String())
	}

	SortFIFO(sellable)

	plan := &DepletionPlan{
		ProductID:  productID,
		Requested:  quantity,
		Deductions: make([]Deduction, 0),
		TotalCost:  decimal.Zero,
	}
	remaining := quantity
	for _, lot := range sellable {
		if remaining.IsZero() {
			break
		}
		take := decimal.Min(remaining, lot.Quantity)
		d := Deduction{
			LotID:       lot.ID,
			BatchNumber: lot.BatchNumber,
			Quantity:    take,
			UnitCost:    lot.UnitCost,
		}
		plan.Deductions = append(plan.Deductions, d)
		plan.TotalCost = plan.TotalCost.Add(d.Cost())
		remaining = remaining.Sub(take)
	}
	return plan, nil
}

// ApplyDepletion deducts a plan from the given lots and returns the lots that
// changed. Lots are matched by ID.
func ApplyDepletion(lots []StockLot, plan *DepletionPlan) ([]*StockLot, error) {
	index := make(map[uuid.UUID]*StockLot, len(lots))
	for i := range lots {
		index[lots[i].ID] = &lots[i]
	}
	changed := make([]*StockLot, 0, len(plan.Deductions))
	for _, d := range plan.Deductions {
		lot, ok := index[d.LotID]
		if !ok {
			return nil, shared.NewNotFoundError("Stock lot " + d.BatchNumber)
		}
		if err := lot.Deduct(d.Quantity); err != nil {
			return nil, err
		}
		changed = append(changed, lot)
	}
	return changed, nil
}

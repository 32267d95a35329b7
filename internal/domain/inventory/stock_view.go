package inventory

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockView is the derived stock state of a product. It is computed from the
// product's lots on every read and never stored.
type StockView struct {
	TotalStock          decimal.Decimal `json:"total_stock"`
	CurrentSellingPrice decimal.Decimal `json:"current_selling_price"`
	IsLowStock          bool            `json:"is_low_stock"`
	ActiveLots          int             `json:"active_lots"`
}

// ComputeStockView aggregates the lots that are active and unexpired, the
// same set the "active" batch filter and FIFO selection use. The selling
// price is the unit price of the most recently acquired such lot, or
// fallbackPrice when there is none.
func ComputeStockView(lots []StockLot, minStockLevel, fallbackPrice decimal.Decimal) StockView {
	view := StockView{
		TotalStock:          decimal.Zero,
		CurrentSellingPrice: fallbackPrice,
	}
	now := shared.Now()
	var latest *StockLot
	for i := range lots {
		lot := &lots[i]
		if !lot.IsAvailableAt(now) {
			continue
		}
		view.ActiveLots++
		view.TotalStock = view.TotalStock.Add(lot.Quantity)
		if latest == nil || acquiredAfter(lot, latest) {
			latest = lot
		}
	}
	if latest != nil {
		view.CurrentSellingPrice = latest.UnitPrice
	}
	view.IsLowStock = view.TotalStock.LessThan(minStockLevel)
	return view
}

func acquiredAfter(a, b *StockLot) bool {
	if !a.DateAcquired.Equal(b.DateAcquired) {
		return a.DateAcquired.After(b.DateAcquired)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.BatchNumber > b.BatchNumber
}

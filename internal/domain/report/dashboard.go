// Package report holds the read models behind the owner dashboard and the
// daily sales summary. Everything here is derived on request from the
// ledgers; nothing is stored.
package report

import (
	"time"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Financials is the profit picture over a period
type Financials struct {
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	AmountCollected decimal.Decimal `json:"amount_collected"`
	TotalExpenses   decimal.Decimal `json:"total_expenses"`
	CostOfGoodsSold decimal.Decimal `json:"cost_of_goods_sold"`
	GrossProfit     decimal.Decimal `json:"gross_profit"`
	NetProfit       decimal.Decimal `json:"net_profit"`
	GrossMargin     decimal.Decimal `json:"gross_margin"`
}

// NewFinancials derives profit figures from a sales summary and the
// expenses booked in the same period. Net profit is revenue less expenses.
func NewFinancials(sales *trade.SalesSummary, expenses decimal.Decimal) Financials {
	f := Financials{
		TotalRevenue:    sales.TotalRevenue,
		AmountCollected: sales.TotalPaid,
		TotalExpenses:   expenses,
		CostOfGoodsSold: sales.CostOfGoods,
		GrossProfit:     sales.TotalRevenue.Sub(sales.CostOfGoods),
		NetProfit:       sales.TotalRevenue.Sub(expenses),
		GrossMargin:     decimal.Zero,
	}
	if sales.TotalRevenue.IsPositive() {
		f.GrossMargin = f.GrossProfit.Div(sales.TotalRevenue).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return f
}

// LowStockItem is a product below its minimum stock level
type LowStockItem struct {
	ProductID     uuid.UUID       `json:"product_id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	TotalStock    decimal.Decimal `json:"total_stock"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
}

// InventorySummary aggregates stock over active products
type InventorySummary struct {
	TotalProducts        int64           `json:"total_products"`
	TotalQuantityInStock decimal.Decimal `json:"total_quantity_in_stock"`
	StockValueAtCost     decimal.Decimal `json:"stock_value_at_cost"`
	OutOfStockCount      int64           `json:"out_of_stock_count"`
	LowStockCount        int64           `json:"low_stock_count"`
	LowStockItems        []LowStockItem  `json:"low_stock_items"`
}

// SummarizeInventory totals the active, unexpired lots of products. Lots of
// products not in the list are ignored.
func SummarizeInventory(products []catalog.Product, lots []inventory.StockLot) InventorySummary {
	byProduct := make(map[uuid.UUID][]inventory.StockLot, len(products))
	for _, lot := range lots {
		byProduct[lot.ProductID] = append(byProduct[lot.ProductID], lot)
	}

	s := InventorySummary{
		TotalProducts:        int64(len(products)),
		TotalQuantityInStock: decimal.Zero,
		StockValueAtCost:     decimal.Zero,
		LowStockItems:        []LowStockItem{},
	}
	now := shared.Now()
	for _, p := range products {
		productLots := byProduct[p.ID]
		view := inventory.ComputeStockView(productLots, p.MinStockLevel, p.DefaultSellingPrice)
		s.TotalQuantityInStock = s.TotalQuantityInStock.Add(view.TotalStock)
		for _, lot := range productLots {
			if lot.IsAvailableAt(now) {
				s.StockValueAtCost = s.StockValueAtCost.Add(lot.Quantity.Mul(lot.UnitCost))
			}
		}
		if view.TotalStock.IsZero() {
			s.OutOfStockCount++
		}
		if view.IsLowStock {
			s.LowStockCount++
			s.LowStockItems = append(s.LowStockItems, LowStockItem{
				ProductID:     p.ID,
				Code:          p.Code,
				Name:          p.Name,
				TotalStock:    view.TotalStock,
				MinStockLevel: p.MinStockLevel,
			})
		}
	}
	return s
}

// Purchasing is the payables side of the dashboard
type Purchasing struct {
	OutstandingPayables decimal.Decimal                     `json:"outstanding_payables"`
	OverdueCount        int64                               `json:"overdue_count"`
	OverdueAmount       decimal.Decimal                     `json:"overdue_amount"`
	OrdersByStatus      map[trade.PurchaseOrderStatus]int64 `json:"orders_by_status"`
}

// NewPurchasing projects purchase order statistics
func NewPurchasing(stats *trade.PurchaseOrderStats) Purchasing {
	return Purchasing{
		OutstandingPayables: stats.TotalOutstanding,
		OverdueCount:        stats.OverdueCount,
		OverdueAmount:       stats.OverdueAmount,
		OrdersByStatus:      stats.ByStatus,
	}
}

// RecentOrder is a sale in the dashboard feed
type RecentOrder struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"order_number"`
	CustomerName  string          `json:"customer_name"`
	ManagerName   string          `json:"manager_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentStatus string          `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewRecentOrders projects sales onto the feed
func NewRecentOrders(orders []trade.SalesOrder) []RecentOrder {
	out := make([]RecentOrder, len(orders))
	for i, o := range orders {
		out[i] = RecentOrder{
			ID:            o.ID,
			OrderNumber:   o.OrderNumber,
			CustomerName:  o.CustomerName,
			ManagerName:   o.ManagerName,
			TotalAmount:   o.TotalAmount,
			PaymentStatus: string(o.PaymentStatus),
			CreatedAt:     o.CreatedAt,
		}
	}
	return out
}

// Dashboard is the owner's overview
type Dashboard struct {
	From         *time.Time       `json:"from,omitempty"`
	To           *time.Time       `json:"to,omitempty"`
	Financials   Financials       `json:"financials"`
	Inventory    InventorySummary `json:"inventory"`
	Purchasing   Purchasing       `json:"purchasing"`
	RecentOrders []RecentOrder    `json:"recent_orders"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

// StatusTally counts the day's sales in one payment status
type StatusTally struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// DailySales summarizes one day of sales by payment status
type DailySales struct {
	Date        string                 `json:"date"`
	OrderCount  int64                  `json:"order_count"`
	TotalAmount decimal.Decimal        `json:"total_amount"`
	AmountPaid  decimal.Decimal        `json:"amount_paid"`
	ByStatus    map[string]StatusTally `json:"by_status"`
}

// NewDailySales projects a one day sales summary. Every payment status is
// present, with zero tallies where there were no sales.
func NewDailySales(day time.Time, summary *trade.SalesSummary) DailySales {
	d := DailySales{
		Date:        day.Format("2006-01-02"),
		OrderCount:  summary.OrderCount,
		TotalAmount: summary.TotalRevenue,
		AmountPaid:  summary.TotalPaid,
		ByStatus:    make(map[string]StatusTally, 3),
	}
	for _, st := range []trade.SalesPaymentStatus{trade.SalesPaymentCleared, trade.SalesPaymentPartial, trade.SalesPaymentPending} {
		t := summary.ByStatus[st]
		d.ByStatus[string(st)] = StatusTally{Count: t.Count, Amount: t.Amount}
	}
	return d
}

// DayBounds returns the start and the last instant of t's day in t's
// location
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

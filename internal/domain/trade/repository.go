package trade

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PONumberPrefix    = "PO"
	SalesNumberPrefix = "SO"
)

// PurchaseOrderRepository persists purchase orders with their items
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	// FindByIDForUpdate loads the order and its items holding the row lock
	// until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// FindBySupplier returns the supplier's orders created in the range
	FindBySupplier(ctx context.Context, supplierID uuid.UUID, from, to *time.Time) ([]PurchaseOrder, error)
	// SumExposure recomputes the supplier balance from its approved,
	// non-cancelled orders.
	SumExposure(ctx context.Context, supplierID uuid.UUID) (decimal.Decimal, error)
	Stats(ctx context.Context, now time.Time) (*PurchaseOrderStats, error)
	LastNumber(ctx context.Context, prefix string) (string, error)
	Create(ctx context.Context, order *PurchaseOrder) error
	// Save updates the header guarded by its version, and the items
	Save(ctx context.Context, order *PurchaseOrder) error
}

// SalesOrderRepository persists sales orders
type SalesOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrder, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]SalesOrder, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	FindRecent(ctx context.Context, limit int) ([]SalesOrder, error)
	Summarize(ctx context.Context, from, to *time.Time) (*SalesSummary, error)
	LastNumber(ctx context.Context, prefix string) (string, error)
	Create(ctx context.Context, order *SalesOrder) error
}

// PurchaseOrderStats backs the purchasing dashboard
type PurchaseOrderStats struct {
	ByStatus         map[PurchaseOrderStatus]int64 `json:"by_status"`
	OverdueCount     int64                         `json:"overdue_count"`
	OverdueAmount    decimal.Decimal               `json:"overdue_amount"`
	TotalValue       decimal.Decimal               `json:"total_value"`
	TotalPaid        decimal.Decimal               `json:"total_paid"`
	TotalOutstanding decimal.Decimal               `json:"total_outstanding"`
}

// SalesSummary aggregates sales over a period
type SalesSummary struct {
	OrderCount   int64                                   `json:"order_count"`
	TotalRevenue decimal.Decimal                         `json:"total_revenue"`
	TotalPaid    decimal.Decimal                         `json:"total_paid"`
	CostOfGoods  decimal.Decimal                         `json:"cost_of_goods"`
	ByStatus     map[SalesPaymentStatus]SalesStatusTally `json:"by_status"`
}

// SalesStatusTally counts the sales in one payment status
type SalesStatusTally struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// NextNumber returns the number following last for the given prefix and
// year, in the form PREFIX-YYYY-NNNNN. Numbering restarts every year.
func NextNumber(prefix string, year int, last string) string {
	yearPrefix := fmt.Sprintf("%s-%d-", prefix, year)
	next := int64(1)
	if strings.HasPrefix(last, yearPrefix) {
		if n, err := strconv.ParseInt(strings.TrimPrefix(last, yearPrefix), 10, 64); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%05d", yearPrefix, next)
}

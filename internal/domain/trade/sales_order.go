package trade

import (
	"fmt"
	"strings"

	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeSalesOrder is the aggregate type for sales orders
const AggregateTypeSalesOrder = "SalesOrder"

// SalesPaymentStatus is the settlement state of a sale
type SalesPaymentStatus string

const (
	SalesPaymentCleared SalesPaymentStatus = "Cleared"
	SalesPaymentPartial SalesPaymentStatus = "Partial"
	SalesPaymentPending SalesPaymentStatus = "Pending"
)

// IsValid checks if the status is known
func (s SalesPaymentStatus) IsValid() bool {
	return s == SalesPaymentCleared || s == SalesPaymentPartial || s == SalesPaymentPending
}

// SalesOrderItem is one product line of a sale with the lots it drew from
type SalesOrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
	CostOfGoods decimal.Decimal
	Allocations []inventory.Deduction
}

// SaleLine is a priced line backed by a FIFO depletion plan
type SaleLine struct {
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   decimal.Decimal
	Plan        *inventory.DepletionPlan
}

// SalesOrder records a sale to a walk-in or named customer
type SalesOrder struct {
	shared.BaseAggregateRoot
	OrderNumber   string
	ManagerID     uuid.UUID
	ManagerName   string
	CustomerName  string
	Items         []SalesOrderItem
	TotalAmount   decimal.Decimal
	AmountPaid    decimal.Decimal
	CostOfGoods   decimal.Decimal
	PaymentStatus SalesPaymentStatus
}

// NewSalesOrder builds a sale from already planned depletions
func NewSalesOrder(orderNumber string, managerID uuid.UUID, managerName, customerName string, lines []SaleLine, amountPaid decimal.Decimal) (*SalesOrder, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, shared.NewValidationError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("NO_ITEMS", "Order must have at least one item")
	}
	if amountPaid.IsNegative() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Amount paid cannot be negative")
	}

	customer := strings.TrimSpace(customerName)
	if customer == "" {
		customer = "Walk-in Customer"
	}

	o := &SalesOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		ManagerID:         managerID,
		ManagerName:       managerName,
		CustomerName:      customer,
		TotalAmount:       decimal.Zero,
		CostOfGoods:       decimal.Zero,
		Items:             make([]SalesOrderItem, 0, len(lines)),
	}
	for idx, line := range lines {
		if line.Plan == nil || line.Plan.ProductID != line.ProductID {
			return nil, shared.NewKindError(shared.KindInternal, "MISSING_DEPLETION", fmt.Sprintf("Item %d has no depletion plan", idx+1))
		}
		if line.UnitPrice.IsNegative() {
			return nil, shared.NewValidationError("INVALID_PRICE", fmt.Sprintf("Item %d: unit price cannot be negative", idx+1))
		}
		subtotal := line.Plan.Requested.Mul(line.UnitPrice)
		o.Items = append(o.Items, SalesOrderItem{
			ID:          uuid.New(),
			OrderID:     o.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Plan.Requested,
			UnitPrice:   line.UnitPrice,
			Subtotal:    subtotal,
			CostOfGoods: line.Plan.TotalCost,
			Allocations: line.Plan.Deductions,
		})
		o.TotalAmount = o.TotalAmount.Add(subtotal)
		o.CostOfGoods = o.CostOfGoods.Add(line.Plan.TotalCost)
	}

	if amountPaid.GreaterThan(o.TotalAmount) {
		return nil, shared.ErrOverPayment.
			WithDetail("amount", amountPaid.String()).
			WithDetail("total", o.TotalAmount.String())
	}
	o.AmountPaid = amountPaid
	o.PaymentStatus = deriveSalesPaymentStatus(amountPaid, o.TotalAmount)
	o.AddDomainEvent(NewSalesOrderCreatedEvent(o))
	return o, nil
}

func deriveSalesPaymentStatus(paid, total decimal.Decimal) SalesPaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return SalesPaymentCleared
	case paid.IsPositive():
		return SalesPaymentPartial
	default:
		return SalesPaymentPending
	}
}

// GrossProfit is revenue minus the FIFO cost of the goods sold
func (o *SalesOrder) GrossProfit() decimal.Decimal {
	return o.TotalAmount.Sub(o.CostOfGoods)
}

// BalanceDue is what the customer still owes
func (o *SalesOrder) BalanceDue() decimal.Decimal {
	return o.TotalAmount.Sub(o.AmountPaid)
}

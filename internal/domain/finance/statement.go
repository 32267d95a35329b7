package finance

import (
	"time"

	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatementLine is one purchase order as it appears on a supplier statement
type StatementLine struct {
	POID          uuid.UUID       `json:"po_id"`
	PONumber      string          `json:"po_number"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
	PaymentStatus string          `json:"payment_status"`
}

// StatementTotals summarizes a statement period
type StatementTotals struct {
	TotalOrdered decimal.Decimal `json:"total_ordered"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	BalanceDue   decimal.Decimal `json:"balance_due"`
	POCount      int             `json:"po_count"`
	PaymentCount int             `json:"payment_count"`
}

// Statement lists a supplier's orders and payments over a period. The
// balance due is the supplier ledger balance, not a sum over the period.
type Statement struct {
	SupplierID uuid.UUID
	From       *time.Time
	To         *time.Time
	Orders     []StatementLine
	Payments   []Payment
	Totals     StatementTotals
}

// NewStatementLine projects a purchase order onto a statement line
func NewStatementLine(o *trade.PurchaseOrder) StatementLine {
	return StatementLine{
		POID:          o.ID,
		PONumber:      o.PONumber,
		Status:        o.Status.String(),
		CreatedAt:     o.CreatedAt,
		DueDate:       o.DueDate,
		GrandTotal:    o.GrandTotal,
		AmountPaid:    o.AmountPaid,
		BalanceDue:    o.BalanceDue,
		PaymentStatus: string(o.PaymentStatus),
	}
}

// NewStatement totals orders and payments. Cancelled orders are listed but
// not counted as ordered.
func NewStatement(supplierID uuid.UUID, from, to *time.Time, pos []trade.PurchaseOrder, payments []Payment, ledgerBalance decimal.Decimal) *Statement {
	orders := make([]StatementLine, 0, len(pos))
	for i := range pos {
		orders = append(orders, NewStatementLine(&pos[i]))
	}
	s := &Statement{
		SupplierID: supplierID,
		From:       from,
		To:         to,
		Orders:     orders,
		Payments:   payments,
		Totals: StatementTotals{
			TotalOrdered: decimal.Zero,
			TotalPaid:    decimal.Zero,
			BalanceDue:   ledgerBalance,
			POCount:      len(orders),
			PaymentCount: len(payments),
		},
	}
	for _, o := range orders {
		if o.Status == trade.POStatusCancelled.String() {
			continue
		}
		s.Totals.TotalOrdered = s.Totals.TotalOrdered.Add(o.GrandTotal)
	}
	for _, p := range payments {
		s.Totals.TotalPaid = s.Totals.TotalPaid.Add(p.Amount)
	}
	return s
}

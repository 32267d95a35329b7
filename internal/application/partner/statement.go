package partner

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	appfinance "github.com/erp/backoffice/internal/application/finance"
	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/export"
	"github.com/google/uuid"
)

// StatementResponse is a supplier's account over a period
type StatementResponse struct {
	Supplier SupplierResponse             `json:"supplier"`
	From     *time.Time                   `json:"from,omitempty"`
	To       *time.Time                   `json:"to,omitempty"`
	Orders   []finance.StatementLine      `json:"purchase_orders"`
	Payments []appfinance.PaymentResponse `json:"payments"`
	Totals   finance.StatementTotals      `json:"totals"`
}

// Statement lists the supplier's orders created and payments made in the
// range, all read in one snapshot
func (s *SupplierService) Statement(ctx context.Context, id uuid.UUID, req StatementRequest) (*StatementResponse, error) {
	from, to := shared.InclusiveRange(req.From, req.To)

	var resp StatementResponse
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		supplier, err := repos.Suppliers().FindByID(ctx, id)
		if err != nil {
			return err
		}
		orders, err := repos.PurchaseOrders().FindBySupplier(ctx, id, from, to)
		if err != nil {
			return err
		}
		payments, err := repos.Payments().FindBySupplier(ctx, id, from, to)
		if err != nil {
			return err
		}
		stmt := finance.NewStatement(id, from, to, orders, payments, supplier.CurrentBalance)
		resp = StatementResponse{
			Supplier: ToSupplierResponse(supplier),
			From:     stmt.From,
			To:       stmt.To,
			Orders:   stmt.Orders,
			Payments: appfinance.ToPaymentResponses(stmt.Payments),
			Totals:   stmt.Totals,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// WriteStatementXLSX renders a statement as a workbook with a summary,
// an orders and a payments sheet
func WriteStatementXLSX(w io.Writer, stmt *StatementResponse) error {
	summary := export.Sheet{Name: "Summary", Headers: []string{"Field", "Value"}}
	summary.AddRow("Supplier", stmt.Supplier.Name)
	summary.AddRow("Payment terms", stmt.Supplier.PaymentTerms)
	summary.AddRow("From", stmt.From)
	summary.AddRow("To", stmt.To)
	summary.AddRow("Purchase orders", stmt.Totals.POCount)
	summary.AddRow("Total ordered", stmt.Totals.TotalOrdered)
	summary.AddRow("Payments", stmt.Totals.PaymentCount)
	summary.AddRow("Total paid", stmt.Totals.TotalPaid)
	summary.AddRow("Balance due", stmt.Totals.BalanceDue)

	orders := export.Sheet{
		Name:    "Purchase Orders",
		Headers: []string{"PO Number", "Date", "Status", "Grand Total", "Amount Paid", "Balance Due", "Payment Status", "Due Date"},
	}
	for _, o := range stmt.Orders {
		orders.AddRow(o.PONumber, o.CreatedAt, o.Status, o.GrandTotal, o.AmountPaid, o.BalanceDue, o.PaymentStatus, o.DueDate)
	}

	payments := export.Sheet{
		Name:    "Payments",
		Headers: []string{"Date", "PO Number", "Method", "Reference", "Amount"},
	}
	for _, p := range stmt.Payments {
		ref := p.ReferenceNumber
		if ref == "" {
			ref = p.ChequeNumber
		}
		payments.AddRow(p.PaidAt, p.PONumber, p.Method, ref, p.Amount)
	}

	return export.WriteXLSX(w, summary, orders, payments)
}

// StatementFilename names the workbook download for a statement
func StatementFilename(s *SupplierResponse, at time.Time) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '-'
	}, strings.TrimSpace(s.Name))
	return fmt.Sprintf("statement-%s-%s.xlsx", strings.Trim(slug, "-"), at.Format("20060102"))
}

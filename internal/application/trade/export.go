package trade

import (
	"io"
	"strings"

	"github.com/erp/backoffice/internal/infrastructure/export"
)

// WritePOExportXLSX renders purchase orders as a workbook with one row per
// order and one row per order line
func WritePOExportXLSX(w io.Writer, orders []POResponse) error {
	summary := export.Sheet{
		Name: "Purchase Orders",
		Headers: []string{
			"PO Number", "Date", "Status", "Payment Status", "Payment Terms",
			"Total Cost", "Tax", "Shipping", "Discount", "Grand Total",
			"Amount Paid", "Balance Due", "Due Date", "Overdue", "Received %",
		},
	}
	lines := export.Sheet{
		Name:    "Items",
		Headers: []string{"PO Number", "Product", "Quantity", "Unit Cost", "Subtotal", "Received", "Batches"},
	}
	for _, o := range orders {
		overdue := "No"
		if o.IsOverdue {
			overdue = "Yes"
		}
		summary.AddRow(
			o.PONumber, o.CreatedAt, o.Status, o.PaymentStatus, o.PaymentTerms,
			o.TotalCost, o.TaxAmount, o.ShippingCost, o.Discount, o.GrandTotal,
			o.AmountPaid, o.BalanceDue, o.DueDate, overdue, o.ReceiveProgress,
		)
		for _, item := range o.Items {
			lines.AddRow(o.PONumber, item.ProductName, item.Quantity, item.UnitCost, item.Subtotal,
				item.QuantityReceived, strings.Join(item.BatchNumbers, ", "))
		}
	}
	return export.WriteXLSX(w, summary, lines)
}


package persistence

import "strings"

// Sort whitelists per listing. Anything outside them falls back to the
// caller's default column, so user input never reaches ORDER BY verbatim.
var (
	ProductSortFields       = columns("created_at", "updated_at", "code", "name", "min_stock_level", "default_selling_price")
	SupplierSortFields      = columns("created_at", "updated_at", "name", "credit_limit", "current_balance")
	PurchaseOrderSortFields = columns("created_at", "updated_at", "po_number", "status", "grand_total", "balance_due", "due_date")
	SalesOrderSortFields    = columns("created_at", "order_number", "customer_name", "total_amount")
	ExpenseRecordSortFields = columns("created_at", "date_of_expense", "amount", "type_name")
)

func columns(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// ValidateSortOrder accepts "asc" in any case and treats everything else as DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

func ValidateSortField(sortField string, allowed map[string]bool, fallback string) string {
	if f := strings.TrimSpace(sortField); allowed[f] {
		return f
	}
	return fallback
}

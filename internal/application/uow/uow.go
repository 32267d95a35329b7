// Package uow defines the transaction boundary used by the application
// services. A Scope runs a function against repositories bound to one
// database transaction; the transaction commits when the function returns
// nil and rolls back otherwise.
package uow

import (
	"context"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/trade"
)

// Repositories gives access to every repository. Inside Scope.Execute they
// share the transaction.
type Repositories interface {
	Users() identity.UserRepository
	Categories() catalog.CategoryRepository
	Products() catalog.ProductRepository
	StockLots() inventory.StockLotRepository
	Suppliers() partner.SupplierRepository
	PurchaseOrders() trade.PurchaseOrderRepository
	SalesOrders() trade.SalesOrderRepository
	Payments() finance.PaymentRepository
	ExpenseTypes() finance.ExpenseTypeRepository
	ExpenseRecords() finance.ExpenseRecordRepository
	ExpenseSuggestions() finance.ExpenseSuggestionRepository
}

// Scope runs work atomically. ExecuteRead gives fn a read-only transaction
// in which every statement sees the same snapshot.
type Scope interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	ExecuteRead(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements uow.Scope using GORM transactions.
// On PostgreSQL every transaction bounds its row lock waits with
// SET LOCAL lock_timeout, so a blocked writer fails with 55P03 instead of
// queueing behind a slow one.
type GormTransactionScope struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB, lockTimeout time.Duration) *GormTransactionScope {
	return &GormTransactionScope{db: db, lockTimeout: lockTimeout}
}

// snapshotRead makes PostgreSQL pin one snapshot for the whole read
// transaction instead of one per statement.
var snapshotRead = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// Execute runs fn within a database transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.lockTimeout > 0 && isPostgres(tx) {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(ctx, NewRepositories(tx))
	})
	return translateError(err, "Transaction")
}

// ExecuteRead runs fn in a read-only REPEATABLE READ transaction on
// PostgreSQL. SQLite transactions are already serializable and take the
// default options.
func (s *GormTransactionScope) ExecuteRead(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) error {
	var opts []*sql.TxOptions
	if isPostgres(s.db) {
		opts = append(opts, snapshotRead)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepositories(tx))
	}, opts...)
	return translateError(err, "Transaction")
}

func isPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

// GormRepositories hands out repositories bound to one *gorm.DB, either the
// pool or a transaction
type GormRepositories struct {
	db *gorm.DB
}

// NewRepositories creates repositories over db
func NewRepositories(db *gorm.DB) *GormRepositories {
	return &GormRepositories{db: db}
}

func (r *GormRepositories) Users() identity.UserRepository {
	return NewGormUserRepository(r.db)
}

func (r *GormRepositories) Categories() catalog.CategoryRepository {
	return NewGormCategoryRepository(r.db)
}

func (r *GormRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.db)
}

func (r *GormRepositories) StockLots() inventory.StockLotRepository {
	return NewGormStockLotRepository(r.db)
}

func (r *GormRepositories) Suppliers() partner.SupplierRepository {
	return NewGormSupplierRepository(r.db)
}

func (r *GormRepositories) PurchaseOrders() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.db)
}

func (r *GormRepositories) SalesOrders() trade.SalesOrderRepository {
	return NewGormSalesOrderRepository(r.db)
}

func (r *GormRepositories) Payments() finance.PaymentRepository {
	return NewGormPaymentRepository(r.db)
}

func (r *GormRepositories) ExpenseTypes() finance.ExpenseTypeRepository {
	return NewGormExpenseTypeRepository(r.db)
}

func (r *GormRepositories) ExpenseRecords() finance.ExpenseRecordRepository {
	return NewGormExpenseRecordRepository(r.db)
}

func (r *GormRepositories) ExpenseSuggestions() finance.ExpenseSuggestionRepository {
	return NewGormExpenseSuggestionRepository(r.db)
}

var (
	_ uow.Scope        = (*GormTransactionScope)(nil)
	_ uow.Repositories = (*GormRepositories)(nil)
)

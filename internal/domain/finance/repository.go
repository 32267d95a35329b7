package finance

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRepository is the append-only payment ledger
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	FindByPO(ctx context.Context, poID uuid.UUID) ([]Payment, error)
	// FindBySupplier returns payments whose paid date falls in the range
	FindBySupplier(ctx context.Context, supplierID uuid.UUID, from, to *time.Time) ([]Payment, error)
}

// ExpenseTypeRepository persists expense types
type ExpenseTypeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ExpenseType, error)
	FindAll(ctx context.Context) ([]ExpenseType, error)
	ExistsByName(ctx context.Context, normalizedName string) (bool, error)
	Create(ctx context.Context, t *ExpenseType) error
}

// ExpenseRecordRepository persists expense records
type ExpenseRecordRepository interface {
	FindAll(ctx context.Context, filter shared.Filter) ([]ExpenseRecord, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	SumAmount(ctx context.Context, from, to *time.Time) (decimal.Decimal, error)
	Create(ctx context.Context, r *ExpenseRecord) error
}

// ExpenseSuggestionRepository persists the expense name index
type ExpenseSuggestionRepository interface {
	// Increment adds one use of name, creating the entry on first use
	Increment(ctx context.Context, name string, at time.Time) error
	// Search returns entries whose key starts with the normalized prefix,
	// most used first.
	Search(ctx context.Context, prefix string, limit int) ([]ExpenseSuggestion, error)
}

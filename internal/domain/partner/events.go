package partner

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const EventTypeSupplierBalanceChanged = "SupplierBalanceChanged"

// SupplierBalanceChangedEvent records a movement of the supplier ledger
type SupplierBalanceChangedEvent struct {
	shared.BaseDomainEvent
	OldBalance decimal.Decimal `json:"old_balance"`
	NewBalance decimal.Decimal `json:"new_balance"`
	Reference  string          `json:"reference"`
}

// NewSupplierBalanceChangedEvent creates a SupplierBalanceChangedEvent
func NewSupplierBalanceChangedEvent(s *Supplier, old decimal.Decimal, reference string) *SupplierBalanceChangedEvent {
	return &SupplierBalanceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierBalanceChanged, AggregateTypeSupplier, s.ID),
		OldBalance:      old,
		NewBalance:      s.CurrentBalance,
		Reference:       reference,
	}
}

package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeStockLot is the aggregate type for stock lots
const AggregateTypeStockLot = "StockLot"

// StockLot is a discrete, cost-tracked quantity of a product acquired at one
// time, either from a purchase order receipt or a manual stock-in. Lots are
// never deleted; they are deactivated when empty or retired.
type StockLot struct {
	shared.BaseAggregateRoot
	BatchNumber     string
	ProductID       uuid.UUID
	POID            *uuid.UUID
	POItemID        *uuid.UUID
	UnitCost        decimal.Decimal
	UnitPrice       decimal.Decimal
	InitialQuantity decimal.Decimal
	Quantity        decimal.Decimal
	DateAcquired    time.Time
	ExpiryDate      *time.Time
	IsActive        bool
	Notes           string
}

// LotSpec describes a lot to be created
type LotSpec struct {
	ProductID  uuid.UUID
	POID       *uuid.UUID
	POItemID   *uuid.UUID
	UnitCost   decimal.Decimal
	Quantity   decimal.Decimal
	UnitPrice  *decimal.Decimal
	ExpiryDate *time.Time
	Notes      string
}

// Validate checks the quantity and cost constraints of the spec
func (s LotSpec) Validate() error {
	if s.ProductID == uuid.Nil {
		return shared.NewValidationError("INVALID_PRODUCT", "Product is required")
	}
	if !s.Quantity.IsPositive() {
		return shared.NewValidationError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}
	if !s.UnitCost.IsPositive() {
		return shared.NewValidationError("INVALID_COST", "Unit cost must be greater than zero")
	}
	if s.UnitPrice != nil && s.UnitPrice.IsNegative() {
		return shared.NewValidationError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return nil
}

// FormatBatchNumber builds the batch number for the seq-th lot of a product.
// Numbers sort by creation within a product and embed the product code.
func FormatBatchNumber(productCode string, acquired time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%06d", strings.ToUpper(productCode), acquired.UTC().Format("20060102"), seq)
}

// DefaultUnitPrice marks a unit cost up by markup (0.30 = 30%)
func DefaultUnitPrice(unitCost, markup decimal.Decimal) decimal.Decimal {
	return unitCost.Mul(decimal.NewFromInt(1).Add(markup)).Round(2)
}

// NewStockLot creates an active lot from a validated spec
func NewStockLot(spec LotSpec, batchNumber string, markup decimal.Decimal) (*StockLot, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(batchNumber) == "" {
		return nil, shared.NewValidationError("INVALID_BATCH_NUMBER", "Batch number is required")
	}

	unitPrice := DefaultUnitPrice(spec.UnitCost, markup)
	if spec.UnitPrice != nil {
		unitPrice = *spec.UnitPrice
	}

	lot := &StockLot{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BatchNumber:       batchNumber,
		ProductID:         spec.ProductID,
		POID:              spec.POID,
		POItemID:          spec.POItemID,
		UnitCost:          spec.UnitCost,
		UnitPrice:         unitPrice,
		InitialQuantity:   spec.Quantity,
		Quantity:          spec.Quantity,
		ExpiryDate:        spec.ExpiryDate,
		IsActive:          true,
		Notes:             strings.TrimSpace(spec.Notes),
	}
	lot.DateAcquired = lot.CreatedAt
	lot.AddDomainEvent(NewStockLotCreatedEvent(lot))
	return lot, nil
}

// IsExpiredAt reports whether the lot's expiry date lies before now
func (l *StockLot) IsExpiredAt(now time.Time) bool {
	return l.ExpiryDate != nil && l.ExpiryDate.Before(now)
}

// IsAvailableAt reports whether the lot counts as stock at time now: it is
// active and not past its expiry date.
func (l *StockLot) IsAvailableAt(now time.Time) bool {
	return l.IsActive && !l.IsExpiredAt(now)
}

// IsSellableAt reports whether a sale at time now may draw from the lot
func (l *StockLot) IsSellableAt(now time.Time) bool {
	return l.IsAvailableAt(now) && l.Quantity.IsPositive()
}

// Deduct removes quantity from the lot. The lot is deactivated when its
// quantity reaches exactly zero.
func (l *StockLot) Deduct(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewValidationError("INVALID_QUANTITY", "Deducted quantity must be greater than zero")
	}
	if !l.IsActive {
		return shared.NewTransitionError(fmt.Sprintf("Lot %s is inactive", l.BatchNumber))
	}
	if quantity.GreaterThan(l.Quantity) {
		return shared.ErrInsufficientStock.WithDetail("batch_number", l.BatchNumber)
	}
	l.Quantity = l.Quantity.Sub(quantity)
	if l.Quantity.IsZero() {
		l.IsActive = false
	}
	l.Touch()
	return nil
}

// Adjust sets the remaining quantity after a physical count
func (l *StockLot) Adjust(quantity decimal.Decimal, reason string) error {
	if quantity.IsNegative() {
		return shared.NewValidationError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewValidationError("REASON_REQUIRED", "Adjustment reason is required")
	}
	old := l.Quantity
	l.Quantity = quantity
	l.IsActive = quantity.IsPositive()
	l.appendNote(fmt.Sprintf("adjusted %s -> %s: %s", old.String(), quantity.String(), reason))
	l.Touch()
	l.AddDomainEvent(NewStockLotAdjustedEvent(l, old))
	return nil
}

// Retire deactivates the lot while keeping its remaining quantity on record
func (l *StockLot) Retire(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewValidationError("REASON_REQUIRED", "Retirement reason is required")
	}
	if !l.IsActive {
		return shared.NewTransitionError(fmt.Sprintf("Lot %s is already inactive", l.BatchNumber))
	}
	l.IsActive = false
	l.appendNote("retired: " + reason)
	l.Touch()
	l.AddDomainEvent(NewStockLotAdjustedEvent(l, l.Quantity))
	return nil
}

func (l *StockLot) appendNote(note string) {
	if l.Notes == "" {
		l.Notes = note
		return
	}
	l.Notes = l.Notes + "\n" + note
}

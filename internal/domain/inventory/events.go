package inventory

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypeStockLotCreated  = "StockLotCreated"
	EventTypeStockLotAdjusted = "StockLotAdjusted"
	EventTypeStockDepleted    = "StockDepleted"
)

// StockLotCreatedEvent is raised when stock enters the ledger
type StockLotCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID       `json:"product_id"`
	BatchNumber string          `json:"batch_number"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	POID        *uuid.UUID      `json:"po_id,omitempty"`
}

// NewStockLotCreatedEvent creates a StockLotCreatedEvent
func NewStockLotCreatedEvent(lot *StockLot) *StockLotCreatedEvent {
	return &StockLotCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockLotCreated, AggregateTypeStockLot, lot.ID),
		ProductID:       lot.ProductID,
		BatchNumber:     lot.BatchNumber,
		Quantity:        lot.Quantity,
		UnitCost:        lot.UnitCost,
		POID:            lot.POID,
	}
}

// StockLotAdjustedEvent is raised by manual reconciliation
type StockLotAdjustedEvent struct {
	shared.BaseDomainEvent
	ProductID        uuid.UUID       `json:"product_id"`
	BatchNumber      string          `json:"batch_number"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	Quantity         decimal.Decimal `json:"quantity"`
	IsActive         bool            `json:"is_active"`
}

// NewStockLotAdjustedEvent creates a StockLotAdjustedEvent
func NewStockLotAdjustedEvent(lot *StockLot, previous decimal.Decimal) *StockLotAdjustedEvent {
	return &StockLotAdjustedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockLotAdjusted, AggregateTypeStockLot, lot.ID),
		ProductID:        lot.ProductID,
		BatchNumber:      lot.BatchNumber,
		PreviousQuantity: previous,
		Quantity:         lot.Quantity,
		IsActive:         lot.IsActive,
	}
}

// StockDepletedEvent is raised after a sale drew stock from a product
type StockDepletedEvent struct {
	shared.BaseDomainEvent
	ProductID      uuid.UUID       `json:"product_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	Cost           decimal.Decimal `json:"cost"`
	RemainingStock decimal.Decimal `json:"remaining_stock"`
	IsLowStock     bool            `json:"is_low_stock"`
}

// NewStockDepletedEvent creates a StockDepletedEvent
func NewStockDepletedEvent(plan *DepletionPlan, view StockView) *StockDepletedEvent {
	return &StockDepletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDepleted, "Product", plan.ProductID),
		ProductID:       plan.ProductID,
		Quantity:        plan.Requested,
		Cost:            plan.TotalCost,
		RemainingStock:  view.TotalStock,
		IsLowStock:      view.IsLowStock,
	}
}

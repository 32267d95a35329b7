package trade

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypePurchaseOrderCreated       = "PurchaseOrderCreated"
	EventTypePurchaseOrderStatusChanged = "PurchaseOrderStatusChanged"
	EventTypePurchaseOrderReceived      = "PurchaseOrderReceived"
	EventTypePurchaseOrderCancelled     = "PurchaseOrderCancelled"
	EventTypePurchaseOrderPaid          = "PurchaseOrderPaid"
	EventTypeSalesOrderCreated          = "SalesOrderCreated"
)

// PurchaseOrderCreatedEvent is raised when a draft purchase order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	PONumber   string          `json:"po_number"`
	SupplierID uuid.UUID       `json:"supplier_id"`
	ManagerID  uuid.UUID       `json:"manager_id"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	ItemCount  int             `json:"item_count"`
}

// NewPurchaseOrderCreatedEvent creates a PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(o *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, o.ID),
		PONumber:        o.PONumber,
		SupplierID:      o.SupplierID,
		ManagerID:       o.ManagerID,
		GrandTotal:      o.GrandTotal,
		ItemCount:       len(o.Items),
	}
}

// PurchaseOrderStatusChangedEvent covers submit, approve and markOrdered
type PurchaseOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	PONumber   string              `json:"po_number"`
	SupplierID uuid.UUID           `json:"supplier_id"`
	From       PurchaseOrderStatus `json:"from"`
	To         PurchaseOrderStatus `json:"to"`
}

// NewPurchaseOrderStatusChangedEvent creates a PurchaseOrderStatusChangedEvent
func NewPurchaseOrderStatusChangedEvent(o *PurchaseOrder, from PurchaseOrderStatus) *PurchaseOrderStatusChangedEvent {
	return &PurchaseOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderStatusChanged, AggregateTypePurchaseOrder, o.ID),
		PONumber:        o.PONumber,
		SupplierID:      o.SupplierID,
		From:            from,
		To:              o.Status,
	}
}

// PurchaseOrderReceivedEvent is raised for every goods receipt
type PurchaseOrderReceivedEvent struct {
	shared.BaseDomainEvent
	PONumber string              `json:"po_number"`
	From     PurchaseOrderStatus `json:"from"`
	To       PurchaseOrderStatus `json:"to"`
	Lots     []ReceivedLot       `json:"lots"`
}

// NewPurchaseOrderReceivedEvent creates a PurchaseOrderReceivedEvent
func NewPurchaseOrderReceivedEvent(o *PurchaseOrder, from PurchaseOrderStatus, lots []ReceivedLot) *PurchaseOrderReceivedEvent {
	return &PurchaseOrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderReceived, AggregateTypePurchaseOrder, o.ID),
		PONumber:        o.PONumber,
		From:            from,
		To:              o.Status,
		Lots:            lots,
	}
}

// PurchaseOrderCancelledEvent carries the batches that stay in stock so
// they can be reconciled by hand.
type PurchaseOrderCancelledEvent struct {
	shared.BaseDomainEvent
	PONumber        string              `json:"po_number"`
	SupplierID      uuid.UUID           `json:"supplier_id"`
	From            PurchaseOrderStatus `json:"from"`
	Reason          string              `json:"reason"`
	ReceivedBatches []string            `json:"received_batches,omitempty"`
}

// NewPurchaseOrderCancelledEvent creates a PurchaseOrderCancelledEvent
func NewPurchaseOrderCancelledEvent(o *PurchaseOrder, from PurchaseOrderStatus, batches []string) *PurchaseOrderCancelledEvent {
	return &PurchaseOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCancelled, AggregateTypePurchaseOrder, o.ID),
		PONumber:        o.PONumber,
		SupplierID:      o.SupplierID,
		From:            from,
		Reason:          o.CancelReason,
		ReceivedBatches: batches,
	}
}

// PurchaseOrderPaidEvent is raised when a payment is applied
type PurchaseOrderPaidEvent struct {
	shared.BaseDomainEvent
	PONumber      string          `json:"po_number"`
	SupplierID    uuid.UUID       `json:"supplier_id"`
	Amount        decimal.Decimal `json:"amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// NewPurchaseOrderPaidEvent creates a PurchaseOrderPaidEvent
func NewPurchaseOrderPaidEvent(o *PurchaseOrder, amount decimal.Decimal) *PurchaseOrderPaidEvent {
	return &PurchaseOrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderPaid, AggregateTypePurchaseOrder, o.ID),
		PONumber:        o.PONumber,
		SupplierID:      o.SupplierID,
		Amount:          amount,
		AmountPaid:      o.AmountPaid,
		BalanceDue:      o.BalanceDue,
		PaymentStatus:   o.PaymentStatus,
	}
}

// SalesOrderCreatedEvent is raised when a sale depletes stock
type SalesOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber   string             `json:"order_number"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	CostOfGoods   decimal.Decimal    `json:"cost_of_goods"`
	PaymentStatus SalesPaymentStatus `json:"payment_status"`
}

// NewSalesOrderCreatedEvent creates a SalesOrderCreatedEvent
func NewSalesOrderCreatedEvent(o *SalesOrder) *SalesOrderCreatedEvent {
	return &SalesOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderCreated, AggregateTypeSalesOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		TotalAmount:     o.TotalAmount,
		CostOfGoods:     o.CostOfGoods,
		PaymentStatus:   o.PaymentStatus,
	}
}

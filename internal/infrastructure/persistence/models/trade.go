package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate
type PurchaseOrderModel struct {
	AggregateModel
	PONumber      string                   `gorm:"column:po_number;type:varchar(30);not null;uniqueIndex"`
	SupplierID    uuid.UUID                `gorm:"type:uuid;not null;index"`
	ManagerID     uuid.UUID                `gorm:"type:uuid;not null;index"`
	Items         []PurchaseOrderItemModel `gorm:"foreignKey:POID;references:ID"`
	TotalCost     decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	TaxAmount     decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingCost  decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	Discount      decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal    decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Status        string                   `gorm:"type:varchar(30);not null;index"`
	AmountPaid    decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	BalanceDue    decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	PaymentStatus string                   `gorm:"type:varchar(20);not null;index"`
	PaymentTerms  string                   `gorm:"type:varchar(30);not null"`
	SubmittedAt   *time.Time
	ApprovedAt    *time.Time
	ApprovedBy    *uuid.UUID `gorm:"type:uuid"`
	OrderedAt     *time.Time
	ReceivedAt    *time.Time
	DueDate       *time.Time `gorm:"index"`
	CancelledAt   *time.Time
	CancelledBy   *uuid.UUID `gorm:"type:uuid"`
	CancelReason  string     `gorm:"type:varchar(500)"`
	Notes         string     `gorm:"type:text"`
}

func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	po := &trade.PurchaseOrder{
		BaseAggregateRoot: m.aggregate(),
		PONumber:          m.PONumber,
		SupplierID:        m.SupplierID,
		ManagerID:         m.ManagerID,
		Items:             make([]trade.PurchaseOrderItem, len(m.Items)),
		TotalCost:         m.TotalCost,
		TaxAmount:         m.TaxAmount,
		ShippingCost:      m.ShippingCost,
		Discount:          m.Discount,
		GrandTotal:        m.GrandTotal,
		Status:            trade.PurchaseOrderStatus(m.Status),
		AmountPaid:        m.AmountPaid,
		BalanceDue:        m.BalanceDue,
		PaymentStatus:     trade.PaymentStatus(m.PaymentStatus),
		PaymentTerms:      partner.PaymentTerms(m.PaymentTerms),
		SubmittedAt:       m.SubmittedAt,
		ApprovedAt:        m.ApprovedAt,
		ApprovedBy:        m.ApprovedBy,
		OrderedAt:         m.OrderedAt,
		ReceivedAt:        m.ReceivedAt,
		DueDate:           m.DueDate,
		CancelledAt:       m.CancelledAt,
		CancelledBy:       m.CancelledBy,
		CancelReason:      m.CancelReason,
		Notes:             m.Notes,
	}
	for i := range m.Items {
		po.Items[i] = m.Items[i].ToDomain()
	}
	return po
}

// PurchaseOrderModelFromDomain creates a persistence model, items included
func PurchaseOrderModelFromDomain(po *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		PONumber:      po.PONumber,
		SupplierID:    po.SupplierID,
		ManagerID:     po.ManagerID,
		Items:         make([]PurchaseOrderItemModel, len(po.Items)),
		TotalCost:     po.TotalCost,
		TaxAmount:     po.TaxAmount,
		ShippingCost:  po.ShippingCost,
		Discount:      po.Discount,
		GrandTotal:    po.GrandTotal,
		Status:        po.Status.String(),
		AmountPaid:    po.AmountPaid,
		BalanceDue:    po.BalanceDue,
		PaymentStatus: string(po.PaymentStatus),
		PaymentTerms:  string(po.PaymentTerms),
		SubmittedAt:   po.SubmittedAt,
		ApprovedAt:    po.ApprovedAt,
		ApprovedBy:    po.ApprovedBy,
		OrderedAt:     po.OrderedAt,
		ReceivedAt:    po.ReceivedAt,
		DueDate:       po.DueDate,
		CancelledAt:   po.CancelledAt,
		CancelledBy:   po.CancelledBy,
		CancelReason:  po.CancelReason,
		Notes:         po.Notes,
	}
	m.setAggregate(po.BaseAggregateRoot)
	for i := range po.Items {
		m.Items[i] = PurchaseOrderItemModelFromDomain(po.ID, i+1, &po.Items[i])
	}
	return m
}

// PurchaseOrderItemModel is one line of a purchase order. The receipt
// history is kept as two parallel JSON arrays.
type PurchaseOrderItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	POID             uuid.UUID       `gorm:"column:po_id;type:uuid;not null;index"`
	LineNo           int             `gorm:"not null"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName      string          `gorm:"type:varchar(200);not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityReceived decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	BatchNumbers     []string        `gorm:"type:jsonb;serializer:json;not null"`
	ReceivedDates    []time.Time     `gorm:"type:jsonb;serializer:json;not null"`
}

func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

func (m *PurchaseOrderItemModel) ToDomain() trade.PurchaseOrderItem {
	return trade.PurchaseOrderItem{
		ID:               m.ID,
		POID:             m.POID,
		ProductID:        m.ProductID,
		ProductName:      m.ProductName,
		Quantity:         m.Quantity,
		UnitCost:         m.UnitCost,
		Subtotal:         m.Subtotal,
		QuantityReceived: m.QuantityReceived,
		BatchNumbers:     append([]string{}, m.BatchNumbers...),
		ReceivedDates:    append([]time.Time{}, m.ReceivedDates...),
	}
}

// PurchaseOrderItemModelFromDomain creates the model for line lineNo
func PurchaseOrderItemModelFromDomain(poID uuid.UUID, lineNo int, it *trade.PurchaseOrderItem) PurchaseOrderItemModel {
	batches := it.BatchNumbers
	if batches == nil {
		batches = []string{}
	}
	dates := it.ReceivedDates
	if dates == nil {
		dates = []time.Time{}
	}
	return PurchaseOrderItemModel{
		ID:               it.ID,
		POID:             poID,
		LineNo:           lineNo,
		ProductID:        it.ProductID,
		ProductName:      it.ProductName,
		Quantity:         it.Quantity,
		UnitCost:         it.UnitCost,
		Subtotal:         it.Subtotal,
		QuantityReceived: it.QuantityReceived,
		BatchNumbers:     batches,
		ReceivedDates:    dates,
	}
}

// SalesOrderModel is the persistence model for sales
type SalesOrderModel struct {
	AggregateModel
	OrderNumber   string                `gorm:"type:varchar(30);not null;uniqueIndex"`
	ManagerID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	ManagerName   string                `gorm:"type:varchar(100);not null"`
	CustomerName  string                `gorm:"type:varchar(200);not null"`
	Items         []SalesOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount   decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	AmountPaid    decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	CostOfGoods   decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentStatus string                `gorm:"type:varchar(20);not null;index"`
}

func (SalesOrderModel) TableName() string {
	return "sales_orders"
}

func (m *SalesOrderModel) ToDomain() *trade.SalesOrder {
	o := &trade.SalesOrder{
		BaseAggregateRoot: m.aggregate(),
		OrderNumber:       m.OrderNumber,
		ManagerID:         m.ManagerID,
		ManagerName:       m.ManagerName,
		CustomerName:      m.CustomerName,
		Items:             make([]trade.SalesOrderItem, len(m.Items)),
		TotalAmount:       m.TotalAmount,
		AmountPaid:        m.AmountPaid,
		CostOfGoods:       m.CostOfGoods,
		PaymentStatus:     trade.SalesPaymentStatus(m.PaymentStatus),
	}
	for i, it := range m.Items {
		o.Items[i] = trade.SalesOrderItem{
			ID:          it.ID,
			OrderID:     it.OrderID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
			CostOfGoods: it.CostOfGoods,
			Allocations: it.Allocations,
		}
	}
	return o
}

// SalesOrderModelFromDomain creates a persistence model, items included
func SalesOrderModelFromDomain(o *trade.SalesOrder) *SalesOrderModel {
	m := &SalesOrderModel{
		OrderNumber:   o.OrderNumber,
		ManagerID:     o.ManagerID,
		ManagerName:   o.ManagerName,
		CustomerName:  o.CustomerName,
		Items:         make([]SalesOrderItemModel, len(o.Items)),
		TotalAmount:   o.TotalAmount,
		AmountPaid:    o.AmountPaid,
		CostOfGoods:   o.CostOfGoods,
		PaymentStatus: string(o.PaymentStatus),
	}
	m.setAggregate(o.BaseAggregateRoot)
	for i, it := range o.Items {
		allocations := it.Allocations
		if allocations == nil {
			allocations = []inventory.Deduction{}
		}
		m.Items[i] = SalesOrderItemModel{
			ID:          it.ID,
			OrderID:     o.ID,
			LineNo:      i + 1,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
			CostOfGoods: it.CostOfGoods,
			Allocations: allocations,
		}
	}
	return m
}

// SalesOrderItemModel is one line of a sale with the lots it drew from
type SalesOrderItemModel struct {
	ID          uuid.UUID             `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	LineNo      int                   `gorm:"not null"`
	ProductID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	ProductName string                `gorm:"type:varchar(200);not null"`
	Quantity    decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Subtotal    decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	CostOfGoods decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Allocations []inventory.Deduction `gorm:"type:jsonb;serializer:json;not null"`
}

func (SalesOrderItemModel) TableName() string {
	return "sales_order_items"
}

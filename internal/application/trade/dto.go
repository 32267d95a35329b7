package trade

import (
	"time"

	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePOItemRequest is one line of a new purchase order
type CreatePOItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required,decimal_gt0"`
	UnitCost  decimal.Decimal `json:"unit_cost" binding:"required,decimal_gt0"`
}

// CreatePORequest represents a request to create a purchase order
type CreatePORequest struct {
	SupplierID   uuid.UUID             `json:"supplier_id" binding:"required"`
	Items        []CreatePOItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentTerms string                `json:"payment_terms" binding:"max=50"`
	TaxAmount    decimal.Decimal       `json:"tax_amount"`
	ShippingCost decimal.Decimal       `json:"shipping_cost"`
	Discount     decimal.Decimal       `json:"discount"`
	Notes        string                `json:"notes" binding:"max=2000"`
}

// ReceiveItemRequest receives a quantity of one purchase order item
type ReceiveItemRequest struct {
	POItemID   uuid.UUID        `json:"po_item_id" binding:"required"`
	Quantity   decimal.Decimal  `json:"quantity" binding:"required,decimal_gt0"`
	UnitPrice  *decimal.Decimal `json:"unit_price" binding:"omitempty,decimal_gt0"`
	ExpiryDate *time.Time       `json:"expiry_date"`
	Notes      string           `json:"notes" binding:"max=1000"`
}

// ReceiveRequest represents a goods receipt against a purchase order
type ReceiveRequest struct {
	Items []ReceiveItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes string               `json:"notes" binding:"max=1000"`
}

// CancelRequest carries the mandatory cancel reason
type CancelRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// PaymentRequest records a payment against a purchase order
type PaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required,decimal_gt0"`
	Method          string          `json:"payment_method"`
	PaymentDate     *time.Time      `json:"payment_date"`
	ChequeNumber    string          `json:"cheque_number" binding:"max=50"`
	BankName        string          `json:"bank_name" binding:"max=100"`
	ReferenceNumber string          `json:"reference_number" binding:"max=100"`
	MobileNumber    string          `json:"mobile_number" binding:"max=20"`
	MobileProvider  string          `json:"mobile_provider"`
	Notes           string          `json:"notes" binding:"max=1000"`
}

// POListFilter represents filter options for the purchase order list
type POListFilter struct {
	Status        string     `form:"status"`
	SupplierID    *uuid.UUID `form:"supplier_id"`
	PaymentStatus string     `form:"payment_status"`
	Search        string     `form:"search"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// POItemResponse is a purchase order line in API responses
type POItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	ProductName       string          `json:"product_name"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	BatchNumbers      []string        `json:"batch_numbers"`
	ReceivedDates     []time.Time     `json:"received_dates"`
}

// POResponse is a purchase order in API responses
type POResponse struct {
	ID              uuid.UUID        `json:"id"`
	PONumber        string           `json:"po_number"`
	SupplierID      uuid.UUID        `json:"supplier_id"`
	ManagerID       uuid.UUID        `json:"manager_id"`
	Items           []POItemResponse `json:"items"`
	TotalCost       decimal.Decimal  `json:"total_cost"`
	TaxAmount       decimal.Decimal  `json:"tax_amount"`
	ShippingCost    decimal.Decimal  `json:"shipping_cost"`
	Discount        decimal.Decimal  `json:"discount"`
	GrandTotal      decimal.Decimal  `json:"grand_total"`
	Status          string           `json:"status"`
	AmountPaid      decimal.Decimal  `json:"amount_paid"`
	BalanceDue      decimal.Decimal  `json:"balance_due"`
	PaymentStatus   string           `json:"payment_status"`
	PaymentTerms    string           `json:"payment_terms"`
	ReceiveProgress decimal.Decimal  `json:"receive_progress"`
	IsOverdue       bool             `json:"is_overdue"`
	SubmittedAt     *time.Time       `json:"submitted_at,omitempty"`
	ApprovedAt      *time.Time       `json:"approved_at,omitempty"`
	ApprovedBy      *uuid.UUID       `json:"approved_by,omitempty"`
	OrderedAt       *time.Time       `json:"ordered_date,omitempty"`
	ReceivedAt      *time.Time       `json:"received_date,omitempty"`
	DueDate         *time.Time       `json:"due_date,omitempty"`
	CancelledAt     *time.Time       `json:"cancelled_at,omitempty"`
	CancelReason    string           `json:"cancel_reason,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Version         int              `json:"version"`
}

// CancelResponse is the cancelled order plus the batches that were already
// received into stock and need manual reconciliation
type CancelResponse struct {
	PurchaseOrder   POResponse `json:"purchase_order"`
	ReceivedBatches []string   `json:"received_batches"`
}

// ToPOResponse converts a domain PurchaseOrder, judging overdue against now
func ToPOResponse(o *trade.PurchaseOrder, now time.Time) POResponse {
	items := make([]POItemResponse, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		batches := item.BatchNumbers
		if batches == nil {
			batches = []string{}
		}
		dates := item.ReceivedDates
		if dates == nil {
			dates = []time.Time{}
		}
		items[i] = POItemResponse{
			ID:                item.ID,
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			Quantity:          item.Quantity,
			UnitCost:          item.UnitCost,
			Subtotal:          item.Subtotal,
			QuantityReceived:  item.QuantityReceived,
			RemainingQuantity: item.RemainingQuantity(),
			BatchNumbers:      batches,
			ReceivedDates:     dates,
		}
	}
	return POResponse{
		ID:              o.ID,
		PONumber:        o.PONumber,
		SupplierID:      o.SupplierID,
		ManagerID:       o.ManagerID,
		Items:           items,
		TotalCost:       o.TotalCost,
		TaxAmount:       o.TaxAmount,
		ShippingCost:    o.ShippingCost,
		Discount:        o.Discount,
		GrandTotal:      o.GrandTotal,
		Status:          string(o.Status),
		AmountPaid:      o.AmountPaid,
		BalanceDue:      o.BalanceDue,
		PaymentStatus:   string(o.PaymentStatus),
		PaymentTerms:    string(o.PaymentTerms),
		ReceiveProgress: o.ReceiveProgress(),
		IsOverdue:       o.IsOverdue(now),
		SubmittedAt:     o.SubmittedAt,
		ApprovedAt:      o.ApprovedAt,
		ApprovedBy:      o.ApprovedBy,
		OrderedAt:       o.OrderedAt,
		ReceivedAt:      o.ReceivedAt,
		DueDate:         o.DueDate,
		CancelledAt:     o.CancelledAt,
		CancelReason:    o.CancelReason,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Version:         o.Version,
	}
}

// SaleItemRequest is one product line of a sale
type SaleItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required,decimal_gt0"`
}

// CreateSaleRequest represents a request to record a sale
type CreateSaleRequest struct {
	CustomerName string            `json:"customer_name" binding:"max=200"`
	Items        []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	AmountPaid   decimal.Decimal   `json:"amount_paid"`
}

// SaleListFilter represents filter options for the sales list
type SaleListFilter struct {
	PaymentStatus string     `form:"payment_status"`
	Search        string     `form:"search"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SaleItemResponse is a sales order line in API responses
type SaleItemResponse struct {
	ID          uuid.UUID             `json:"id"`
	ProductID   uuid.UUID             `json:"product_id"`
	ProductName string                `json:"product_name"`
	Quantity    decimal.Decimal       `json:"quantity"`
	UnitPrice   decimal.Decimal       `json:"unit_price"`
	Subtotal    decimal.Decimal       `json:"subtotal"`
	CostOfGoods decimal.Decimal       `json:"cost_of_goods"`
	Allocations []inventory.Deduction `json:"batches_used"`
}

// SaleResponse is a sales order in API responses
type SaleResponse struct {
	ID            uuid.UUID          `json:"id"`
	OrderNumber   string             `json:"order_number"`
	ManagerID     uuid.UUID          `json:"manager_id"`
	ManagerName   string             `json:"manager_name"`
	CustomerName  string             `json:"customer_name"`
	Items         []SaleItemResponse `json:"items"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	AmountPaid    decimal.Decimal    `json:"amount_paid"`
	BalanceDue    decimal.Decimal    `json:"balance_due"`
	CostOfGoods   decimal.Decimal    `json:"cost_of_goods"`
	GrossProfit   decimal.Decimal    `json:"gross_profit"`
	PaymentStatus string             `json:"payment_status"`
	CreatedAt     time.Time          `json:"created_at"`
}

// ToSaleResponse converts a domain SalesOrder
func ToSaleResponse(o *trade.SalesOrder) SaleResponse {
	items := make([]SaleItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = SaleItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
			CostOfGoods: item.CostOfGoods,
			Allocations: item.Allocations,
		}
	}
	return SaleResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		ManagerID:     o.ManagerID,
		ManagerName:   o.ManagerName,
		CustomerName:  o.CustomerName,
		Items:         items,
		TotalAmount:   o.TotalAmount,
		AmountPaid:    o.AmountPaid,
		BalanceDue:    o.BalanceDue(),
		CostOfGoods:   o.CostOfGoods,
		GrossProfit:   o.GrossProfit(),
		PaymentStatus: string(o.PaymentStatus),
		CreatedAt:     o.CreatedAt,
	}
}

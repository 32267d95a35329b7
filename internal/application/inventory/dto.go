package inventory

import (
	"time"

	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddStockRequest adds a manually entered lot to a product
type AddStockRequest struct {
	UnitCost   decimal.Decimal  `json:"unit_cost" binding:"required,decimal_gt0"`
	Quantity   decimal.Decimal  `json:"quantity" binding:"required,decimal_gt0"`
	UnitPrice  *decimal.Decimal `json:"unit_price" binding:"omitempty,decimal_gt0"`
	ExpiryDate *time.Time       `json:"expiry_date"`
	Notes      string           `json:"notes" binding:"max=1000"`
}

// DepleteRequest draws stock from a product outside a sales order
type DepleteRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required,decimal_gt0"`
}

// AdjustLotRequest sets a lot's remaining quantity after a count
type AdjustLotRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	Reason   string          `json:"reason" binding:"required,max=500"`
}

// RetireLotRequest deactivates a lot
type RetireLotRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// SearchRequest is the cross-product batch lookup
type SearchRequest struct {
	BatchNumber  string     `form:"batch_number"`
	POID         *uuid.UUID `form:"po_id"`
	ProductName  string     `form:"product_name"`
	ExpiryBefore *time.Time `form:"expiry_before" time_format:"2006-01-02"`
	ExpiryAfter  *time.Time `form:"expiry_after" time_format:"2006-01-02"`
	ActiveOnly   bool       `form:"active_only"`
	Limit        int        `form:"limit" binding:"omitempty,min=1,max=500"`
}

// LotResponse is a stock lot in API responses
type LotResponse struct {
	ID              uuid.UUID       `json:"id"`
	BatchNumber     string          `json:"batch_number"`
	ProductID       uuid.UUID       `json:"product_id"`
	POID            *uuid.UUID      `json:"po_id,omitempty"`
	POItemID        *uuid.UUID      `json:"po_item_id,omitempty"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	InitialQuantity decimal.Decimal `json:"initial_quantity"`
	Quantity        decimal.Decimal `json:"quantity"`
	DateAcquired    time.Time       `json:"date_acquired"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	IsActive        bool            `json:"is_active"`
	IsExpired       bool            `json:"is_expired"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// DepletionResponse lists the lots a depletion drew from
type DepletionResponse struct {
	ProductID  uuid.UUID             `json:"product_id"`
	Quantity   decimal.Decimal       `json:"quantity"`
	TotalCost  decimal.Decimal       `json:"total_cost"`
	Deductions []inventory.Deduction `json:"deductions"`
	StockView  inventory.StockView   `json:"stock_view"`
}

// ToLotResponse converts a lot, judging expiry against now
func ToLotResponse(lot *inventory.StockLot, now time.Time) LotResponse {
	return LotResponse{
		ID:              lot.ID,
		BatchNumber:     lot.BatchNumber,
		ProductID:       lot.ProductID,
		POID:            lot.POID,
		POItemID:        lot.POItemID,
		UnitCost:        lot.UnitCost,
		UnitPrice:       lot.UnitPrice,
		InitialQuantity: lot.InitialQuantity,
		Quantity:        lot.Quantity,
		DateAcquired:    lot.DateAcquired,
		ExpiryDate:      lot.ExpiryDate,
		IsActive:        lot.IsActive,
		IsExpired:       lot.IsExpiredAt(now),
		Notes:           lot.Notes,
		CreatedAt:       lot.CreatedAt,
	}
}

// ToLotResponses converts a list of lots
func ToLotResponses(lots []inventory.StockLot, now time.Time) []LotResponse {
	out := make([]LotResponse, len(lots))
	for i := range lots {
		out[i] = ToLotResponse(&lots[i], now)
	}
	return out
}

package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLotModel is the persistence model for stock lots
type StockLotModel struct {
	AggregateModel
	BatchNumber     string          `gorm:"type:varchar(80);not null;uniqueIndex"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_lots_product_fifo,priority:1"`
	POID            *uuid.UUID      `gorm:"column:po_id;type:uuid;index"`
	POItemID        *uuid.UUID      `gorm:"column:po_item_id;type:uuid"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	InitialQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DateAcquired    time.Time       `gorm:"not null;index:idx_stock_lots_product_fifo,priority:2"`
	ExpiryDate      *time.Time      `gorm:"index"`
	IsActive        bool            `gorm:"not null;default:true"`
	Notes           string          `gorm:"type:text"`
}

func (StockLotModel) TableName() string {
	return "stock_lots"
}

func (m *StockLotModel) ToDomain() *inventory.StockLot {
	return &inventory.StockLot{
		BaseAggregateRoot: m.aggregate(),
		BatchNumber:       m.BatchNumber,
		ProductID:         m.ProductID,
		POID:              m.POID,
		POItemID:          m.POItemID,
		UnitCost:          m.UnitCost,
		UnitPrice:         m.UnitPrice,
		InitialQuantity:   m.InitialQuantity,
		Quantity:          m.Quantity,
		DateAcquired:      m.DateAcquired,
		ExpiryDate:        m.ExpiryDate,
		IsActive:          m.IsActive,
		Notes:             m.Notes,
	}
}

// StockLotModelFromDomain creates a persistence model from a domain lot
func StockLotModelFromDomain(l *inventory.StockLot) *StockLotModel {
	m := &StockLotModel{
		BatchNumber:     l.BatchNumber,
		ProductID:       l.ProductID,
		POID:            l.POID,
		POItemID:        l.POItemID,
		UnitCost:        l.UnitCost,
		UnitPrice:       l.UnitPrice,
		InitialQuantity: l.InitialQuantity,
		Quantity:        l.Quantity,
		DateAcquired:    l.DateAcquired,
		ExpiryDate:      l.ExpiryDate,
		IsActive:        l.IsActive,
		Notes:           l.Notes,
	}
	m.setAggregate(l.BaseAggregateRoot)
	return m
}

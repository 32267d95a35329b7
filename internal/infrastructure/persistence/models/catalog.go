package models

import (
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for product categories
type CategoryModel struct {
	BaseModel
	Name string `gorm:"type:varchar(100);not null;uniqueIndex"`
}

func (CategoryModel) TableName() string {
	return "product_categories"
}

func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{BaseEntity: m.entity(), Name: m.Name}
}

// CategoryModelFromDomain creates a persistence model from a domain category
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{Name: c.Name}
	m.setEntity(c.BaseEntity)
	return m
}

// ProductModel is the persistence model for the Product aggregate. Stock
// figures are not stored; they are derived from stock_lots.
type ProductModel struct {
	AggregateModel
	CategoryID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Code                string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name                string          `gorm:"type:varchar(200);not null;index"`
	Description         string          `gorm:"type:text"`
	UnitOfMeasure       string          `gorm:"type:varchar(20);not null"`
	MinStockLevel       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DefaultSellingPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LotSequence         int64           `gorm:"not null;default:0"`
	IsActive            bool            `gorm:"not null;default:true;index"`
}

func (ProductModel) TableName() string {
	return "products"
}

func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot:   m.aggregate(),
		CategoryID:          m.CategoryID,
		Code:                m.Code,
		Name:                m.Name,
		Description:         m.Description,
		UnitOfMeasure:       m.UnitOfMeasure,
		MinStockLevel:       m.MinStockLevel,
		DefaultSellingPrice: m.DefaultSellingPrice,
		LotSequence:         m.LotSequence,
		IsActive:            m.IsActive,
	}
}

// ProductModelFromDomain creates a persistence model from a domain product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		CategoryID:          p.CategoryID,
		Code:                p.Code,
		Name:                p.Name,
		Description:         p.Description,
		UnitOfMeasure:       p.UnitOfMeasure,
		MinStockLevel:       p.MinStockLevel,
		DefaultSellingPrice: p.DefaultSellingPrice,
		LotSequence:         p.LotSequence,
		IsActive:            p.IsActive,
	}
	m.setAggregate(p.BaseAggregateRoot)
	return m
}

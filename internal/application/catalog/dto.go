package catalog

import (
	"time"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCategoryRequest represents a request to create a product category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateProductRequest represents a request to create a new product. The
// code is derived from the name when omitted.
type CreateProductRequest struct {
	CategoryID          uuid.UUID       `json:"category_id" binding:"required"`
	Code                string          `json:"code" binding:"omitempty,max=50"`
	Name                string          `json:"name" binding:"required,min=1,max=200"`
	Description         string          `json:"description" binding:"max=2000"`
	UnitOfMeasure       string          `json:"unit_of_measure" binding:"required,min=1,max=20"`
	MinStockLevel       decimal.Decimal `json:"min_stock_level"`
	DefaultSellingPrice decimal.Decimal `json:"default_selling_price"`
}

// UpdateProductRequest represents a request to update a product. Omitted
// fields keep their current value; the code cannot change.
type UpdateProductRequest struct {
	CategoryID          *uuid.UUID       `json:"category_id"`
	Name                *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description         *string          `json:"description" binding:"omitempty,max=2000"`
	UnitOfMeasure       *string          `json:"unit_of_measure" binding:"omitempty,min=1,max=20"`
	MinStockLevel       *decimal.Decimal `json:"min_stock_level"`
	DefaultSellingPrice *decimal.Decimal `json:"default_selling_price"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Search     string     `form:"search"`
	CategoryID *uuid.UUID `form:"category_id"`
	ActiveOnly *bool      `form:"active_only"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product with its derived stock state
type ProductResponse struct {
	ID                  uuid.UUID           `json:"id"`
	CategoryID          uuid.UUID           `json:"category_id"`
	Code                string              `json:"code"`
	Name                string              `json:"name"`
	Description         string              `json:"description"`
	UnitOfMeasure       string              `json:"unit_of_measure"`
	MinStockLevel       decimal.Decimal     `json:"min_stock_level"`
	DefaultSellingPrice decimal.Decimal     `json:"default_selling_price"`
	IsActive            bool                `json:"is_active"`
	StockView           inventory.StockView `json:"stock_view"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
	Version             int                 `json:"version"`
}

// ToCategoryResponse converts a domain Category
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}

// ToProductResponse converts a domain Product together with its stock view
func ToProductResponse(p *catalog.Product, view inventory.StockView) ProductResponse {
	return ProductResponse{
		ID:                  p.ID,
		CategoryID:          p.CategoryID,
		Code:                p.Code,
		Name:                p.Name,
		Description:         p.Description,
		UnitOfMeasure:       p.UnitOfMeasure,
		MinStockLevel:       p.MinStockLevel,
		DefaultSellingPrice: p.DefaultSellingPrice,
		IsActive:            p.IsActive,
		StockView:           view,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
		Version:             p.GetVersion(),
	}
}

func (r UpdateProductRequest) applyTo(p *catalog.Product) catalog.ProductInput {
	in := catalog.ProductInput{
		CategoryID:          p.CategoryID,
		Code:                p.Code,
		Name:                p.Name,
		Description:         p.Description,
		UnitOfMeasure:       p.UnitOfMeasure,
		MinStockLevel:       p.MinStockLevel,
		DefaultSellingPrice: p.DefaultSellingPrice,
	}
	if r.CategoryID != nil {
		in.CategoryID = *r.CategoryID
	}
	if r.Name != nil {
		in.Name = *r.Name
	}
	if r.Description != nil {
		in.Description = *r.Description
	}
	if r.UnitOfMeasure != nil {
		in.UnitOfMeasure = *r.UnitOfMeasure
	}
	if r.MinStockLevel != nil {
		in.MinStockLevel = *r.MinStockLevel
	}
	if r.DefaultSellingPrice != nil {
		in.DefaultSellingPrice = *r.DefaultSellingPrice
	}
	return in
}

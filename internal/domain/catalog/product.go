package catalog

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents an item the business buys and sells. Its stock is held
// in stock lots; the product itself stores no quantity.
type Product struct {
	shared.BaseAggregateRoot
	CategoryID          uuid.UUID
	Code                string
	Name                string
	Description         string
	UnitOfMeasure       string
	MinStockLevel       decimal.Decimal
	DefaultSellingPrice decimal.Decimal
	// LotSequence counts the stock lots ever created for this product.
	LotSequence int64
	IsActive    bool
}

// ProductInput carries the editable product attributes
type ProductInput struct {
	CategoryID          uuid.UUID
	Code                string
	Name                string
	Description         string
	UnitOfMeasure       string
	MinStockLevel       decimal.Decimal
	DefaultSellingPrice decimal.Decimal
}

// NewProduct creates a new active product. When no code is given one is
// derived from the name.
func NewProduct(in ProductInput) (*Product, error) {
	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		IsActive:          true,
	}
	if strings.TrimSpace(in.Code) == "" {
		in.Code = GenerateProductCode(in.Name, p.ID)
	}
	if err := validateProductCode(in.Code); err != nil {
		return nil, err
	}
	p.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	if err := p.apply(in); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the editable attributes. The code is immutable because
// batch numbers are derived from it.
func (p *Product) Update(in ProductInput) error {
	if err := p.apply(in); err != nil {
		return err
	}
	p.Touch()
	return nil
}

func (p *Product) apply(in ProductInput) error {
	name := strings.TrimSpace(in.Name)
	if err := validateProductName(name); err != nil {
		return err
	}
	unit := strings.TrimSpace(in.UnitOfMeasure)
	if err := validateUnit(unit); err != nil {
		return err
	}
	if in.CategoryID == uuid.Nil {
		return shared.NewValidationError("INVALID_CATEGORY", "Product category is required")
	}
	if in.MinStockLevel.IsNegative() {
		return shared.NewValidationError("INVALID_MIN_STOCK", "Minimum stock level cannot be negative")
	}
	if in.DefaultSellingPrice.IsNegative() {
		return shared.NewValidationError("INVALID_PRICE", "Default selling price cannot be negative")
	}
	p.CategoryID = in.CategoryID
	p.Name = name
	p.Description = strings.TrimSpace(in.Description)
	p.UnitOfMeasure = unit
	p.MinStockLevel = in.MinStockLevel
	p.DefaultSellingPrice = in.DefaultSellingPrice
	return nil
}

// NextLotSequence reserves the next lot sequence number. Callers must hold
// the product lock and persist the product in the same transaction as the
// lot that uses the number.
func (p *Product) NextLotSequence() int64 {
	p.LotSequence++
	p.Touch()
	return p.LotSequence
}

// Deactivate hides the product from new purchases and sales. Existing lots
// and history are kept.
func (p *Product) Deactivate() {
	p.IsActive = false
	p.Touch()
}

// GenerateProductCode derives a SKU from a product name and id
func GenerateProductCode(name string, id uuid.UUID) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if b.Len() >= 8 {
			break
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		b.WriteString("P")
	}
	return fmt.Sprintf("%s-%s", b.String(), strings.ToUpper(id.String()[:4]))
}

func validateProductCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewValidationError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewValidationError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewValidationError("INVALID_CODE", "Product code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewValidationError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validateUnit(unit string) error {
	if unit == "" {
		return shared.NewValidationError("INVALID_UNIT", "Unit of measure cannot be empty")
	}
	if len(unit) > 20 {
		return shared.NewValidationError("INVALID_UNIT", "Unit of measure cannot exceed 20 characters")
	}
	return nil
}

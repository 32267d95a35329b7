package inventory

import (
	"context"
	"errors"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger holds the stock lot operations shared by manual stock entry, goods
// receipt and sales. Its methods run inside the caller's transaction and
// expect the caller to hold the product lock.
type Ledger struct {
	markup decimal.Decimal
}

// NewLedger creates a Ledger that prices new lots at cost plus markup
// unless a unit price is given
func NewLedger(markup decimal.Decimal) *Ledger {
	return &Ledger{markup: markup}
}

// AddLot creates a lot for spec.ProductID. The product row is locked, its
// lot sequence advanced and the batch number derived from it. Inactive
// products only accept lots received against a purchase order.
func (l *Ledger) AddLot(ctx context.Context, repos uow.Repositories, spec inventory.LotSpec) (*inventory.StockLot, *catalog.Product, error) {
	if err := spec.Validate(); err != nil {
		return nil, nil, err
	}
	product, err := repos.Products().FindByIDForUpdate(ctx, spec.ProductID)
	if err != nil {
		return nil, nil, err
	}
	// goods already on order are taken in after the product is retired
	if !product.IsActive && spec.POID == nil {
		return nil, nil, shared.NewValidationError("PRODUCT_INACTIVE", "Cannot add stock to an inactive product").
			WithDetail("product_id", product.ID.String())
	}

	seq := product.NextLotSequence()
	batch := inventory.FormatBatchNumber(product.Code, shared.Now(), seq)
	lot, err := inventory.NewStockLot(spec, batch, l.markup)
	if err != nil {
		return nil, nil, err
	}
	if err := repos.Products().Save(ctx, product); err != nil {
		return nil, nil, err
	}
	if err := repos.StockLots().Create(ctx, lot); err != nil {
		return nil, nil, err
	}
	return lot, product, nil
}

// Deplete draws quantity from the product's lots oldest first. Nothing is
// written when stock is short.
func (l *Ledger) Deplete(ctx context.Context, repos uow.Repositories, product *catalog.Product, quantity decimal.Decimal) (*inventory.DepletionPlan, inventory.StockView, error) {
	lots, err := repos.StockLots().FindActiveByProducts(ctx, []uuid.UUID{product.ID})
	if err != nil {
		return nil, inventory.StockView{}, err
	}
	plan, err := inventory.PlanFIFODepletion(product.ID, lots, quantity)
	if err != nil {
		var de *shared.DomainError
		if errors.As(err, &de) && de.Kind == shared.KindInsufficientStock {
			return nil, inventory.StockView{}, de.WithDetail("product_id", product.ID.String()).WithDetail("product_name", product.Name)
		}
		return nil, inventory.StockView{}, err
	}
	changed, err := inventory.ApplyDepletion(lots, plan)
	if err != nil {
		return nil, inventory.StockView{}, err
	}
	for _, lot := range changed {
		if err := repos.StockLots().Save(ctx, lot); err != nil {
			return nil, inventory.StockView{}, err
		}
	}
	return plan, inventory.ComputeStockView(lots, product.MinStockLevel, product.DefaultSellingPrice), nil
}

// StockViews computes the derived stock state of each product from its
// active lots
func StockViews(ctx context.Context, repos uow.Repositories, products []catalog.Product) (map[uuid.UUID]inventory.StockView, error) {
	ids := make([]uuid.UUID, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	lots, err := repos.StockLots().FindActiveByProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	byProduct := make(map[uuid.UUID][]inventory.StockLot, len(products))
	for _, lot := range lots {
		byProduct[lot.ProductID] = append(byProduct[lot.ProductID], lot)
	}
	views := make(map[uuid.UUID]inventory.StockView, len(products))
	for _, p := range products {
		views[p.ID] = inventory.ComputeStockView(byProduct[p.ID], p.MinStockLevel, p.DefaultSellingPrice)
	}
	return views, nil
}

// Package catalog implements product and category management. Product
// responses carry the stock view computed from the product's active lots.
package catalog

import (
	"context"
	"strings"

	appinventory "github.com/erp/backoffice/internal/application/inventory"
	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ProductService handles product operations
type ProductService struct {
	runner *uow.Runner
	policy *identity.Policy
	logger *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(runner *uow.Runner, policy *identity.Policy, logger *zap.Logger) *ProductService {
	return &ProductService{runner: runner, policy: policy, logger: logger}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, actor identity.Actor, req CreateProductRequest) (resp *ProductResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "create_product")
	defer telemetry.Finish(span, &err)

	if err := s.policy.Authorize(actor, identity.ActionProductManage); err != nil {
		return nil, err
	}
	product, err := catalog.NewProduct(catalog.ProductInput{
		CategoryID:          req.CategoryID,
		Code:                req.Code,
		Name:                req.Name,
		Description:         req.Description,
		UnitOfMeasure:       req.UnitOfMeasure,
		MinStockLevel:       req.MinStockLevel,
		DefaultSellingPrice: req.DefaultSellingPrice,
	})
	if err != nil {
		return nil, err
	}

	err = s.runner.Write(ctx, nil, func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
		if _, err := repos.Categories().FindByID(ctx, product.CategoryID); err != nil {
			return nil, err
		}
		exists, err := repos.Products().ExistsByCode(ctx, product.Code)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewKindError(shared.KindConflict, "PRODUCT_CODE_EXISTS", "Product code already exists").
				WithDetail("code", product.Code)
		}
		return nil, repos.Products().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("code", product.Code),
		zap.String("user_id", actor.UserID.String()),
	)
	r := ToProductResponse(product, inventory.ComputeStockView(nil, product.MinStockLevel, product.DefaultSellingPrice))
	return &r, nil
}

// GetByID returns a product with its current stock view
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	var resp ProductResponse
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		product, err := repos.Products().FindByID(ctx, id)
		if err != nil {
			return err
		}
		views, err := appinventory.StockViews(ctx, repos, []catalog.Product{*product})
		if err != nil {
			return err
		}
		resp = ToProductResponse(product, views[product.ID])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns a page of products, each with its stock view
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) (*shared.Paginated[ProductResponse], error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   strings.TrimSpace(filter.Search),
	}.Normalize()
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "name"
		if domainFilter.OrderDir == "" {
			domainFilter.OrderDir = "asc"
		}
	}
	if filter.CategoryID != nil {
		domainFilter.Filters["category_id"] = *filter.CategoryID
	}
	if filter.ActiveOnly != nil && *filter.ActiveOnly {
		domainFilter.Filters["is_active"] = true
	}

	var page *shared.Paginated[ProductResponse]
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		products, err := repos.Products().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		total, err := repos.Products().Count(ctx, domainFilter)
		if err != nil {
			return err
		}
		views, err := appinventory.StockViews(ctx, repos, products)
		if err != nil {
			return err
		}
		items := make([]ProductResponse, len(products))
		for i := range products {
			items[i] = ToProductResponse(&products[i], views[products[i].ID])
		}
		p := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
		page = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Update changes a product's editable attributes
func (s *ProductService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	if err := s.policy.Authorize(actor, identity.ActionProductManage); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(ctx context.Context, repos uow.Repositories, p *catalog.Product) error {
		in := req.applyTo(p)
		if in.CategoryID != p.CategoryID {
			if _, err := repos.Categories().FindByID(ctx, in.CategoryID); err != nil {
				return err
			}
		}
		return p.Update(in)
	})
}

// Deactivate hides a product from purchasing and sales. Its lots and
// history remain.
func (s *ProductService) Deactivate(ctx context.Context, actor identity.Actor, id uuid.UUID) (*ProductResponse, error) {
	if err := s.policy.Authorize(actor, identity.ActionProductDelete); err != nil {
		return nil, err
	}
	resp, err := s.mutate(ctx, id, func(_ context.Context, _ uow.Repositories, p *catalog.Product) error {
		p.Deactivate()
		return nil
	})
	if err == nil {
		s.logger.Info("Product deactivated", zap.String("product_id", id.String()), zap.String("user_id", actor.UserID.String()))
	}
	return resp, err
}

func (s *ProductService) mutate(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, repos uow.Repositories, p *catalog.Product) error) (resp *ProductResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "update_product", attribute.String("product_id", id.String()))
	defer telemetry.Finish(span, &err)

	err = s.runner.Write(ctx, []string{shared.LockKey(shared.LockProduct, id)},
		func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
			product, err := repos.Products().FindByIDForUpdate(ctx, id)
			if err != nil {
				return nil, err
			}
			if err := fn(ctx, repos, product); err != nil {
				return nil, err
			}
			if err := repos.Products().Save(ctx, product); err != nil {
				return nil, err
			}
			views, err := appinventory.StockViews(ctx, repos, []catalog.Product{*product})
			if err != nil {
				return nil, err
			}
			r := ToProductResponse(product, views[product.ID])
			resp = &r
			return nil, nil
		})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

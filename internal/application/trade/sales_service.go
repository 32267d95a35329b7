package trade

import (
	"context"
	"fmt"
	"strings"

	appinventory "github.com/erp/backoffice/internal/application/inventory"
	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const salesSequenceKey = "sales:sequence"

// SalesService records sales against FIFO stock
type SalesService struct {
	runner *uow.Runner
	policy *identity.Policy
	ledger *appinventory.Ledger
	logger *zap.Logger
}

// NewSalesService creates a new SalesService
func NewSalesService(runner *uow.Runner, policy *identity.Policy, ledger *appinventory.Ledger, logger *zap.Logger) *SalesService {
	return &SalesService{runner: runner, policy: policy, ledger: ledger, logger: logger}
}

// Create records a sale. Lines for the same product are merged, each
// product is priced at its current selling price and depleted oldest lot
// first. If any product is short the whole sale fails and no stock moves.
func (s *SalesService) Create(ctx context.Context, actor identity.Actor, req CreateSaleRequest) (resp *SaleResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "trade", "create_sale", attribute.Int("lines", len(req.Items)))
	defer telemetry.Finish(span, &err)

	if err := s.policy.Authorize(actor, identity.ActionSaleCreate); err != nil {
		return nil, err
	}
	if req.AmountPaid.IsNegative() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Amount paid cannot be negative")
	}
	order, ids, err := mergeSaleItems(req.Items)
	if err != nil {
		return nil, err
	}

	keys := append(productLockKeys(ids), salesSequenceKey)
	var sale *trade.SalesOrder
	err = s.runner.Write(ctx, keys, func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
		lines := make([]trade.SaleLine, 0, len(order))
		var events []shared.DomainEvent
		for _, item := range order {
			product, err := repos.Products().FindByIDForUpdate(ctx, item.ProductID)
			if err != nil {
				return nil, err
			}
			if !product.IsActive {
				return nil, shared.NewValidationError("PRODUCT_INACTIVE", "Cannot sell an inactive product").
					WithDetail("product_id", product.ID.String())
			}
			views, err := appinventory.StockViews(ctx, repos, []catalog.Product{*product})
			if err != nil {
				return nil, err
			}
			price := views[product.ID].CurrentSellingPrice
			plan, view, err := s.ledger.Deplete(ctx, repos, product, item.Quantity)
			if err != nil {
				return nil, err
			}
			lines = append(lines, trade.SaleLine{
				ProductID:   product.ID,
				ProductName: product.Name,
				UnitPrice:   price,
				Plan:        plan,
			})
			events = append(events, inventory.NewStockDepletedEvent(plan, view))
		}

		now := shared.Now()
		last, err := repos.SalesOrders().LastNumber(ctx, fmt.Sprintf("%s-%d-", trade.SalesNumberPrefix, now.Year()))
		if err != nil {
			return nil, err
		}
		sale, err = trade.NewSalesOrder(trade.NextNumber(trade.SalesNumberPrefix, now.Year(), last),
			actor.UserID, actor.Name, req.CustomerName, lines, req.AmountPaid)
		if err != nil {
			return nil, err
		}
		if err := repos.SalesOrders().Create(ctx, sale); err != nil {
			return nil, err
		}
		return append(shared.CollectEvents(sale), events...), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Sale recorded",
		zap.String("order_id", sale.ID.String()),
		zap.String("order_number", sale.OrderNumber),
		zap.String("total", sale.TotalAmount.String()),
		zap.String("payment_status", string(sale.PaymentStatus)),
		zap.String("user_id", actor.UserID.String()),
	)
	r := ToSaleResponse(sale)
	return &r, nil
}

// mergeSaleItems sums quantities per product, keeping first-seen order,
// and returns the distinct product IDs
func mergeSaleItems(items []SaleItemRequest) ([]SaleItemRequest, []uuid.UUID, error) {
	if len(items) == 0 {
		return nil, nil, shared.NewValidationError("NO_ITEMS", "Order must have at least one item")
	}
	index := make(map[uuid.UUID]int, len(items))
	merged := make([]SaleItemRequest, 0, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for i, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, nil, shared.NewValidationError("INVALID_PRODUCT", fmt.Sprintf("Item %d: product is required", i+1))
		}
		if !item.Quantity.IsPositive() {
			return nil, nil, shared.NewValidationError("INVALID_QUANTITY", fmt.Sprintf("Item %d: quantity must be greater than zero", i+1))
		}
		if at, ok := index[item.ProductID]; ok {
			merged[at].Quantity = merged[at].Quantity.Add(item.Quantity)
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
		ids = append(ids, item.ProductID)
	}
	return merged, ids, nil
}

// GetByID returns a sales order
func (s *SalesService) GetByID(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	var sale *trade.SalesOrder
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		sale, err = repos.SalesOrders().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	r := ToSaleResponse(sale)
	return &r, nil
}

// List returns a page of sales orders, newest first by default
func (s *SalesService) List(ctx context.Context, filter SaleListFilter) (*shared.Paginated[SaleResponse], error) {
	from, to := shared.InclusiveRange(filter.From, filter.To)
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   strings.TrimSpace(filter.Search),
		From:     from,
		To:       to,
	}.Normalize()
	if filter.PaymentStatus != "" {
		status := trade.SalesPaymentStatus(filter.PaymentStatus)
		if !status.IsValid() {
			return nil, shared.NewValidationError("INVALID_PAYMENT_STATUS", fmt.Sprintf("Unknown payment status: %s", filter.PaymentStatus))
		}
		domainFilter.Filters["payment_status"] = string(status)
	}

	var page shared.Paginated[SaleResponse]
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		orders, err := repos.SalesOrders().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		total, err := repos.SalesOrders().Count(ctx, domainFilter)
		if err != nil {
			return err
		}
		items := make([]SaleResponse, len(orders))
		for i := range orders {
			items[i] = ToSaleResponse(&orders[i])
		}
		page = shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}


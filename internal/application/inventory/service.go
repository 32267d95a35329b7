// Package inventory implements the stock lot ledger use cases: adding lots,
// FIFO depletion, batch queries and lot reconciliation.
package inventory

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// InventoryService handles stock lot operations
type InventoryService struct {
	runner       *uow.Runner
	policy       *identity.Policy
	ledger       *Ledger
	logger       *zap.Logger
	expiringDays int
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(runner *uow.Runner, policy *identity.Policy, ledger *Ledger, expiringDays int, logger *zap.Logger) *InventoryService {
	if expiringDays <= 0 {
		expiringDays = 30
	}
	return &InventoryService{runner: runner, policy: policy, ledger: ledger, expiringDays: expiringDays, logger: logger}
}

// AddLot records a manually entered lot for a product
func (s *InventoryService) AddLot(ctx context.Context, actor identity.Actor, productID uuid.UUID, req AddStockRequest) (resp *LotResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "add_lot", attribute.String("product_id", productID.String()))
	defer telemetry.Finish(span, &err)

	if err := s.policy.Authorize(actor, identity.ActionStockAdd); err != nil {
		return nil, err
	}
	spec := inventory.LotSpec{
		ProductID:  productID,
		UnitCost:   req.UnitCost,
		Quantity:   req.Quantity,
		UnitPrice:  req.UnitPrice,
		ExpiryDate: req.ExpiryDate,
		Notes:      req.Notes,
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	var lot *inventory.StockLot
	err = s.runner.Write(ctx, []string{shared.LockKey(shared.LockProduct, productID)},
		func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
			created, _, err := s.ledger.AddLot(ctx, repos, spec)
			if err != nil {
				return nil, err
			}
			lot = created
			return shared.CollectEvents(created), nil
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stock lot added",
		zap.String("product_id", productID.String()),
		zap.String("batch_number", lot.BatchNumber),
		zap.String("quantity", lot.Quantity.String()),
		zap.String("user_id", actor.UserID.String()),
	)
	r := ToLotResponse(lot, shared.Now())
	return &r, nil
}

// DepleteForSale draws quantity from a product's lots oldest first. The
// whole request fails with InsufficientStock when stock is short.
func (s *InventoryService) DepleteForSale(ctx context.Context, actor identity.Actor, productID uuid.UUID, req DepleteRequest) (resp *DepletionResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "deplete", attribute.String("product_id", productID.String()))
	defer telemetry.Finish(span, &err)

	if err := s.policy.Authorize(actor, identity.ActionSaleCreate); err != nil {
		return nil, err
	}

	err = s.runner.Write(ctx, []string{shared.LockKey(shared.LockProduct, productID)},
		func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
			product, err := repos.Products().FindByIDForUpdate(ctx, productID)
			if err != nil {
				return nil, err
			}
			plan, view, err := s.ledger.Deplete(ctx, repos, product, req.Quantity)
			if err != nil {
				return nil, err
			}
			resp = &DepletionResponse{
				ProductID:  productID,
				Quantity:   plan.Requested,
				TotalCost:  plan.TotalCost,
				Deductions: plan.Deductions,
				StockView:  view,
			}
			return []shared.DomainEvent{inventory.NewStockDepletedEvent(plan, view)}, nil
		})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// QueryBatches lists a product's lots filtered by status
func (s *InventoryService) QueryBatches(ctx context.Context, productID uuid.UUID, status string) ([]LotResponse, error) {
	st, err := inventory.ParseBatchStatus(status)
	if err != nil {
		return nil, err
	}
	var lots []inventory.StockLot
	err = s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		if _, err := repos.Products().FindByID(ctx, productID); err != nil {
			return err
		}
		lots, err = repos.StockLots().FindByProduct(ctx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	now := shared.Now()
	return ToLotResponses(inventory.FilterByStatus(lots, st, now), now), nil
}

// Search looks lots up across products
func (s *InventoryService) Search(ctx context.Context, req SearchRequest) ([]LotResponse, error) {
	search := inventory.BatchSearch{
		BatchNumber:  req.BatchNumber,
		POID:         req.POID,
		ProductName:  req.ProductName,
		ExpiryBefore: req.ExpiryBefore,
		ExpiryAfter:  req.ExpiryAfter,
		ActiveOnly:   req.ActiveOnly,
		Limit:        req.Limit,
	}
	if search.IsEmpty() {
		return nil, shared.NewValidationError("EMPTY_SEARCH", "At least one search criterion is required")
	}
	if search.Limit <= 0 {
		search.Limit = 100
	}

	var lots []inventory.StockLot
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		lots, err = repos.StockLots().Search(ctx, search)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToLotResponses(lots, shared.Now()), nil
}

// Expiring lists active lots whose expiry falls within the next days days
func (s *InventoryService) Expiring(ctx context.Context, days int) ([]LotResponse, error) {
	if days < 0 {
		return nil, shared.NewValidationError("INVALID_DAYS", "Days must not be negative")
	}
	if days == 0 {
		days = s.expiringDays
	}
	now := shared.Now()
	until := now.Add(time.Duration(days) * 24 * time.Hour)

	var lots []inventory.StockLot
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		lots, err = repos.StockLots().FindExpiring(ctx, now, until)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToLotResponses(lots, now), nil
}

// Expired lists active lots that still hold stock past their expiry date.
// They no longer count as stock or sell, and stay on record until adjusted
// or retired.
func (s *InventoryService) Expired(ctx context.Context) ([]LotResponse, error) {
	now := shared.Now()
	var lots []inventory.StockLot
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		lots, err = repos.StockLots().FindExpired(ctx, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToLotResponses(lots, now), nil
}

// AdjustLot sets a lot's quantity after a physical count
func (s *InventoryService) AdjustLot(ctx context.Context, actor identity.Actor, lotID uuid.UUID, req AdjustLotRequest) (*LotResponse, error) {
	return s.reconcileLot(ctx, actor, lotID, "adjust", func(lot *inventory.StockLot) error {
		return lot.Adjust(req.Quantity, req.Reason)
	})
}

// RetireLot deactivates a lot, keeping its quantity on record
func (s *InventoryService) RetireLot(ctx context.Context, actor identity.Actor, lotID uuid.UUID, req RetireLotRequest) (*LotResponse, error) {
	return s.reconcileLot(ctx, actor, lotID, "retire", func(lot *inventory.StockLot) error {
		return lot.Retire(req.Reason)
	})
}

func (s *InventoryService) reconcileLot(ctx context.Context, actor identity.Actor, lotID uuid.UUID, op string, mutate func(*inventory.StockLot) error) (resp *LotResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", op+"_lot", attribute.String("lot_id", lotID.String()))
	defer telemetry.Finish(span, &err)

	if err := s.policy.Authorize(actor, identity.ActionStockReconcile); err != nil {
		return nil, err
	}

	// The product never changes for a lot, so it is safe to read it before locking.
	var productID uuid.UUID
	if err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		lot, err := repos.StockLots().FindByID(ctx, lotID)
		if err != nil {
			return err
		}
		productID = lot.ProductID
		return nil
	}); err != nil {
		return nil, err
	}

	var lot *inventory.StockLot
	err = s.runner.Write(ctx, []string{shared.LockKey(shared.LockProduct, productID)},
		func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
			var err error
			if lot, err = repos.StockLots().FindByIDForUpdate(ctx, lotID); err != nil {
				return nil, err
			}
			if err := mutate(lot); err != nil {
				return nil, err
			}
			if err := repos.StockLots().Save(ctx, lot); err != nil {
				return nil, err
			}
			return shared.CollectEvents(lot), nil
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stock lot reconciled",
		zap.String("operation", op),
		zap.String("batch_number", lot.BatchNumber),
		zap.String("quantity", lot.Quantity.String()),
		zap.Bool("is_active", lot.IsActive),
		zap.String("user_id", actor.UserID.String()),
	)
	r := ToLotResponse(lot, shared.Now())
	return &r, nil
}

// Package partner implements supplier management, the supplier statement
// and reconciliation of the supplier credit ledger.
package partner

import (
	"context"
	"strings"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SupplierService handles supplier operations
type SupplierService struct {
	runner *uow.Runner
	policy *identity.Policy
	logger *zap.Logger
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(runner *uow.Runner, policy *identity.Policy, logger *zap.Logger) *SupplierService {
	return &SupplierService{runner: runner, policy: policy, logger: logger}
}

// Create creates a new supplier with a zero balance
func (s *SupplierService) Create(ctx context.Context, actor identity.Actor, req CreateSupplierRequest) (*SupplierResponse, error) {
	if err := s.policy.Authorize(actor, identity.ActionSupplierManage); err != nil {
		return nil, err
	}
	terms, err := partner.ParsePaymentTerms(req.PaymentTerms)
	if err != nil {
		return nil, err
	}
	supplier, err := partner.NewSupplier(partner.SupplierInput{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		PhoneNumber:   req.PhoneNumber,
		Email:         req.Email,
		Address:       req.Address,
		TaxID:         req.TaxID,
		CreditLimit:   req.CreditLimit,
		PaymentTerms:  terms,
	})
	if err != nil {
		return nil, err
	}

	if err := s.runner.Write(ctx, nil, func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
		return nil, repos.Suppliers().Create(ctx, supplier)
	}); err != nil {
		return nil, err
	}

	s.logger.Info("Supplier created",
		zap.String("supplier_id", supplier.ID.String()),
		zap.String("name", supplier.Name),
		zap.String("credit_limit", supplier.CreditLimit.String()),
	)
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// GetByID returns a supplier with its credit position
func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	var resp SupplierResponse
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		supplier, err := repos.Suppliers().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToSupplierResponse(supplier)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns a page of suppliers
func (s *SupplierService) List(ctx context.Context, filter SupplierListFilter) (*shared.Paginated[SupplierResponse], error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   strings.TrimSpace(filter.Search),
	}.Normalize()
	if domainFilter.OrderBy == "" && domainFilter.OrderDir == "" {
		domainFilter.OrderDir = "asc"
	}
	if filter.ActiveOnly {
		domainFilter.Filters["is_active"] = true
	}

	var page shared.Paginated[SupplierResponse]
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		suppliers, err := repos.Suppliers().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		total, err := repos.Suppliers().Count(ctx, domainFilter)
		if err != nil {
			return err
		}
		items := make([]SupplierResponse, len(suppliers))
		for i := range suppliers {
			items[i] = ToSupplierResponse(&suppliers[i])
		}
		page = shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// Update changes a supplier's attributes. The balance is only ever moved
// by purchase orders, payments and reconciliation.
func (s *SupplierService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	if err := s.policy.Authorize(actor, identity.ActionSupplierManage); err != nil {
		return nil, err
	}
	if req.PaymentTerms != nil {
		if _, err := partner.ParsePaymentTerms(*req.PaymentTerms); err != nil {
			return nil, err
		}
	}
	return s.mutate(ctx, id, "update", func(supplier *partner.Supplier) error {
		if err := supplier.Update(req.applyTo(supplier)); err != nil {
			return err
		}
		if req.IsActive != nil {
			if *req.IsActive {
				supplier.Activate()
			} else {
				supplier.Deactivate()
			}
		}
		return nil
	})
}

// Deactivate excludes a supplier from new purchase orders
func (s *SupplierService) Deactivate(ctx context.Context, actor identity.Actor, id uuid.UUID) (*SupplierResponse, error) {
	if err := s.policy.Authorize(actor, identity.ActionSupplierDelete); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, "deactivate", func(supplier *partner.Supplier) error {
		supplier.Deactivate()
		return nil
	})
}

// ReconcileBalance recomputes the balance from the supplier's committed
// purchase orders and stores it, reporting the drift found
func (s *SupplierService) ReconcileBalance(ctx context.Context, actor identity.Actor, id uuid.UUID) (resp *ReconcileResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "partner", "reconcile_balance", attribute.String("supplier_id", id.String()))
	defer telemetry.Finish(span, &err)

	if err := s.policy.Authorize(actor, identity.ActionSupplierReconcile); err != nil {
		return nil, err
	}

	err = s.runner.Write(ctx, []string{shared.LockKey(shared.LockSupplier, id)},
		func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
			supplier, err := repos.Suppliers().FindByIDForUpdate(ctx, id)
			if err != nil {
				return nil, err
			}
			recomputed, err := repos.PurchaseOrders().SumExposure(ctx, id)
			if err != nil {
				return nil, err
			}
			previous := supplier.CurrentBalance
			drift := supplier.Reconcile(recomputed)
			if !drift.IsZero() {
				if err := repos.Suppliers().Save(ctx, supplier); err != nil {
					return nil, err
				}
			}
			resp = &ReconcileResponse{
				SupplierID:        id,
				PreviousBalance:   previous,
				RecomputedBalance: recomputed,
				Drift:             drift,
			}
			return shared.CollectEvents(supplier), nil
		})
	if err != nil {
		return nil, err
	}

	if !resp.Drift.IsZero() {
		s.logger.Warn("Supplier balance drift corrected",
			zap.String("supplier_id", id.String()),
			zap.String("previous", resp.PreviousBalance.String()),
			zap.String("recomputed", resp.RecomputedBalance.String()),
		)
	}
	return resp, nil
}

func (s *SupplierService) mutate(ctx context.Context, id uuid.UUID, op string, fn func(*partner.Supplier) error) (resp *SupplierResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "partner", op+"_supplier", attribute.String("supplier_id", id.String()))
	defer telemetry.Finish(span, &err)

	err = s.runner.Write(ctx, []string{shared.LockKey(shared.LockSupplier, id)},
		func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
			supplier, err := repos.Suppliers().FindByIDForUpdate(ctx, id)
			if err != nil {
				return nil, err
			}
			if err := fn(supplier); err != nil {
				return nil, err
			}
			if err := repos.Suppliers().Save(ctx, supplier); err != nil {
				return nil, err
			}
			r := ToSupplierResponse(supplier)
			resp = &r
			return nil, nil
		})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Supplier changed", zap.String("operation", op), zap.String("supplier_id", id.String()))
	return resp, nil
}

// Package report assembles the owner dashboard and the daily sales summary
// from the ledgers.
package report

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/report"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const recentOrdersLimit = 10

// ReportService computes read-only business summaries
type ReportService struct {
	runner *uow.Runner
	policy *identity.Policy
	logger *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(runner *uow.Runner, policy *identity.Policy, logger *zap.Logger) *ReportService {
	return &ReportService{runner: runner, policy: policy, logger: logger}
}

// DashboardRequest bounds the financial section of the dashboard. Both
// bounds are optional.
type DashboardRequest struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// Dashboard builds the owner overview. Sections are read concurrently, each
// in its own read transaction, so figures from different sections may
// straddle a concurrent write.
func (s *ReportService) Dashboard(ctx context.Context, actor identity.Actor, req DashboardRequest) (_ *report.Dashboard, err error) {
	if err := s.policy.Authorize(actor, identity.ActionReportDashboard); err != nil {
		return nil, err
	}
	from, to := shared.InclusiveRange(req.From, req.To)
	if from != nil && to != nil && from.After(*to) {
		return nil, shared.NewValidationError("INVALID_DATE_RANGE", "from must not be after to")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "report", "dashboard")
	defer telemetry.Finish(span, &err)

	dash := &report.Dashboard{From: from, To: to}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var (
			sales    *trade.SalesSummary
			expenses decimal.Decimal
		)
		err := s.runner.Read(gctx, func(ctx context.Context, repos uow.Repositories) error {
			var err error
			if sales, err = repos.SalesOrders().Summarize(ctx, from, to); err != nil {
				return err
			}
			expenses, err = repos.ExpenseRecords().SumAmount(ctx, from, to)
			return err
		})
		if err != nil {
			return err
		}
		dash.Financials = report.NewFinancials(sales, expenses)
		return nil
	})

	g.Go(func() error {
		var (
			products []catalog.Product
			lots     []inventory.StockLot
		)
		err := s.runner.Read(gctx, func(ctx context.Context, repos uow.Repositories) error {
			var err error
			if products, err = activeProducts(ctx, repos); err != nil {
				return err
			}
			ids := make([]uuid.UUID, len(products))
			for i := range products {
				ids[i] = products[i].ID
			}
			lots, err = repos.StockLots().FindActiveByProducts(ctx, ids)
			return err
		})
		if err != nil {
			return err
		}
		dash.Inventory = report.SummarizeInventory(products, lots)
		return nil
	})

	g.Go(func() error {
		var stats *trade.PurchaseOrderStats
		err := s.runner.Read(gctx, func(ctx context.Context, repos uow.Repositories) error {
			var err error
			stats, err = repos.PurchaseOrders().Stats(ctx, shared.Now())
			return err
		})
		if err != nil {
			return err
		}
		for _, st := range trade.AllPurchaseOrderStatuses() {
			if _, ok := stats.ByStatus[st]; !ok {
				stats.ByStatus[st] = 0
			}
		}
		dash.Purchasing = report.NewPurchasing(stats)
		return nil
	})

	g.Go(func() error {
		var orders []trade.SalesOrder
		err := s.runner.Read(gctx, func(ctx context.Context, repos uow.Repositories) error {
			var err error
			orders, err = repos.SalesOrders().FindRecent(ctx, recentOrdersLimit)
			return err
		})
		if err != nil {
			return err
		}
		dash.RecentOrders = report.NewRecentOrders(orders)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	dash.GeneratedAt = shared.Now()

	s.logger.Debug("Dashboard generated",
		zap.String("user_id", actor.UserID.String()),
		zap.Int64("low_stock", dash.Inventory.LowStockCount),
	)
	return dash, nil
}

// Daily summarizes today's sales by payment status
func (s *ReportService) Daily(ctx context.Context, actor identity.Actor) (*report.DailySales, error) {
	if err := s.policy.Authorize(actor, identity.ActionReportDaily); err != nil {
		return nil, err
	}
	now := shared.Now()
	start, end := report.DayBounds(now)

	var summary *trade.SalesSummary
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		summary, err = repos.SalesOrders().Summarize(ctx, &start, &end)
		return err
	})
	if err != nil {
		return nil, err
	}
	daily := report.NewDailySales(now, summary)
	return &daily, nil
}

func activeProducts(ctx context.Context, repos uow.Repositories) ([]catalog.Product, error) {
	filter := shared.Filter{
		PageSize: shared.MaxPageSize,
		OrderBy:  "code",
		OrderDir: "asc",
		Filters:  map[string]interface{}{"is_active": true},
	}
	var out []catalog.Product
	for page := 1; ; page++ {
		filter.Page = page
		products, err := repos.Products().FindAll(ctx, filter)
		if err != nil {
			return nil, err
		}
		out = append(out, products...)
		if len(products) < shared.MaxPageSize {
			return out, nil
		}
	}
}

package report

import (
	"context"
	"testing"
	"time"

	appfinance "github.com/erp/backoffice/internal/application/finance"
	appinventory "github.com/erp/backoffice/internal/application/inventory"
	apptrade "github.com/erp/backoffice/internal/application/trade"
	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type reportFixture struct {
	stack     *testutil.Stack
	reports   *ReportService
	inventory *appinventory.InventoryService
	sales     *apptrade.SalesService
	expenses  *appfinance.ExpenseService
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	stack := testutil.NewStack(t)
	policy := identity.DefaultPolicy()
	ledger := appinventory.NewLedger(decimal.NewFromFloat(0.3))
	return &reportFixture{
		stack:     stack,
		reports:   NewReportService(stack.Runner, policy, zap.NewNop()),
		inventory: appinventory.NewInventoryService(stack.Runner, policy, ledger, 30, zap.NewNop()),
		sales:     apptrade.NewSalesService(stack.Runner, policy, ledger, zap.NewNop()),
		expenses:  appfinance.NewExpenseService(stack.Runner, policy, zap.NewNop()),
	}
}

func (f *reportFixture) product(t *testing.T, code string, minStock int64, active bool) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := f.stack.Runner.Write(context.Background(), nil, func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
		category, err := catalog.NewCategory("Cat " + code)
		if err != nil {
			return nil, err
		}
		if err := repos.Categories().Save(ctx, category); err != nil {
			return nil, err
		}
		p, err := catalog.NewProduct(catalog.ProductInput{
			CategoryID: category.ID, Code: code, Name: code, UnitOfMeasure: "pcs", MinStockLevel: dec(minStock),
		})
		if err != nil {
			return nil, err
		}
		p.IsActive = active
		id = p.ID
		return nil, repos.Products().Save(ctx, p)
	})
	require.NoError(t, err)
	return id
}

// seed stocks one product, sells part of it twice and books one expense
func (f *reportFixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	rice := f.product(t, "RICE", 10, true)
	f.product(t, "SALT", 5, true)
	f.product(t, "OLD", 50, false)

	price := dec(150)
	_, err := f.inventory.AddLot(ctx, testutil.ManagerActor(), rice, appinventory.AddStockRequest{
		UnitCost: dec(100), Quantity: dec(25), UnitPrice: &price,
	})
	require.NoError(t, err)

	_, err = f.sales.Create(ctx, testutil.ManagerActor(), apptrade.CreateSaleRequest{
		Items: []apptrade.SaleItemRequest{{ProductID: rice, Quantity: dec(5)}}, AmountPaid: dec(750),
	})
	require.NoError(t, err)
	_, err = f.sales.Create(ctx, testutil.ManagerActor(), apptrade.CreateSaleRequest{
		CustomerName: "Tab",
		Items:        []apptrade.SaleItemRequest{{ProductID: rice, Quantity: dec(2)}},
	})
	require.NoError(t, err)

	rent, err := f.expenses.CreateType(ctx, testutil.BossActor(), appfinance.CreateExpenseTypeRequest{Name: "Rent"})
	require.NoError(t, err)
	_, err = f.expenses.Record(ctx, testutil.ManagerActor(), appfinance.CreateExpenseRecordRequest{TypeID: rent.ID, Amount: dec(200)})
	require.NoError(t, err)
}

func TestReportService_Dashboard(t *testing.T) {
	f := newReportFixture(t)
	f.seed(t)
	ctx := context.Background()

	dash, err := f.reports.Dashboard(ctx, testutil.BossActor(), DashboardRequest{})
	require.NoError(t, err)

	fin := dash.Financials
	assert.True(t, fin.TotalRevenue.Equal(dec(1050)), "revenue %s", fin.TotalRevenue)
	assert.True(t, fin.AmountCollected.Equal(dec(750)))
	assert.True(t, fin.CostOfGoodsSold.Equal(dec(700)))
	assert.True(t, fin.GrossProfit.Equal(dec(350)))
	assert.True(t, fin.TotalExpenses.Equal(dec(200)))
	assert.True(t, fin.NetProfit.Equal(dec(850)))

	inv := dash.Inventory
	assert.Equal(t, int64(2), inv.TotalProducts, "inactive products are left out")
	assert.Equal(t, int64(1), inv.LowStockCount)
	assert.True(t, inv.TotalQuantityInStock.Equal(dec(18)))
	assert.True(t, inv.StockValueAtCost.Equal(dec(1800)))
	assert.Equal(t, int64(1), inv.OutOfStockCount)
	require.Len(t, inv.LowStockItems, 1)
	assert.Equal(t, "SALT", inv.LowStockItems[0].Code)

	assert.Len(t, dash.Purchasing.OrdersByStatus, len(trade.AllPurchaseOrderStatuses()))
	assert.True(t, dash.Purchasing.OutstandingPayables.IsZero())

	require.Len(t, dash.RecentOrders, 2)
	assert.False(t, dash.GeneratedAt.IsZero())

	t.Run("period outside the activity", func(t *testing.T) {
		from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC)
		old, err := f.reports.Dashboard(ctx, testutil.BossActor(), DashboardRequest{From: &from, To: &to})
		require.NoError(t, err)
		assert.True(t, old.Financials.TotalRevenue.IsZero())
		assert.True(t, old.Financials.TotalExpenses.IsZero())
		assert.Equal(t, 31, old.To.Day())
		assert.Equal(t, 23, old.To.Hour(), "date-only end bound covers the whole day")
		assert.Equal(t, int64(2), old.Inventory.TotalProducts, "inventory ignores the period")
	})

	t.Run("rejections", func(t *testing.T) {
		_, err := f.reports.Dashboard(ctx, testutil.ManagerActor(), DashboardRequest{})
		assert.Equal(t, shared.KindForbidden, shared.KindOf(err))

		_, err = f.reports.Dashboard(ctx, identity.Actor{}, DashboardRequest{})
		assert.Equal(t, shared.KindUnauthorized, shared.KindOf(err))

		from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		_, err = f.reports.Dashboard(ctx, testutil.BossActor(), DashboardRequest{From: &from, To: &to})
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})
}

func TestReportService_Daily(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	empty, err := f.reports.Daily(ctx, testutil.ManagerActor())
	require.NoError(t, err)
	assert.Zero(t, empty.OrderCount)
	assert.Len(t, empty.ByStatus, 3)

	f.seed(t)
	daily, err := f.reports.Daily(ctx, testutil.ManagerActor())
	require.NoError(t, err)
	assert.Equal(t, shared.Now().Format("2006-01-02"), daily.Date)
	assert.Equal(t, int64(2), daily.OrderCount)
	assert.True(t, daily.TotalAmount.Equal(dec(1050)))
	assert.True(t, daily.AmountPaid.Equal(dec(750)))
	assert.Equal(t, int64(1), daily.ByStatus[string(trade.SalesPaymentCleared)].Count)
	assert.Equal(t, int64(1), daily.ByStatus[string(trade.SalesPaymentPending)].Count)
	assert.Zero(t, daily.ByStatus[string(trade.SalesPaymentPartial)].Count)

	_, err = f.reports.Daily(ctx, identity.Actor{})
	assert.Equal(t, shared.KindUnauthorized, shared.KindOf(err))
}

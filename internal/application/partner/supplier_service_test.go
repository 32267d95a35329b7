package partner

import (
	"bytes"
	"context"
	"testing"
	"time"

	appinventory "github.com/erp/backoffice/internal/application/inventory"
	apptrade "github.com/erp/backoffice/internal/application/trade"
	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func strPtr(s string) *string { return &s }

func newSupplierService(t *testing.T) (*SupplierService, *testutil.Stack) {
	t.Helper()
	stack := testutil.NewStack(t)
	return NewSupplierService(stack.Runner, identity.DefaultPolicy(), zap.NewNop()), stack
}

func TestSupplierService_CRUD(t *testing.T) {
	svc, _ := newSupplierService(t)
	ctx := context.Background()

	limited, err := svc.Create(ctx, testutil.ManagerActor(), CreateSupplierRequest{
		Name: "Zanzibar Spices", CreditLimit: dec(1000), PaymentTerms: "Credit 15 days",
	})
	require.NoError(t, err)
	require.NotNil(t, limited.AvailableCredit)
	assert.True(t, limited.AvailableCredit.Equal(dec(1000)))
	assert.False(t, limited.UnlimitedCredit)

	open, err := svc.Create(ctx, testutil.ManagerActor(), CreateSupplierRequest{Name: "Arusha Grains"})
	require.NoError(t, err)
	assert.Nil(t, open.AvailableCredit, "zero limit means unlimited")
	assert.True(t, open.UnlimitedCredit)
	assert.Equal(t, "Credit 30 days", open.PaymentTerms)

	t.Run("create rejections", func(t *testing.T) {
		tests := []struct {
			name  string
			actor identity.Actor
			req   CreateSupplierRequest
			kind  shared.ErrorKind
		}{
			{"bad terms", testutil.ManagerActor(), CreateSupplierRequest{Name: "X", PaymentTerms: "Whenever"}, shared.KindValidation},
			{"blank name", testutil.ManagerActor(), CreateSupplierRequest{Name: " "}, shared.KindValidation},
			{"negative limit", testutil.ManagerActor(), CreateSupplierRequest{Name: "X", CreditLimit: dec(-1)}, shared.KindValidation},
			{"anonymous", identity.Actor{}, CreateSupplierRequest{Name: "X"}, shared.KindUnauthorized},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.Create(ctx, tt.actor, tt.req)
				assert.Equal(t, tt.kind, shared.KindOf(err))
			})
		}
	})

	page, err := svc.List(ctx, SupplierListFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(2), page.Total)
	assert.Equal(t, "Arusha Grains", page.Items[0].Name, "name order by default")

	updated, err := svc.Update(ctx, testutil.ManagerActor(), limited.ID, UpdateSupplierRequest{
		ContactPerson: strPtr("Halima"),
		PaymentTerms:  strPtr("Cash on Delivery"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Halima", updated.ContactPerson)
	assert.Equal(t, "Zanzibar Spices", updated.Name, "omitted fields are kept")
	assert.Equal(t, "Cash on Delivery", updated.PaymentTerms)
	assert.Greater(t, updated.Version, limited.Version)

	_, err = svc.Deactivate(ctx, testutil.ManagerActor(), open.ID)
	assert.Equal(t, shared.KindForbidden, shared.KindOf(err))
	gone, err := svc.Deactivate(ctx, testutil.BossActor(), open.ID)
	require.NoError(t, err)
	assert.False(t, gone.IsActive)

	active, err := svc.List(ctx, SupplierListFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), active.Total)

	search, err := svc.List(ctx, SupplierListFilter{Search: "spice"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), search.Total)

	_, err = svc.GetByID(ctx, uuid.New())
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
}

// purchasing wires the purchase order service over the same stack and
// seeds one product to order
func purchasing(t *testing.T, stack *testutil.Stack) (*apptrade.PurchaseOrderService, uuid.UUID) {
	t.Helper()
	var product *catalog.Product
	err := stack.Runner.Write(context.Background(), nil, func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
		category, err := catalog.NewCategory("Dry goods")
		if err != nil {
			return nil, err
		}
		if err := repos.Categories().Save(ctx, category); err != nil {
			return nil, err
		}
		product, err = catalog.NewProduct(catalog.ProductInput{
			CategoryID: category.ID, Code: "MAIZE", Name: "Maize", UnitOfMeasure: "kg",
		})
		if err != nil {
			return nil, err
		}
		return nil, repos.Products().Save(ctx, product)
	})
	require.NoError(t, err)
	ledger := appinventory.NewLedger(decimal.NewFromFloat(0.3))
	return apptrade.NewPurchaseOrderService(stack.Runner, identity.DefaultPolicy(), ledger, zap.NewNop()), product.ID
}

func approvedPO(t *testing.T, orders *apptrade.PurchaseOrderService, supplierID, productID uuid.UUID, qty, cost int64) *apptrade.POResponse {
	t.Helper()
	ctx := context.Background()
	po, err := orders.Create(ctx, testutil.ManagerActor(), apptrade.CreatePORequest{
		SupplierID: supplierID,
		Items:      []apptrade.CreatePOItemRequest{{ProductID: productID, Quantity: dec(qty), UnitCost: dec(cost)}},
	})
	require.NoError(t, err)
	_, err = orders.Submit(ctx, testutil.ManagerActor(), po.ID)
	require.NoError(t, err)
	po, err = orders.Approve(ctx, testutil.BossActor(), po.ID)
	require.NoError(t, err)
	return po
}

func TestSupplierService_ReconcileBalance(t *testing.T) {
	svc, stack := newSupplierService(t)
	ctx := context.Background()
	orders, productID := purchasing(t, stack)

	supplier, err := svc.Create(ctx, testutil.ManagerActor(), CreateSupplierRequest{Name: "Drifting Ltd"})
	require.NoError(t, err)
	approvedPO(t, orders, supplier.ID, productID, 10, 100)

	clean, err := svc.ReconcileBalance(ctx, testutil.BossActor(), supplier.ID)
	require.NoError(t, err)
	assert.True(t, clean.Drift.IsZero())
	assert.True(t, clean.RecomputedBalance.Equal(dec(1000)))

	// corrupt the stored balance behind the ledger's back
	err = stack.Runner.Write(ctx, nil, func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
		s, err := repos.Suppliers().FindByIDForUpdate(ctx, supplier.ID)
		if err != nil {
			return nil, err
		}
		s.CurrentBalance = dec(1250)
		return nil, repos.Suppliers().Save(ctx, s)
	})
	require.NoError(t, err)

	_, err = svc.ReconcileBalance(ctx, testutil.ManagerActor(), supplier.ID)
	assert.Equal(t, shared.KindForbidden, shared.KindOf(err))

	fixed, err := svc.ReconcileBalance(ctx, testutil.BossActor(), supplier.ID)
	require.NoError(t, err)
	assert.True(t, fixed.PreviousBalance.Equal(dec(1250)))
	assert.True(t, fixed.RecomputedBalance.Equal(dec(1000)))
	assert.True(t, fixed.Drift.Equal(dec(-250)))

	got, err := svc.GetByID(ctx, supplier.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(dec(1000)))
}

func TestSupplierService_Statement(t *testing.T) {
	svc, stack := newSupplierService(t)
	ctx := context.Background()
	orders, productID := purchasing(t, stack)

	supplier, err := svc.Create(ctx, testutil.ManagerActor(), CreateSupplierRequest{Name: "Statement & Co"})
	require.NoError(t, err)
	paid := approvedPO(t, orders, supplier.ID, productID, 10, 100)
	approvedPO(t, orders, supplier.ID, productID, 5, 100)
	_, err = orders.AddPayment(ctx, testutil.ManagerActor(), paid.ID, apptrade.PaymentRequest{Amount: dec(400), Method: "Cash"})
	require.NoError(t, err)

	stmt, err := svc.Statement(ctx, supplier.ID, StatementRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Statement & Co", stmt.Supplier.Name)
	assert.Len(t, stmt.Orders, 2)
	require.Len(t, stmt.Payments, 1)
	assert.Equal(t, paid.PONumber, stmt.Payments[0].PONumber)
	assert.True(t, stmt.Totals.TotalOrdered.Equal(dec(1500)))
	assert.True(t, stmt.Totals.TotalPaid.Equal(dec(400)))
	assert.True(t, stmt.Totals.BalanceDue.Equal(dec(1100)))

	yesterday := shared.Now().AddDate(0, 0, -1)
	before := yesterday.AddDate(0, 0, -1)
	empty, err := svc.Statement(ctx, supplier.ID, StatementRequest{From: &before, To: &yesterday})
	require.NoError(t, err)
	assert.Empty(t, empty.Orders)
	assert.Empty(t, empty.Payments)

	_, err = svc.Statement(ctx, uuid.New(), StatementRequest{})
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))

	var buf bytes.Buffer
	require.NoError(t, WriteStatementXLSX(&buf, stmt))
	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{"Summary", "Purchase Orders", "Payments"}, book.GetSheetList())
	rows, err := book.GetRows("Purchase Orders")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	name := StatementFilename(&stmt.Supplier, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "statement-statement---co-20260301.xlsx", name)
}

package trade

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	appinventory "github.com/erp/backoffice/internal/application/inventory"
	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type tradeFixture struct {
	stack  *testutil.Stack
	orders *PurchaseOrderService
	sales  *SalesService
	ledger *appinventory.Ledger
}

func newTradeFixture(t *testing.T) *tradeFixture {
	t.Helper()
	stack := testutil.NewStack(t)
	policy := identity.DefaultPolicy()
	ledger := appinventory.NewLedger(decimal.NewFromFloat(0.3))
	return &tradeFixture{
		stack:  stack,
		orders: NewPurchaseOrderService(stack.Runner, policy, ledger, zap.NewNop()),
		sales:  NewSalesService(stack.Runner, policy, ledger, zap.NewNop()),
		ledger: ledger,
	}
}

func (f *tradeFixture) write(t *testing.T, fn func(ctx context.Context, repos uow.Repositories) error) {
	t.Helper()
	err := f.stack.Runner.Write(context.Background(), nil, func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
		return nil, fn(ctx, repos)
	})
	require.NoError(t, err)
}

func (f *tradeFixture) seedSupplier(t *testing.T, name string, limit int64) *partner.Supplier {
	t.Helper()
	supplier, err := partner.NewSupplier(partner.SupplierInput{
		Name:         name,
		CreditLimit:  dec(limit),
		PaymentTerms: partner.TermsCredit30,
	})
	require.NoError(t, err)
	f.write(t, func(ctx context.Context, repos uow.Repositories) error {
		return repos.Suppliers().Create(ctx, supplier)
	})
	return supplier
}

func (f *tradeFixture) seedProduct(t *testing.T, code string) *catalog.Product {
	t.Helper()
	var product *catalog.Product
	f.write(t, func(ctx context.Context, repos uow.Repositories) error {
		category, err := catalog.NewCategory("Cat " + code)
		if err != nil {
			return err
		}
		if err := repos.Categories().Save(ctx, category); err != nil {
			return err
		}
		product, err = catalog.NewProduct(catalog.ProductInput{
			CategoryID:    category.ID,
			Code:          code,
			Name:          "Product " + code,
			UnitOfMeasure: "pcs",
			MinStockLevel: dec(5),
		})
		if err != nil {
			return err
		}
		return repos.Products().Save(ctx, product)
	})
	return product
}

func (f *tradeFixture) supplier(t *testing.T, id uuid.UUID) *partner.Supplier {
	t.Helper()
	var s *partner.Supplier
	err := f.stack.Runner.Read(context.Background(), func(ctx context.Context, repos uow.Repositories) error {
		var err error
		s, err = repos.Suppliers().FindByID(ctx, id)
		return err
	})
	require.NoError(t, err)
	return s
}

// assertLedgerConsistent checks the incrementally kept balance against a
// recomputation from the supplier's orders
func (f *tradeFixture) assertLedgerConsistent(t *testing.T, supplierID uuid.UUID) {
	t.Helper()
	var recomputed decimal.Decimal
	err := f.stack.Runner.Read(context.Background(), func(ctx context.Context, repos uow.Repositories) error {
		var err error
		recomputed, err = repos.PurchaseOrders().SumExposure(ctx, supplierID)
		return err
	})
	require.NoError(t, err)
	balance := f.supplier(t, supplierID).CurrentBalance
	assert.True(t, balance.Equal(recomputed), "balance %s, recomputed %s", balance, recomputed)
}

func (f *tradeFixture) createPO(t *testing.T, actor identity.Actor, supplierID, productID uuid.UUID, qty, cost int64) *POResponse {
	t.Helper()
	po, err := f.orders.Create(context.Background(), actor, CreatePORequest{
		SupplierID: supplierID,
		Items:      []CreatePOItemRequest{{ProductID: productID, Quantity: dec(qty), UnitCost: dec(cost)}},
	})
	require.NoError(t, err)
	return po
}

// orderedPO creates a PO and drives it to Ordered
func (f *tradeFixture) orderedPO(t *testing.T, supplierID, productID uuid.UUID, qty, cost int64) *POResponse {
	t.Helper()
	ctx := context.Background()
	po := f.createPO(t, testutil.ManagerActor(), supplierID, productID, qty, cost)
	_, err := f.orders.Submit(ctx, testutil.ManagerActor(), po.ID)
	require.NoError(t, err)
	_, err = f.orders.Approve(ctx, testutil.BossActor(), po.ID)
	require.NoError(t, err)
	po, err = f.orders.MarkOrdered(ctx, testutil.ManagerActor(), po.ID)
	require.NoError(t, err)
	return po
}

func TestPurchaseOrderService_Lifecycle(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	supplier := f.seedSupplier(t, "Acme", 1_000_000)
	product := f.seedProduct(t, "RICE")

	po := f.createPO(t, testutil.ManagerActor(), supplier.ID, product.ID, 100, 1000)
	assert.Equal(t, string(trade.POStatusDraft), po.Status)
	assert.Regexp(t, `^PO-\d{4}-00001$`, po.PONumber)
	assert.True(t, po.GrandTotal.Equal(dec(100_000)))
	assert.Equal(t, "Product RICE", po.Items[0].ProductName)

	po, err := f.orders.Submit(ctx, testutil.ManagerActor(), po.ID)
	require.NoError(t, err)
	assert.Equal(t, string(trade.POStatusSubmitted), po.Status)

	po, err = f.orders.Approve(ctx, testutil.BossActor(), po.ID)
	require.NoError(t, err)
	assert.Equal(t, string(trade.POStatusApproved), po.Status)
	assert.True(t, f.supplier(t, supplier.ID).CurrentBalance.Equal(dec(100_000)))

	po, err = f.orders.MarkOrdered(ctx, testutil.ManagerActor(), po.ID)
	require.NoError(t, err)
	require.NotNil(t, po.OrderedAt)
	require.NotNil(t, po.DueDate)
	assert.Equal(t, po.OrderedAt.AddDate(0, 0, 30).Unix(), po.DueDate.Unix())

	itemID := po.Items[0].ID
	po, err = f.orders.Receive(ctx, testutil.ManagerActor(), po.ID, ReceiveRequest{
		Items: []ReceiveItemRequest{{POItemID: itemID, Quantity: dec(60)}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(trade.POStatusPartiallyReceived), po.Status)
	assert.True(t, po.Items[0].QuantityReceived.Equal(dec(60)))
	require.Len(t, po.Items[0].BatchNumbers, 1)

	po, err = f.orders.Receive(ctx, testutil.ManagerActor(), po.ID, ReceiveRequest{
		Items: []ReceiveItemRequest{{POItemID: itemID, Quantity: dec(40)}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(trade.POStatusReceived), po.Status)
	assert.Len(t, po.Items[0].BatchNumbers, 2)
	assert.Len(t, po.Items[0].ReceivedDates, 2)

	var lots []inventory.StockLot
	require.NoError(t, f.stack.Runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		lots, err = repos.StockLots().FindByProduct(ctx, product.ID)
		return err
	}))
	require.Len(t, lots, 2)
	total := decimal.Zero
	for _, lot := range lots {
		total = total.Add(lot.Quantity)
		assert.True(t, lot.UnitCost.Equal(dec(1000)))
		require.NotNil(t, lot.POID)
		assert.Equal(t, po.ID, *lot.POID)
		require.NotNil(t, lot.POItemID)
		assert.Equal(t, itemID, *lot.POItemID)
	}
	assert.True(t, total.Equal(dec(100)))

	_, err = f.orders.AddPayment(ctx, testutil.ManagerActor(), po.ID, PaymentRequest{Amount: dec(50_000), Method: "Cash"})
	require.NoError(t, err)
	po, err = f.orders.GetByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, string(trade.PaymentStatusPartial), po.PaymentStatus)
	assert.True(t, po.BalanceDue.Equal(dec(50_000)))
	assert.True(t, f.supplier(t, supplier.ID).CurrentBalance.Equal(dec(50_000)))

	payment, err := f.orders.AddPayment(ctx, testutil.ManagerActor(), po.ID, PaymentRequest{
		Amount: dec(50_000), Method: "Bank Transfer", BankName: "CRDB", ReferenceNumber: "TX-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bank Transfer", payment.Method)
	assert.Equal(t, po.PONumber, payment.PONumber)

	po, err = f.orders.GetByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, string(trade.PaymentStatusPaid), po.PaymentStatus)
	assert.True(t, po.BalanceDue.IsZero())
	assert.True(t, f.supplier(t, supplier.ID).CurrentBalance.IsZero())

	payments, err := f.orders.Payments(ctx, po.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)

	f.assertLedgerConsistent(t, supplier.ID)
	assert.Contains(t, f.stack.EventTypes(), trade.EventTypePurchaseOrderReceived)
	assert.Contains(t, f.stack.EventTypes(), trade.EventTypePurchaseOrderPaid)
}

func TestPurchaseOrderService_Create(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	supplier := f.seedSupplier(t, "Acme", 0)
	product := f.seedProduct(t, "OIL")
	inactive := f.seedProduct(t, "OLD")
	f.write(t, func(ctx context.Context, repos uow.Repositories) error {
		p, err := repos.Products().FindByIDForUpdate(ctx, inactive.ID)
		if err != nil {
			return err
		}
		p.Deactivate()
		return repos.Products().Save(ctx, p)
	})

	first := f.createPO(t, testutil.ManagerActor(), supplier.ID, product.ID, 1, 10)
	second := f.createPO(t, testutil.ManagerActor(), supplier.ID, product.ID, 1, 10)
	assert.Equal(t, first.PONumber[:8], second.PONumber[:8])
	assert.NotEqual(t, first.PONumber, second.PONumber)
	assert.Equal(t, string(partner.TermsCredit30), first.PaymentTerms, "supplier terms by default")

	tests := []struct {
		name  string
		actor identity.Actor
		req   CreatePORequest
		kind  shared.ErrorKind
	}{
		{
			name:  "unknown supplier",
			actor: testutil.ManagerActor(),
			req:   CreatePORequest{SupplierID: uuid.New(), Items: []CreatePOItemRequest{{ProductID: product.ID, Quantity: dec(1), UnitCost: dec(1)}}},
			kind:  shared.KindValidation,
		},
		{
			name:  "unknown product",
			actor: testutil.ManagerActor(),
			req:   CreatePORequest{SupplierID: supplier.ID, Items: []CreatePOItemRequest{{ProductID: uuid.New(), Quantity: dec(1), UnitCost: dec(1)}}},
			kind:  shared.KindValidation,
		},
		{
			name:  "inactive product",
			actor: testutil.ManagerActor(),
			req:   CreatePORequest{SupplierID: supplier.ID, Items: []CreatePOItemRequest{{ProductID: inactive.ID, Quantity: dec(1), UnitCost: dec(1)}}},
			kind:  shared.KindValidation,
		},
		{
			name:  "no items",
			actor: testutil.ManagerActor(),
			req:   CreatePORequest{SupplierID: supplier.ID},
			kind:  shared.KindValidation,
		},
		{
			name:  "zero cost",
			actor: testutil.ManagerActor(),
			req:   CreatePORequest{SupplierID: supplier.ID, Items: []CreatePOItemRequest{{ProductID: product.ID, Quantity: dec(1), UnitCost: dec(0)}}},
			kind:  shared.KindValidation,
		},
		{
			name:  "bad terms",
			actor: testutil.ManagerActor(),
			req:   CreatePORequest{SupplierID: supplier.ID, PaymentTerms: "Credit 45 days", Items: []CreatePOItemRequest{{ProductID: product.ID, Quantity: dec(1), UnitCost: dec(1)}}},
			kind:  shared.KindValidation,
		},
		{
			name: "anonymous",
			req:  CreatePORequest{SupplierID: supplier.ID, Items: []CreatePOItemRequest{{ProductID: product.ID, Quantity: dec(1), UnitCost: dec(1)}}},
			kind: shared.KindUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.Create(ctx, tt.actor, tt.req)
			assert.Equal(t, tt.kind, shared.KindOf(err))
		})
	}
}

func TestPurchaseOrderService_Authorization(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	supplier := f.seedSupplier(t, "Acme", 0)
	product := f.seedProduct(t, "SALT")
	po := f.createPO(t, testutil.ManagerActor(), supplier.ID, product.ID, 10, 10)

	_, err := f.orders.Submit(ctx, testutil.OtherManagerActor(), po.ID)
	assert.Equal(t, shared.KindForbidden, shared.KindOf(err), "only the author submits")
	_, err = f.orders.Submit(ctx, testutil.BossActor(), po.ID)
	assert.Equal(t, shared.KindForbidden, shared.KindOf(err), "boss does not submit for the author")

	_, err = f.orders.Submit(ctx, testutil.ManagerActor(), po.ID)
	require.NoError(t, err)
	_, err = f.orders.Submit(ctx, testutil.ManagerActor(), po.ID)
	assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))

	_, err = f.orders.Approve(ctx, testutil.ManagerActor(), po.ID)
	assert.Equal(t, shared.KindForbidden, shared.KindOf(err))

	_, err = f.orders.MarkOrdered(ctx, testutil.BossActor(), po.ID)
	assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err), "not approved yet")

	_, err = f.orders.Cancel(ctx, testutil.OtherManagerActor(), po.ID, CancelRequest{Reason: "dup"})
	assert.Equal(t, shared.KindForbidden, shared.KindOf(err))

	_, err = f.orders.Receive(ctx, testutil.ManagerActor(), po.ID, ReceiveRequest{
		Items: []ReceiveItemRequest{{POItemID: po.Items[0].ID, Quantity: dec(1)}},
	})
	assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err), "receive before ordered")

	_, err = f.orders.GetByID(ctx, uuid.New())
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
}

func TestPurchaseOrderService_CreditLimit(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	supplier := f.seedSupplier(t, "Tight", 150_000)
	product := f.seedProduct(t, "SUGAR")

	f.orderedPO(t, supplier.ID, product.ID, 100, 1000)

	po := f.createPO(t, testutil.ManagerActor(), supplier.ID, product.ID, 60, 1000)
	_, err := f.orders.Submit(ctx, testutil.ManagerActor(), po.ID)
	require.NoError(t, err)

	_, err = f.orders.Approve(ctx, testutil.BossActor(), po.ID)
	require.Error(t, err)
	assert.Equal(t, shared.KindCreditLimitExceeded, shared.KindOf(err))

	got, err := f.orders.GetByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, string(trade.POStatusSubmitted), got.Status, "rejected approval leaves the order")
	assert.True(t, f.supplier(t, supplier.ID).CurrentBalance.Equal(dec(100_000)))

	exact := f.createPO(t, testutil.ManagerActor(), supplier.ID, product.ID, 50, 1000)
	_, err = f.orders.Submit(ctx, testutil.ManagerActor(), exact.ID)
	require.NoError(t, err)
	_, err = f.orders.Approve(ctx, testutil.BossActor(), exact.ID)
	require.NoError(t, err, "balance plus total equal to the limit is allowed")
	f.assertLedgerConsistent(t, supplier.ID)
}

func TestPurchaseOrderService_Receive(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	supplier := f.seedSupplier(t, "Acme", 0)
	product := f.seedProduct(t, "FLOUR")
	po := f.orderedPO(t, supplier.ID, product.ID, 10, 500)
	itemID := po.Items[0].ID

	tests := []struct {
		name  string
		items []ReceiveItemRequest
		kind  shared.ErrorKind
	}{
		{"over receipt", []ReceiveItemRequest{{POItemID: itemID, Quantity: dec(11)}}, shared.KindOverReceipt},
		{"unknown item", []ReceiveItemRequest{{POItemID: uuid.New(), Quantity: dec(1)}}, shared.KindValidation},
		{"duplicate line", []ReceiveItemRequest{{POItemID: itemID, Quantity: dec(1)}, {POItemID: itemID, Quantity: dec(1)}}, shared.KindValidation},
		{"zero quantity", []ReceiveItemRequest{{POItemID: itemID, Quantity: dec(0)}}, shared.KindValidation},
		{"empty", nil, shared.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.Receive(ctx, testutil.ManagerActor(), po.ID, ReceiveRequest{Items: tt.items})
			assert.Equal(t, tt.kind, shared.KindOf(err))
		})
	}

	got, err := f.orders.GetByID(ctx, po.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].QuantityReceived.IsZero(), "rejected receipts change nothing")

	price := dec(900)
	got, err = f.orders.Receive(ctx, testutil.ManagerActor(), po.ID, ReceiveRequest{
		Items: []ReceiveItemRequest{{POItemID: itemID, Quantity: dec(10), UnitPrice: &price}},
		Notes: "truck 1",
	})
	require.NoError(t, err)
	assert.Equal(t, string(trade.POStatusReceived), got.Status)
	require.NotNil(t, got.ReceivedAt)

	_, err = f.orders.Receive(ctx, testutil.ManagerActor(), po.ID, ReceiveRequest{
		Items: []ReceiveItemRequest{{POItemID: itemID, Quantity: dec(1)}},
	})
	assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))

	var lots []inventory.StockLot
	require.NoError(t, f.stack.Runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		lots, err = repos.StockLots().FindByProduct(ctx, product.ID)
		return err
	}))
	require.Len(t, lots, 1)
	assert.True(t, lots[0].UnitPrice.Equal(price))
	assert.Equal(t, "truck 1", lots[0].Notes)
}

func TestPurchaseOrderService_ReceiveAllOrNothing(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	supplier := f.seedSupplier(t, "Acme", 0)
	good := f.seedProduct(t, "BEANS")
	doomed := f.seedProduct(t, "PEAS")

	po, err := f.orders.Create(ctx, testutil.ManagerActor(), CreatePORequest{
		SupplierID: supplier.ID,
		Items: []CreatePOItemRequest{
			{ProductID: good.ID, Quantity: dec(5), UnitCost: dec(10)},
			{ProductID: doomed.ID, Quantity: dec(5), UnitCost: dec(10)},
		},
	})
	require.NoError(t, err)
	_, err = f.orders.Submit(ctx, testutil.ManagerActor(), po.ID)
	require.NoError(t, err)
	_, err = f.orders.Approve(ctx, testutil.BossActor(), po.ID)
	require.NoError(t, err)
	_, err = f.orders.MarkOrdered(ctx, testutil.ManagerActor(), po.ID)
	require.NoError(t, err)

	// the second line's batch number is already taken, so its lot insert fails
	pinned := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	restore := shared.Now
	shared.Now = func() time.Time { return pinned }
	defer func() { shared.Now = restore }()
	f.write(t, func(ctx context.Context, repos uow.Repositories) error {
		squatter, err := inventory.NewStockLot(inventory.LotSpec{
			ProductID: doomed.ID, UnitCost: dec(1), Quantity: dec(1),
		}, inventory.FormatBatchNumber(doomed.Code, pinned, 1), decimal.Zero)
		if err != nil {
			return err
		}
		return repos.StockLots().Create(ctx, squatter)
	})

	_, err = f.orders.Receive(ctx, testutil.ManagerActor(), po.ID, ReceiveRequest{Items: []ReceiveItemRequest{
		{POItemID: po.Items[0].ID, Quantity: dec(5)},
		{POItemID: po.Items[1].ID, Quantity: dec(5)},
	}})
	require.Error(t, err)

	var lots []inventory.StockLot
	require.NoError(t, f.stack.Runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		lots, err = repos.StockLots().FindByProduct(ctx, good.ID)
		return err
	}))
	assert.Empty(t, lots, "first line rolled back with the failing one")

	got, err := f.orders.GetByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, string(trade.POStatusOrdered), got.Status)
}

func TestPurchaseOrderService_ReceiveAfterProductRetired(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	supplier := f.seedSupplier(t, "Acme", 0)
	product := f.seedProduct(t, "LENTILS")
	po := f.orderedPO(t, supplier.ID, product.ID, 6, 40)

	f.write(t, func(ctx context.Context, repos uow.Repositories) error {
		p, err := repos.Products().FindByIDForUpdate(ctx, product.ID)
		if err != nil {
			return err
		}
		p.Deactivate()
		return repos.Products().Save(ctx, p)
	})

	got, err := f.orders.Receive(ctx, testutil.ManagerActor(), po.ID, ReceiveRequest{
		Items: []ReceiveItemRequest{{POItemID: po.Items[0].ID, Quantity: dec(6)}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(trade.POStatusReceived), got.Status)
	require.Len(t, got.Items[0].BatchNumbers, 1)

	lots := f.lots(t, product.ID)
	require.Len(t, lots, 1)
	assert.True(t, lots[0].Quantity.Equal(dec(6)))
	require.NotNil(t, lots[0].POID)
	assert.Equal(t, po.ID, *lots[0].POID)

	// manual entry still refuses the retired product
	err = f.stack.Runner.Write(ctx, nil, func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
		_, _, err := f.ledger.AddLot(ctx, repos, inventory.LotSpec{ProductID: product.ID, UnitCost: dec(40), Quantity: dec(1)})
		return nil, err
	})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	f.assertLedgerConsistent(t, supplier.ID)
}

func TestPurchaseOrderService_CancelledIsTerminal(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	supplier := f.seedSupplier(t, "Acme", 0)
	product := f.seedProduct(t, "SALT")

	po := f.orderedPO(t, supplier.ID, product.ID, 10, 100)
	_, err := f.orders.Receive(ctx, testutil.ManagerActor(), po.ID, ReceiveRequest{
		Items: []ReceiveItemRequest{{POItemID: po.Items[0].ID, Quantity: dec(3)}},
	})
	require.NoError(t, err)
	_, err = f.orders.Cancel(ctx, testutil.BossActor(), po.ID, CancelRequest{Reason: "supplier folded"})
	require.NoError(t, err)
	exposure := f.supplier(t, supplier.ID).CurrentBalance

	tests := []struct {
		name string
		call func() error
	}{
		{"submit", func() error {
			_, err := f.orders.Submit(ctx, testutil.ManagerActor(), po.ID)
			return err
		}},
		{"approve", func() error {
			_, err := f.orders.Approve(ctx, testutil.BossActor(), po.ID)
			return err
		}},
		{"mark ordered", func() error {
			_, err := f.orders.MarkOrdered(ctx, testutil.ManagerActor(), po.ID)
			return err
		}},
		{"receive", func() error {
			_, err := f.orders.Receive(ctx, testutil.ManagerActor(), po.ID, ReceiveRequest{
				Items: []ReceiveItemRequest{{POItemID: po.Items[0].ID, Quantity: dec(1)}},
			})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(tt.call()))
			assert.True(t, f.supplier(t, supplier.ID).CurrentBalance.Equal(exposure), "exposure unchanged")
		})
	}

	got, err := f.orders.GetByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, string(trade.POStatusCancelled), got.Status)
	assert.True(t, got.Items[0].QuantityReceived.Equal(dec(3)))
	assert.Len(t, f.lots(t, product.ID), 1)
	f.assertLedgerConsistent(t, supplier.ID)
}

func TestPurchaseOrderService_Cancel(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	supplier := f.seedSupplier(t, "Acme", 0)
	product := f.seedProduct(t, "TEA")

	t.Run("draft by author", func(t *testing.T) {
		po := f.createPO(t, testutil.ManagerActor(), supplier.ID, product.ID, 1, 10)
		_, err := f.orders.Cancel(ctx, testutil.ManagerActor(), po.ID, CancelRequest{Reason: "  "})
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))

		resp, err := f.orders.Cancel(ctx, testutil.ManagerActor(), po.ID, CancelRequest{Reason: "typo"})
		require.NoError(t, err)
		assert.Equal(t, string(trade.POStatusCancelled), resp.PurchaseOrder.Status)
		assert.Empty(t, resp.ReceivedBatches)
	})

	t.Run("partially received by boss keeps stock", func(t *testing.T) {
		po := f.orderedPO(t, supplier.ID, product.ID, 10, 100)
		_, err := f.orders.AddPayment(ctx, testutil.ManagerActor(), po.ID, PaymentRequest{Amount: dec(200)})
		require.NoError(t, err)
		received, err := f.orders.Receive(ctx, testutil.ManagerActor(), po.ID, ReceiveRequest{
			Items: []ReceiveItemRequest{{POItemID: po.Items[0].ID, Quantity: dec(4)}},
		})
		require.NoError(t, err)
		assert.True(t, f.supplier(t, supplier.ID).CurrentBalance.Equal(dec(800)))

		resp, err := f.orders.Cancel(ctx, testutil.BossActor(), po.ID, CancelRequest{Reason: "supplier folded"})
		require.NoError(t, err)
		assert.Equal(t, received.Items[0].BatchNumbers, resp.ReceivedBatches)
		assert.True(t, f.supplier(t, supplier.ID).CurrentBalance.IsZero(), "outstanding balance rolled back")

		var lots []inventory.StockLot
		require.NoError(t, f.stack.Runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
			lots, err = repos.StockLots().FindByProduct(ctx, product.ID)
			return err
		}))
		require.Len(t, lots, 1)
		assert.True(t, lots[0].Quantity.Equal(dec(4)))

		_, err = f.orders.AddPayment(ctx, testutil.ManagerActor(), po.ID, PaymentRequest{Amount: dec(1)})
		assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))
	})

	t.Run("received cannot be cancelled", func(t *testing.T) {
		po := f.orderedPO(t, supplier.ID, product.ID, 1, 10)
		_, err := f.orders.Receive(ctx, testutil.ManagerActor(), po.ID, ReceiveRequest{
			Items: []ReceiveItemRequest{{POItemID: po.Items[0].ID, Quantity: dec(1)}},
		})
		require.NoError(t, err)
		_, err = f.orders.Cancel(ctx, testutil.BossActor(), po.ID, CancelRequest{Reason: "late"})
		assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))
	})

	f.assertLedgerConsistent(t, supplier.ID)
}

func TestPurchaseOrderService_AddPayment(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	supplier := f.seedSupplier(t, "Acme", 0)
	product := f.seedProduct(t, "MILK")

	t.Run("prepayment on draft leaves the supplier balance", func(t *testing.T) {
		po := f.createPO(t, testutil.ManagerActor(), supplier.ID, product.ID, 10, 10)
		_, err := f.orders.AddPayment(ctx, testutil.ManagerActor(), po.ID, PaymentRequest{Amount: dec(30)})
		require.NoError(t, err)
		assert.True(t, f.supplier(t, supplier.ID).CurrentBalance.IsZero())

		_, err = f.orders.Submit(ctx, testutil.ManagerActor(), po.ID)
		require.NoError(t, err)
		_, err = f.orders.Approve(ctx, testutil.BossActor(), po.ID)
		require.NoError(t, err)
		assert.True(t, f.supplier(t, supplier.ID).CurrentBalance.Equal(dec(70)), "approval adds only the balance due")
	})

	t.Run("rejections", func(t *testing.T) {
		po := f.orderedPO(t, supplier.ID, product.ID, 10, 10)
		tests := []struct {
			name string
			req  PaymentRequest
			kind shared.ErrorKind
		}{
			{"over balance", PaymentRequest{Amount: dec(101)}, shared.KindOverPayment},
			{"zero", PaymentRequest{Amount: dec(0)}, shared.KindValidation},
			{"unknown method", PaymentRequest{Amount: dec(1), Method: "Barter"}, shared.KindValidation},
			{"unknown provider", PaymentRequest{Amount: dec(1), Method: "Mobile Money", MobileProvider: "Pigeon"}, shared.KindValidation},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.orders.AddPayment(ctx, testutil.ManagerActor(), po.ID, tt.req)
				assert.Equal(t, tt.kind, shared.KindOf(err))
			})
		}
		payments, err := f.orders.Payments(ctx, po.ID)
		require.NoError(t, err)
		assert.Empty(t, payments, "rejected payments are not recorded")

		_, err = f.orders.AddPayment(ctx, testutil.ManagerActor(), po.ID, PaymentRequest{Amount: dec(100)})
		require.NoError(t, err)
		_, err = f.orders.AddPayment(ctx, testutil.ManagerActor(), po.ID, PaymentRequest{Amount: dec(1)})
		assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err), "fully paid")
	})

	f.assertLedgerConsistent(t, supplier.ID)
}

func TestPurchaseOrderService_ConcurrentPaymentsNeverOvershoot(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	supplier := f.seedSupplier(t, "Acme", 0)
	product := f.seedProduct(t, "CORN")
	po := f.orderedPO(t, supplier.ID, product.ID, 100, 1000)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.orders.AddPayment(ctx, testutil.ManagerActor(), po.ID, PaymentRequest{Amount: dec(30_000)})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			kind := shared.KindOf(err)
			assert.Contains(t, []shared.ErrorKind{shared.KindOverPayment, shared.KindBusy}, kind)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, succeeded, 3)
	got, err := f.orders.GetByID(ctx, po.ID)
	require.NoError(t, err)
	assert.True(t, got.AmountPaid.Equal(dec(int64(succeeded)*30_000)))
	assert.True(t, got.AmountPaid.LessThanOrEqual(got.GrandTotal))
	f.assertLedgerConsistent(t, supplier.ID)
}

func TestPurchaseOrderService_BusyWhileLocked(t *testing.T) {
	f := newTradeFixture(t)
	supplier := f.seedSupplier(t, "Acme", 0)
	product := f.seedProduct(t, "HONEY")
	po := f.orderedPO(t, supplier.ID, product.ID, 10, 10)

	unlock, err := f.stack.Locker.Lock(context.Background(), shared.LockKey(shared.LockPurchaseOrder, po.ID))
	require.NoError(t, err)
	defer unlock()

	_, err = f.orders.AddPayment(context.Background(), testutil.ManagerActor(), po.ID, PaymentRequest{Amount: dec(1)})
	assert.True(t, shared.IsBusy(err))
	_, err = f.orders.Receive(context.Background(), testutil.ManagerActor(), po.ID, ReceiveRequest{
		Items: []ReceiveItemRequest{{POItemID: po.Items[0].ID, Quantity: dec(1)}},
	})
	assert.True(t, shared.IsBusy(err))
}

func TestPurchaseOrderService_ListStatsAndExport(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	acme := f.seedSupplier(t, "Acme", 0)
	other := f.seedSupplier(t, "Other", 0)
	product := f.seedProduct(t, "SOY")

	draft := f.createPO(t, testutil.ManagerActor(), acme.ID, product.ID, 1, 100)
	ordered := f.orderedPO(t, acme.ID, product.ID, 2, 100)
	f.createPO(t, testutil.ManagerActor(), other.ID, product.ID, 3, 100)
	_, err := f.orders.AddPayment(ctx, testutil.ManagerActor(), ordered.ID, PaymentRequest{Amount: dec(50)})
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter POListFilter
		want   int64
	}{
		{"all", POListFilter{}, 3},
		{"by supplier", POListFilter{SupplierID: &acme.ID}, 2},
		{"by status", POListFilter{Status: "Draft"}, 2},
		{"by payment status", POListFilter{PaymentStatus: "Partial"}, 1},
		{"by number", POListFilter{Search: draft.PONumber}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.orders.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, page.Total)
		})
	}

	_, err = f.orders.List(ctx, POListFilter{Status: "Lost"})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	stats, err := f.orders.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.ByStatus[trade.POStatusDraft])
	assert.Equal(t, int64(1), stats.ByStatus[trade.POStatusOrdered])
	assert.Equal(t, int64(0), stats.ByStatus[trade.POStatusCancelled])
	assert.True(t, stats.TotalValue.Equal(dec(600)))
	assert.True(t, stats.TotalPaid.Equal(dec(50)))
	assert.True(t, stats.TotalOutstanding.Equal(dec(550)))
	assert.Equal(t, int64(0), stats.OverdueCount)

	rows, err := f.orders.ExportRows(ctx, POListFilter{SupplierID: &acme.ID})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var buf bytes.Buffer
	require.NoError(t, WritePOExportXLSX(&buf, rows))
	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()
	sheet, err := book.GetRows("Purchase Orders")
	require.NoError(t, err)
	assert.Len(t, sheet, 3)
	items, err := book.GetRows("Items")
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

package trade

import (
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func newTestSupplier(t *testing.T, limit int64) *partner.Supplier {
	t.Helper()
	s, err := partner.NewSupplier(partner.SupplierInput{
		Name:         "Acme Wholesale",
		CreditLimit:  d(limit),
		PaymentTerms: partner.TermsCredit30,
	})
	require.NoError(t, err)
	return s
}

func newTestPO(t *testing.T, supplier *partner.Supplier, author uuid.UUID, items ...ItemInput) *PurchaseOrder {
	t.Helper()
	if len(items) == 0 {
		items = []ItemInput{{ProductID: uuid.New(), ProductName: "Rice 25kg", Quantity: d(100), UnitCost: d(1000)}}
	}
	po, err := NewPurchaseOrder("PO-2026-00001", supplier, author, items, "", Charges{}, "")
	require.NoError(t, err)
	return po
}

func orderedPO(t *testing.T, supplier *partner.Supplier, items ...ItemInput) *PurchaseOrder {
	t.Helper()
	author := uuid.New()
	po := newTestPO(t, supplier, author, items...)
	require.NoError(t, po.Submit(author))
	require.NoError(t, po.Approve(supplier, uuid.New()))
	require.NoError(t, po.MarkOrdered())
	return po
}

func TestNewPurchaseOrder(t *testing.T) {
	supplier := newTestSupplier(t, 0)
	author := uuid.New()

	t.Run("computes totals", func(t *testing.T) {
		po, err := NewPurchaseOrder("PO-2026-00001", supplier, author, []ItemInput{
			{ProductID: uuid.New(), ProductName: "A", Quantity: d(10), UnitCost: d(50)},
			{ProductID: uuid.New(), ProductName: "B", Quantity: d(2), UnitCost: d(250)},
		}, "", Charges{TaxAmount: d(100), ShippingCost: d(40), Discount: d(90)}, "")
		require.NoError(t, err)

		assert.Equal(t, POStatusDraft, po.Status)
		assert.True(t, po.TotalCost.Equal(d(1000)))
		assert.True(t, po.GrandTotal.Equal(d(1050)))
		assert.True(t, po.BalanceDue.Equal(po.GrandTotal))
		assert.Equal(t, PaymentStatusUnpaid, po.PaymentStatus)
		assert.Equal(t, supplier.PaymentTerms, po.PaymentTerms)
		assert.Len(t, po.GetDomainEvents(), 1)
	})

	tests := []struct {
		name  string
		items []ItemInput
		terms partner.PaymentTerms
		c     Charges
		code  string
	}{
		{"empty items", nil, "", Charges{}, "NO_ITEMS"},
		{"zero quantity", []ItemInput{{ProductID: uuid.New(), Quantity: d(0), UnitCost: d(1)}}, "", Charges{}, "INVALID_QUANTITY"},
		{"zero cost", []ItemInput{{ProductID: uuid.New(), Quantity: d(1), UnitCost: d(0)}}, "", Charges{}, "INVALID_COST"},
		{"missing product", []ItemInput{{Quantity: d(1), UnitCost: d(1)}}, "", Charges{}, "INVALID_PRODUCT"},
		{"unknown terms", []ItemInput{{ProductID: uuid.New(), Quantity: d(1), UnitCost: d(1)}}, "Credit 45 days", Charges{}, "INVALID_PAYMENT_TERMS"},
		{"discount above total", []ItemInput{{ProductID: uuid.New(), Quantity: d(1), UnitCost: d(10)}}, "", Charges{Discount: d(11)}, "INVALID_DISCOUNT"},
		{"negative tax", []ItemInput{{ProductID: uuid.New(), Quantity: d(1), UnitCost: d(10)}}, "", Charges{TaxAmount: d(-1)}, "INVALID_AMOUNT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPurchaseOrder("PO-2026-00002", supplier, author, tt.items, tt.terms, tt.c, "")
			require.Error(t, err)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.code, de.Code)
			assert.Equal(t, shared.KindValidation, de.Kind)
		})
	}

	t.Run("inactive supplier", func(t *testing.T) {
		inactive := newTestSupplier(t, 0)
		inactive.Deactivate()
		_, err := NewPurchaseOrder("PO-2026-00003", inactive, author, []ItemInput{{ProductID: uuid.New(), Quantity: d(1), UnitCost: d(1)}}, "", Charges{}, "")
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})
}

func TestPurchaseOrderStatus_CanTransitionTo(t *testing.T) {
	allowed := map[PurchaseOrderStatus][]PurchaseOrderStatus{
		POStatusDraft:             {POStatusSubmitted, POStatusCancelled},
		POStatusSubmitted:         {POStatusApproved, POStatusCancelled},
		POStatusApproved:          {POStatusOrdered, POStatusCancelled},
		POStatusOrdered:           {POStatusPartiallyReceived, POStatusReceived, POStatusCancelled},
		POStatusPartiallyReceived: {POStatusPartiallyReceived, POStatusReceived, POStatusCancelled},
	}
	for _, from := range AllPurchaseOrderStatuses() {
		for _, to := range AllPurchaseOrderStatuses() {
			want := false
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.True(t, POStatusReceived.IsTerminal())
	assert.True(t, POStatusCancelled.IsTerminal())
	assert.False(t, POStatusPartiallyReceived.IsTerminal())
}

func TestPurchaseOrder_Submit(t *testing.T) {
	supplier := newTestSupplier(t, 0)
	author := uuid.New()

	t.Run("only the author", func(t *testing.T) {
		po := newTestPO(t, supplier, author)
		err := po.Submit(uuid.New())
		assert.Equal(t, shared.KindForbidden, shared.KindOf(err))
		assert.Equal(t, POStatusDraft, po.Status)
	})

	t.Run("draft to submitted", func(t *testing.T) {
		po := newTestPO(t, supplier, author)
		require.NoError(t, po.Submit(author))
		assert.Equal(t, POStatusSubmitted, po.Status)
		assert.NotNil(t, po.SubmittedAt)
	})

	t.Run("twice is an invalid transition", func(t *testing.T) {
		po := newTestPO(t, supplier, author)
		require.NoError(t, po.Submit(author))
		err := po.Submit(author)
		assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))
	})
}

func TestPurchaseOrder_Approve(t *testing.T) {
	author := uuid.New()

	t.Run("posts balance to supplier", func(t *testing.T) {
		supplier := newTestSupplier(t, 200000)
		po := newTestPO(t, supplier, author)
		require.NoError(t, po.Submit(author))
		boss := uuid.New()

		require.NoError(t, po.Approve(supplier, boss))
		assert.Equal(t, POStatusApproved, po.Status)
		assert.Equal(t, boss, *po.ApprovedBy)
		assert.True(t, supplier.CurrentBalance.Equal(d(100000)))
	})

	t.Run("credit limit exceeded", func(t *testing.T) {
		supplier := newTestSupplier(t, 150000)
		require.NoError(t, supplier.AddExposure(d(60000), "PO-2026-00000"))
		po := newTestPO(t, supplier, author)
		require.NoError(t, po.Submit(author))

		err := po.Approve(supplier, uuid.New())
		assert.Equal(t, shared.KindCreditLimitExceeded, shared.KindOf(err))
		assert.Equal(t, POStatusSubmitted, po.Status)
		assert.True(t, supplier.CurrentBalance.Equal(d(60000)))
	})

	t.Run("exactly at the limit is allowed", func(t *testing.T) {
		supplier := newTestSupplier(t, 100000)
		po := newTestPO(t, supplier, author)
		require.NoError(t, po.Submit(author))
		require.NoError(t, po.Approve(supplier, uuid.New()))
		assert.True(t, supplier.AvailableCredit().IsZero())
	})

	t.Run("unlimited credit", func(t *testing.T) {
		supplier := newTestSupplier(t, 0)
		require.NoError(t, supplier.AddExposure(d(9999999), "PO-2026-00000"))
		po := newTestPO(t, supplier, author)
		require.NoError(t, po.Submit(author))
		require.NoError(t, po.Approve(supplier, uuid.New()))
	})

	t.Run("draft cannot be approved", func(t *testing.T) {
		supplier := newTestSupplier(t, 0)
		po := newTestPO(t, supplier, author)
		err := po.Approve(supplier, uuid.New())
		assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))
		assert.True(t, supplier.CurrentBalance.IsZero())
	})
}

func TestPurchaseOrder_MarkOrdered(t *testing.T) {
	pinned := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	restore := shared.Now
	shared.Now = func() time.Time { return pinned }
	defer func() { shared.Now = restore }()

	tests := []struct {
		terms partner.PaymentTerms
		due   *time.Time
	}{
		{partner.TermsCashOnDelivery, nil},
		{partner.TermsCredit7, ptrTime(pinned.AddDate(0, 0, 7))},
		{partner.TermsCredit30, ptrTime(pinned.AddDate(0, 0, 30))},
		{partner.TermsCredit90, ptrTime(pinned.AddDate(0, 0, 90))},
	}
	for _, tt := range tests {
		t.Run(string(tt.terms), func(t *testing.T) {
			supplier := newTestSupplier(t, 0)
			author := uuid.New()
			po, err := NewPurchaseOrder("PO-2026-00001", supplier, author,
				[]ItemInput{{ProductID: uuid.New(), Quantity: d(1), UnitCost: d(10)}}, tt.terms, Charges{}, "")
			require.NoError(t, err)
			require.NoError(t, po.Submit(author))
			require.NoError(t, po.Approve(supplier, uuid.New()))

			require.NoError(t, po.MarkOrdered())
			assert.Equal(t, POStatusOrdered, po.Status)
			assert.Equal(t, pinned, *po.OrderedAt)
			assert.Equal(t, tt.due, po.DueDate)
		})
	}
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

func TestPurchaseOrder_Receive(t *testing.T) {
	t.Run("partial then full", func(t *testing.T) {
		supplier := newTestSupplier(t, 0)
		po := orderedPO(t, supplier)
		itemID := po.Items[0].ID

		require.NoError(t, po.Receive([]ReceivedLot{{ItemID: itemID, Quantity: d(60), BatchNumber: "RICE25KG-20260301-000001"}}))
		assert.Equal(t, POStatusPartiallyReceived, po.Status)
		assert.True(t, po.Items[0].QuantityReceived.Equal(d(60)))
		assert.Nil(t, po.ReceivedAt)

		require.NoError(t, po.Receive([]ReceivedLot{{ItemID: itemID, Quantity: d(40), BatchNumber: "RICE25KG-20260301-000002"}}))
		assert.Equal(t, POStatusReceived, po.Status)
		assert.NotNil(t, po.ReceivedAt)
		assert.Equal(t, []string{"RICE25KG-20260301-000001", "RICE25KG-20260301-000002"}, po.Items[0].BatchNumbers)
		assert.Len(t, po.Items[0].ReceivedDates, 2)
		assert.True(t, po.ReceiveProgress().Equal(d(100)))
	})

	t.Run("over receipt is rejected, not clamped", func(t *testing.T) {
		supplier := newTestSupplier(t, 0)
		po := orderedPO(t, supplier)
		itemID := po.Items[0].ID
		require.NoError(t, po.Receive([]ReceivedLot{{ItemID: itemID, Quantity: d(60), BatchNumber: "B1"}}))

		err := po.Receive([]ReceivedLot{{ItemID: itemID, Quantity: d(41), BatchNumber: "B2"}})
		assert.Equal(t, shared.KindOverReceipt, shared.KindOf(err))
		assert.True(t, po.Items[0].QuantityReceived.Equal(d(60)))
		assert.Equal(t, []string{"B1"}, po.Items[0].BatchNumbers)
		assert.Equal(t, POStatusPartiallyReceived, po.Status)
	})

	t.Run("one bad line applies nothing", func(t *testing.T) {
		supplier := newTestSupplier(t, 0)
		po := orderedPO(t, supplier,
			ItemInput{ProductID: uuid.New(), ProductName: "A", Quantity: d(10), UnitCost: d(5)},
			ItemInput{ProductID: uuid.New(), ProductName: "B", Quantity: d(5), UnitCost: d(5)},
		)
		err := po.Receive([]ReceivedLot{
			{ItemID: po.Items[0].ID, Quantity: d(10), BatchNumber: "A1"},
			{ItemID: po.Items[1].ID, Quantity: d(6), BatchNumber: "B1"},
		})
		assert.Equal(t, shared.KindOverReceipt, shared.KindOf(err))
		assert.True(t, po.Items[0].QuantityReceived.IsZero())
		assert.Empty(t, po.Items[0].BatchNumbers)
		assert.Equal(t, POStatusOrdered, po.Status)
	})

	tests := []struct {
		name string
		line func(po *PurchaseOrder) []ReceiptLine
		code string
	}{
		{"empty", func(*PurchaseOrder) []ReceiptLine { return nil }, "NO_ITEMS"},
		{"unknown item", func(*PurchaseOrder) []ReceiptLine {
			return []ReceiptLine{{ItemID: uuid.New(), Quantity: d(1)}}
		}, "ITEM_NOT_FOUND"},
		{"zero quantity", func(po *PurchaseOrder) []ReceiptLine {
			return []ReceiptLine{{ItemID: po.Items[0].ID, Quantity: d(0)}}
		}, "INVALID_QUANTITY"},
		{"duplicate item", func(po *PurchaseOrder) []ReceiptLine {
			return []ReceiptLine{{ItemID: po.Items[0].ID, Quantity: d(1)}, {ItemID: po.Items[0].ID, Quantity: d(1)}}
		}, "DUPLICATE_ITEM"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			po := orderedPO(t, newTestSupplier(t, 0))
			err := po.ValidateReceipt(tt.line(po))
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.code, de.Code)
		})
	}

	t.Run("not yet ordered", func(t *testing.T) {
		supplier := newTestSupplier(t, 0)
		author := uuid.New()
		po := newTestPO(t, supplier, author)
		require.NoError(t, po.Submit(author))
		err := po.ValidateReceipt([]ReceiptLine{{ItemID: po.Items[0].ID, Quantity: d(1)}})
		assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))
	})
}

func TestPurchaseOrder_Cancel(t *testing.T) {
	t.Run("reason required", func(t *testing.T) {
		supplier := newTestSupplier(t, 0)
		po := newTestPO(t, supplier, uuid.New())
		_, err := po.Cancel(supplier, "  ", uuid.New())
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
		assert.Equal(t, POStatusDraft, po.Status)
	})

	t.Run("draft cancel leaves supplier untouched", func(t *testing.T) {
		supplier := newTestSupplier(t, 0)
		po := newTestPO(t, supplier, uuid.New())
		_, err := po.Cancel(supplier, "duplicate order", uuid.New())
		require.NoError(t, err)
		assert.Equal(t, POStatusCancelled, po.Status)
		assert.True(t, supplier.CurrentBalance.IsZero())
	})

	t.Run("rolls back outstanding balance", func(t *testing.T) {
		supplier := newTestSupplier(t, 0)
		po := orderedPO(t, supplier)
		require.NoError(t, po.RecordPayment(supplier, d(30000)))
		require.True(t, supplier.CurrentBalance.Equal(d(70000)))

		_, err := po.Cancel(supplier, "supplier out of stock", uuid.New())
		require.NoError(t, err)
		assert.True(t, supplier.CurrentBalance.IsZero())
		assert.Equal(t, "supplier out of stock", po.CancelReason)
		assert.NotNil(t, po.CancelledAt)
	})

	t.Run("partially received keeps lots and reports them", func(t *testing.T) {
		supplier := newTestSupplier(t, 0)
		po := orderedPO(t, supplier)
		require.NoError(t, po.Receive([]ReceivedLot{{ItemID: po.Items[0].ID, Quantity: d(60), BatchNumber: "B1"}}))

		batches, err := po.Cancel(supplier, "rest never shipped", uuid.New())
		require.NoError(t, err)
		assert.Equal(t, []string{"B1"}, batches)
		assert.True(t, po.Items[0].QuantityReceived.Equal(d(60)))

		events := po.GetDomainEvents()
		cancelled, ok := events[len(events)-1].(*PurchaseOrderCancelledEvent)
		require.True(t, ok)
		assert.Equal(t, []string{"B1"}, cancelled.ReceivedBatches)
	})

	t.Run("received is terminal", func(t *testing.T) {
		supplier := newTestSupplier(t, 0)
		po := orderedPO(t, supplier)
		require.NoError(t, po.Receive([]ReceivedLot{{ItemID: po.Items[0].ID, Quantity: d(100), BatchNumber: "B1"}}))
		_, err := po.Cancel(supplier, "too late", uuid.New())
		assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))
		assert.True(t, supplier.CurrentBalance.Equal(d(100000)))
	})
}

func TestPurchaseOrder_RecordPayment(t *testing.T) {
	t.Run("over payment is rejected", func(t *testing.T) {
		supplier := newTestSupplier(t, 0)
		po := orderedPO(t, supplier)
		err := po.RecordPayment(supplier, d(100001))
		assert.Equal(t, shared.KindOverPayment, shared.KindOf(err))
		assert.True(t, po.AmountPaid.IsZero())
		assert.True(t, supplier.CurrentBalance.Equal(d(100000)))
	})

	t.Run("non positive amount", func(t *testing.T) {
		supplier := newTestSupplier(t, 0)
		po := orderedPO(t, supplier)
		assert.Equal(t, shared.KindValidation, shared.KindOf(po.RecordPayment(supplier, d(0))))
	})

	t.Run("prepayment before approval only touches the order", func(t *testing.T) {
		supplier := newTestSupplier(t, 0)
		author := uuid.New()
		po := newTestPO(t, supplier, author)
		require.NoError(t, po.RecordPayment(supplier, d(20000)))
		assert.True(t, supplier.CurrentBalance.IsZero())
		assert.Equal(t, PaymentStatusPartial, po.PaymentStatus)

		require.NoError(t, po.Submit(author))
		require.NoError(t, po.Approve(supplier, uuid.New()))
		assert.True(t, supplier.CurrentBalance.Equal(d(80000)))
		assert.True(t, supplier.CurrentBalance.Equal(po.SupplierExposure()))
	})

	t.Run("cancelled order", func(t *testing.T) {
		supplier := newTestSupplier(t, 0)
		po := newTestPO(t, supplier, uuid.New())
		_, err := po.Cancel(supplier, "mistake", uuid.New())
		require.NoError(t, err)
		assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(po.RecordPayment(supplier, d(1))))
	})

	t.Run("fully paid", func(t *testing.T) {
		supplier := newTestSupplier(t, 0)
		po := orderedPO(t, supplier)
		require.NoError(t, po.RecordPayment(supplier, d(100000)))
		assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(po.RecordPayment(supplier, d(1))))
	})
}

// Ordering 100 units at 1000, receiving 60 then 40 and paying twice 50,000
// ends Received and Paid with a zero supplier balance.
func TestPurchaseOrder_FullLifecycle(t *testing.T) {
	supplier := newTestSupplier(t, 500000)
	author := uuid.New()
	po := newTestPO(t, supplier, author)
	require.True(t, po.GrandTotal.Equal(d(100000)))

	require.NoError(t, po.Submit(author))
	require.True(t, supplier.CurrentBalance.IsZero())
	require.NoError(t, po.Approve(supplier, uuid.New()))
	require.True(t, supplier.CurrentBalance.Equal(d(100000)))
	require.NoError(t, po.MarkOrdered())

	itemID := po.Items[0].ID
	require.NoError(t, po.Receive([]ReceivedLot{{ItemID: itemID, Quantity: d(60), BatchNumber: "B1"}}))
	assert.Equal(t, POStatusPartiallyReceived, po.Status)
	require.NoError(t, po.Receive([]ReceivedLot{{ItemID: itemID, Quantity: d(40), BatchNumber: "B2"}}))
	assert.Equal(t, POStatusReceived, po.Status)

	require.NoError(t, po.RecordPayment(supplier, d(50000)))
	assert.Equal(t, PaymentStatusPartial, po.PaymentStatus)
	assert.True(t, po.BalanceDue.Equal(d(50000)))
	require.NoError(t, po.RecordPayment(supplier, d(50000)))

	assert.Equal(t, PaymentStatusPaid, po.PaymentStatus)
	assert.True(t, po.BalanceDue.IsZero())
	assert.True(t, po.AmountPaid.Equal(po.GrandTotal))
	assert.True(t, supplier.CurrentBalance.IsZero())
}

func TestPurchaseOrder_IsOverdue(t *testing.T) {
	supplier := newTestSupplier(t, 0)
	po := orderedPO(t, supplier)
	require.NotNil(t, po.DueDate)

	assert.False(t, po.IsOverdue(po.DueDate.Add(-time.Hour)))
	assert.True(t, po.IsOverdue(po.DueDate.Add(time.Hour)))

	require.NoError(t, po.RecordPayment(supplier, po.BalanceDue))
	assert.False(t, po.IsOverdue(po.DueDate.Add(time.Hour)))
}

func TestNextNumber(t *testing.T) {
	assert.Equal(t, "PO-2026-00001", NextNumber(PONumberPrefix, 2026, ""))
	assert.Equal(t, "PO-2026-00043", NextNumber(PONumberPrefix, 2026, "PO-2026-00042"))
	assert.Equal(t, "PO-2027-00001", NextNumber(PONumberPrefix, 2027, "PO-2026-00042"))
	assert.Equal(t, "SO-2026-00001", NextNumber(SalesNumberPrefix, 2026, "SO-2026-garbage"))
}

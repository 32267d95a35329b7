package finance

import (
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	poID, supplierID, clerk := uuid.New(), uuid.New(), uuid.New()

	t.Run("mobile money keeps mobile references only", func(t *testing.T) {
		p, err := NewPayment(poID, "PO-2026-00001", supplierID, decimal.NewFromInt(5000), MethodMobileMoney, nil, PaymentDetails{
			MobileProvider: ProviderMPesa,
			MobileNumber:   " 0712345678 ",
			ChequeNumber:   "000123",
		}, clerk)
		require.NoError(t, err)
		assert.Equal(t, "0712345678", p.MobileNumber)
		assert.Equal(t, ProviderMPesa, p.MobileProvider)
		assert.Empty(t, p.ChequeNumber)
		assert.Equal(t, p.CreatedAt, p.PaidAt)
	})

	t.Run("defaults to cash", func(t *testing.T) {
		p, err := NewPayment(poID, "PO-2026-00001", supplierID, decimal.NewFromInt(1), "", nil, PaymentDetails{}, clerk)
		require.NoError(t, err)
		assert.Equal(t, MethodCash, p.Method)
	})

	future := time.Now().Add(48 * time.Hour)
	tests := []struct {
		name    string
		amount  decimal.Decimal
		method  PaymentMethod
		paidAt  *time.Time
		details PaymentDetails
		code    string
	}{
		{"zero amount", decimal.Zero, MethodCash, nil, PaymentDetails{}, "INVALID_AMOUNT"},
		{"unknown method", decimal.NewFromInt(1), "Barter", nil, PaymentDetails{}, "INVALID_PAYMENT_METHOD"},
		{"unknown provider", decimal.NewFromInt(1), MethodMobileMoney, nil, PaymentDetails{MobileProvider: "Pigeon"}, "INVALID_MOBILE_PROVIDER"},
		{"future date", decimal.NewFromInt(1), MethodCash, &future, PaymentDetails{}, "INVALID_PAYMENT_DATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPayment(poID, "PO-2026-00001", supplierID, tt.amount, tt.method, tt.paidAt, tt.details, clerk)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.code, de.Code)
		})
	}
}

func TestNewStatement(t *testing.T) {
	supplier, err := partner.NewSupplier(partner.SupplierInput{Name: "Acme"})
	require.NoError(t, err)
	author := uuid.New()
	items := []trade.ItemInput{{ProductID: uuid.New(), Quantity: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(100)}}

	open, err := trade.NewPurchaseOrder("PO-2026-00001", supplier, author, items, "", trade.Charges{}, "")
	require.NoError(t, err)
	cancelled, err := trade.NewPurchaseOrder("PO-2026-00002", supplier, author, items, "", trade.Charges{}, "")
	require.NoError(t, err)
	_, err = cancelled.Cancel(supplier, "wrong supplier", author)
	require.NoError(t, err)

	pay, err := NewPayment(open.ID, open.PONumber, supplier.ID, decimal.NewFromInt(300), MethodCash, nil, PaymentDetails{}, author)
	require.NoError(t, err)

	st := NewStatement(supplier.ID, nil, nil, []trade.PurchaseOrder{*open, *cancelled}, []Payment{*pay}, decimal.NewFromInt(700))
	assert.Len(t, st.Orders, 2)
	assert.Equal(t, 2, st.Totals.POCount)
	assert.Equal(t, 1, st.Totals.PaymentCount)
	assert.True(t, st.Totals.TotalOrdered.Equal(decimal.NewFromInt(1000)))
	assert.True(t, st.Totals.TotalPaid.Equal(decimal.NewFromInt(300)))
	assert.True(t, st.Totals.BalanceDue.Equal(decimal.NewFromInt(700)))
}

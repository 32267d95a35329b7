package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a supplier payment was made
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "Cash"
	MethodCheque       PaymentMethod = "Cheque"
	MethodBankTransfer PaymentMethod = "Bank Transfer"
	MethodMobileMoney  PaymentMethod = "Mobile Money"
	MethodCreditCard   PaymentMethod = "Credit Card"
	MethodOther        PaymentMethod = "Other"
)

// IsValid checks if the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodCheque, MethodBankTransfer, MethodMobileMoney, MethodCreditCard, MethodOther:
		return true
	}
	return false
}

// MobileProvider is the mobile money network used for a payment
type MobileProvider string

const (
	ProviderMPesa       MobileProvider = "M-Pesa"
	ProviderAirtelMoney MobileProvider = "Airtel Money"
	ProviderTigoPesa    MobileProvider = "Tigo Pesa"
	ProviderHalopesa    MobileProvider = "Halopesa"
	ProviderEzyPesa     MobileProvider = "Ezy Pesa"
	ProviderOther       MobileProvider = "Other"
)

// IsValid checks if the provider is known
func (p MobileProvider) IsValid() bool {
	switch p {
	case ProviderMPesa, ProviderAirtelMoney, ProviderTigoPesa, ProviderHalopesa, ProviderEzyPesa, ProviderOther:
		return true
	}
	return false
}

// PaymentDetails holds the method specific references of a payment
type PaymentDetails struct {
	ChequeNumber    string
	BankName        string
	ReferenceNumber string
	MobileNumber    string
	MobileProvider  MobileProvider
	Notes           string
}

// Payment is one money movement against a purchase order. Payments are
// never edited; a correction is recorded as a new payment.
type Payment struct {
	shared.BaseEntity
	POID            uuid.UUID
	PONumber        string
	SupplierID      uuid.UUID
	Amount          decimal.Decimal
	Method          PaymentMethod
	PaidAt          time.Time
	ChequeNumber    string
	BankName        string
	ReferenceNumber string
	MobileNumber    string
	MobileProvider  MobileProvider
	Notes           string
	RecordedBy      uuid.UUID
}

// NewPayment validates and creates a payment record
func NewPayment(poID uuid.UUID, poNumber string, supplierID uuid.UUID, amount decimal.Decimal, method PaymentMethod, paidAt *time.Time, details PaymentDetails, recordedBy uuid.UUID) (*Payment, error) {
	if poID == uuid.Nil || supplierID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_REFERENCE", "Payment must reference a purchase order and supplier")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Payment amount must be greater than zero")
	}
	if method == "" {
		method = MethodCash
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown payment method: %s", method))
	}
	if details.MobileProvider != "" && !details.MobileProvider.IsValid() {
		return nil, shared.NewValidationError("INVALID_MOBILE_PROVIDER", fmt.Sprintf("Unknown mobile provider: %s", details.MobileProvider))
	}

	p := &Payment{
		BaseEntity: shared.NewBaseEntity(),
		POID:       poID,
		PONumber:   poNumber,
		SupplierID: supplierID,
		Amount:     amount,
		Method:     method,
		Notes:      strings.TrimSpace(details.Notes),
		RecordedBy: recordedBy,
	}
	p.PaidAt = p.CreatedAt
	if paidAt != nil {
		if paidAt.After(p.CreatedAt) {
			return nil, shared.NewValidationError("INVALID_PAYMENT_DATE", "Payment date cannot be in the future")
		}
		p.PaidAt = paidAt.UTC()
	}

	// Only the references that belong to the method are kept
	switch method {
	case MethodCheque:
		p.ChequeNumber = strings.TrimSpace(details.ChequeNumber)
		p.BankName = strings.TrimSpace(details.BankName)
	case MethodBankTransfer:
		p.ReferenceNumber = strings.TrimSpace(details.ReferenceNumber)
		p.BankName = strings.TrimSpace(details.BankName)
	case MethodMobileMoney:
		p.MobileNumber = strings.TrimSpace(details.MobileNumber)
		p.MobileProvider = details.MobileProvider
		p.ReferenceNumber = strings.TrimSpace(details.ReferenceNumber)
	default:
		p.ReferenceNumber = strings.TrimSpace(details.ReferenceNumber)
	}
	return p, nil
}

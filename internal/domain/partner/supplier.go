package partner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeSupplier is the aggregate type for suppliers
const AggregateTypeSupplier = "Supplier"

var supplierEmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Supplier is a vendor we buy from. It carries the credit ledger: the
// credit limit and the running balance owed on approved purchase orders.
type Supplier struct {
	shared.BaseAggregateRoot
	Name           string
	ContactPerson  string
	PhoneNumber    string
	Email          string
	Address        string
	TaxID          string
	CreditLimit    decimal.Decimal // zero means unlimited
	CurrentBalance decimal.Decimal
	PaymentTerms   PaymentTerms
	IsActive       bool
}

// SupplierInput carries the editable supplier attributes
type SupplierInput struct {
	Name          string
	ContactPerson string
	PhoneNumber   string
	Email         string
	Address       string
	TaxID         string
	CreditLimit   decimal.Decimal
	PaymentTerms  PaymentTerms
}

// NewSupplier creates an active supplier with a zero balance
func NewSupplier(in SupplierInput) (*Supplier, error) {
	s := &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CurrentBalance:    decimal.Zero,
		IsActive:          true,
	}
	if err := s.apply(in); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces the editable attributes. The balance is untouched.
func (s *Supplier) Update(in SupplierInput) error {
	if err := s.apply(in); err != nil {
		return err
	}
	s.Touch()
	return nil
}

func (s *Supplier) apply(in SupplierInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return shared.NewValidationError("INVALID_NAME", "Supplier name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("INVALID_NAME", "Supplier name cannot exceed 200 characters")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email != "" && !supplierEmailPattern.MatchString(email) {
		return shared.NewValidationError("INVALID_EMAIL", "Invalid email format")
	}
	if in.CreditLimit.IsNegative() {
		return shared.NewValidationError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}
	terms := in.PaymentTerms
	if terms == "" {
		terms = DefaultPaymentTerms
	}
	if _, err := ParsePaymentTerms(string(terms)); err != nil {
		return err
	}

	s.Name = name
	s.ContactPerson = strings.TrimSpace(in.ContactPerson)
	s.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	s.Email = email
	s.Address = strings.TrimSpace(in.Address)
	s.TaxID = strings.TrimSpace(in.TaxID)
	s.CreditLimit = in.CreditLimit
	s.PaymentTerms = terms
	return nil
}

// HasUnlimitedCredit reports whether no credit limit applies
func (s *Supplier) HasUnlimitedCredit() bool {
	return s.CreditLimit.IsZero()
}

// AvailableCredit returns limit minus balance floored at zero, or nil when
// credit is unlimited.
func (s *Supplier) AvailableCredit() *decimal.Decimal {
	if s.HasUnlimitedCredit() {
		return nil
	}
	available := s.CreditLimit.Sub(s.CurrentBalance)
	if available.IsNegative() {
		available = decimal.Zero
	}
	return &available
}

// CreditUtilization returns balance as a percentage of the limit, 0 when
// credit is unlimited.
func (s *Supplier) CreditUtilization() decimal.Decimal {
	if s.HasUnlimitedCredit() {
		return decimal.Zero
	}
	return s.CurrentBalance.Div(s.CreditLimit).Mul(decimal.NewFromInt(100)).Round(2)
}

// CheckCredit fails with CreditLimitExceeded when adding amount to the
// balance would pass the credit limit.
func (s *Supplier) CheckCredit(amount decimal.Decimal) error {
	if s.HasUnlimitedCredit() {
		return nil
	}
	if s.CurrentBalance.Add(amount).GreaterThan(s.CreditLimit) {
		return shared.ErrCreditLimitExceeded.
			WithDetail("credit_limit", s.CreditLimit.String()).
			WithDetail("current_balance", s.CurrentBalance.String()).
			WithDetail("requested", amount.String()).
			WithDetail("available_credit", s.AvailableCredit().String())
	}
	return nil
}

// AddExposure increases the balance owed, when a purchase order is approved
func (s *Supplier) AddExposure(amount decimal.Decimal, reference string) error {
	if amount.IsNegative() {
		return shared.NewValidationError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	if amount.IsZero() {
		return nil
	}
	old := s.CurrentBalance
	s.CurrentBalance = s.CurrentBalance.Add(amount)
	s.Touch()
	s.AddDomainEvent(NewSupplierBalanceChangedEvent(s, old, reference))
	return nil
}

// ReduceExposure decreases the balance owed, on payment or cancellation
func (s *Supplier) ReduceExposure(amount decimal.Decimal, reference string) error {
	if amount.IsNegative() {
		return shared.NewValidationError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	if amount.IsZero() {
		return nil
	}
	if amount.GreaterThan(s.CurrentBalance) {
		return shared.NewKindError(shared.KindInternal, "BALANCE_UNDERFLOW",
			fmt.Sprintf("Reducing supplier balance %s by %s would go negative", s.CurrentBalance, amount))
	}
	old := s.CurrentBalance
	s.CurrentBalance = s.CurrentBalance.Sub(amount)
	s.Touch()
	s.AddDomainEvent(NewSupplierBalanceChangedEvent(s, old, reference))
	return nil
}

// Reconcile replaces the running balance with a recomputed one and returns
// the drift (recomputed minus stored).
func (s *Supplier) Reconcile(recomputed decimal.Decimal) decimal.Decimal {
	drift := recomputed.Sub(s.CurrentBalance)
	if !drift.IsZero() {
		old := s.CurrentBalance
		s.CurrentBalance = recomputed
		s.Touch()
		s.AddDomainEvent(NewSupplierBalanceChangedEvent(s, old, "reconcile"))
	}
	return drift
}

// Deactivate excludes the supplier from new purchase orders
func (s *Supplier) Deactivate() {
	s.IsActive = false
	s.Touch()
}

// Activate re-enables the supplier
func (s *Supplier) Activate() {
	s.IsActive = true
	s.Touch()
}

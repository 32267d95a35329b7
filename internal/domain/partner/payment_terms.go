package partner

import (
	"regexp"
	"strconv"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
)

// PaymentTerms is the agreed credit window for paying a purchase order
type PaymentTerms string

const (
	TermsCashOnDelivery PaymentTerms = "Cash on Delivery"
	TermsCredit7        PaymentTerms = "Credit 7 days"
	TermsCredit15       PaymentTerms = "Credit 15 days"
	TermsCredit30       PaymentTerms = "Credit 30 days"
	TermsCredit60       PaymentTerms = "Credit 60 days"
	TermsCredit90       PaymentTerms = "Credit 90 days"

	DefaultPaymentTerms = TermsCredit30
)

var creditTermsPattern = regexp.MustCompile(`^Credit (\d+) days$`)

// ParsePaymentTerms validates terms; empty yields the default
func ParsePaymentTerms(s string) (PaymentTerms, error) {
	if s == "" {
		return DefaultPaymentTerms, nil
	}
	switch t := PaymentTerms(s); t {
	case TermsCashOnDelivery, TermsCredit7, TermsCredit15, TermsCredit30, TermsCredit60, TermsCredit90:
		return t, nil
	}
	return "", shared.NewValidationError("INVALID_PAYMENT_TERMS", "Unknown payment terms: "+s)
}

// CreditDays returns the length of the credit window, 0 for cash terms
func (t PaymentTerms) CreditDays() int {
	m := creditTermsPattern.FindStringSubmatch(string(t))
	if m == nil {
		return 0
	}
	days, _ := strconv.Atoi(m[1])
	return days
}

// DueDate returns orderedAt plus the credit window, or nil for cash terms
func (t PaymentTerms) DueDate(orderedAt time.Time) *time.Time {
	days := t.CreditDays()
	if days == 0 {
		return nil
	}
	due := orderedAt.AddDate(0, 0, days)
	return &due
}

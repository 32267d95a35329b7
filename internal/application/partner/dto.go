package partner

import (
	"time"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateSupplierRequest represents a request to create a supplier
type CreateSupplierRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	ContactPerson string          `json:"contact_person" binding:"max=100"`
	PhoneNumber   string          `json:"phone_number" binding:"max=50"`
	Email         string          `json:"email" binding:"omitempty,email,max=200"`
	Address       string          `json:"address" binding:"max=500"`
	TaxID         string          `json:"tax_id" binding:"max=50"`
	CreditLimit   decimal.Decimal `json:"credit_limit"`
	PaymentTerms  string          `json:"payment_terms"`
}

// UpdateSupplierRequest represents a request to update a supplier. Omitted
// fields keep their current value.
type UpdateSupplierRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=200"`
	ContactPerson *string          `json:"contact_person" binding:"omitempty,max=100"`
	PhoneNumber   *string          `json:"phone_number" binding:"omitempty,max=50"`
	Email         *string          `json:"email" binding:"omitempty,max=200"`
	Address       *string          `json:"address" binding:"omitempty,max=500"`
	TaxID         *string          `json:"tax_id" binding:"omitempty,max=50"`
	CreditLimit   *decimal.Decimal `json:"credit_limit"`
	PaymentTerms  *string          `json:"payment_terms"`
	IsActive      *bool            `json:"is_active"`
}

// SupplierListFilter represents filter options for the supplier list
type SupplierListFilter struct {
	Search     string `form:"search"`
	ActiveOnly bool   `form:"active_only"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// StatementRequest bounds a supplier statement
type StatementRequest struct {
	From   *time.Time `form:"from" time_format:"2006-01-02"`
	To     *time.Time `form:"to" time_format:"2006-01-02"`
	Format string     `form:"format" binding:"omitempty,oneof=json xlsx"`
}

// SupplierResponse represents a supplier with its credit position.
// AvailableCredit is null when credit is unlimited.
type SupplierResponse struct {
	ID                uuid.UUID        `json:"id"`
	Name              string           `json:"name"`
	ContactPerson     string           `json:"contact_person"`
	PhoneNumber       string           `json:"phone_number"`
	Email             string           `json:"email"`
	Address           string           `json:"address"`
	TaxID             string           `json:"tax_id"`
	CreditLimit       decimal.Decimal  `json:"credit_limit"`
	CurrentBalance    decimal.Decimal  `json:"current_balance"`
	AvailableCredit   *decimal.Decimal `json:"available_credit"`
	UnlimitedCredit   bool             `json:"unlimited_credit"`
	CreditUtilization decimal.Decimal  `json:"credit_utilization"`
	PaymentTerms      string           `json:"payment_terms"`
	IsActive          bool             `json:"is_active"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	Version           int              `json:"version"`
}

// ReconcileResponse reports the outcome of a balance reconciliation
type ReconcileResponse struct {
	SupplierID        uuid.UUID       `json:"supplier_id"`
	PreviousBalance   decimal.Decimal `json:"previous_balance"`
	RecomputedBalance decimal.Decimal `json:"recomputed_balance"`
	Drift             decimal.Decimal `json:"drift"`
}

// ToSupplierResponse converts a domain Supplier
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:                s.ID,
		Name:              s.Name,
		ContactPerson:     s.ContactPerson,
		PhoneNumber:       s.PhoneNumber,
		Email:             s.Email,
		Address:           s.Address,
		TaxID:             s.TaxID,
		CreditLimit:       s.CreditLimit,
		CurrentBalance:    s.CurrentBalance,
		AvailableCredit:   s.AvailableCredit(),
		UnlimitedCredit:   s.HasUnlimitedCredit(),
		CreditUtilization: s.CreditUtilization(),
		PaymentTerms:      string(s.PaymentTerms),
		IsActive:          s.IsActive,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
		Version:           s.GetVersion(),
	}
}

func (r UpdateSupplierRequest) applyTo(s *partner.Supplier) partner.SupplierInput {
	in := partner.SupplierInput{
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		PhoneNumber:   s.PhoneNumber,
		Email:         s.Email,
		Address:       s.Address,
		TaxID:         s.TaxID,
		CreditLimit:   s.CreditLimit,
		PaymentTerms:  s.PaymentTerms,
	}
	if r.Name != nil {
		in.Name = *r.Name
	}
	if r.ContactPerson != nil {
		in.ContactPerson = *r.ContactPerson
	}
	if r.PhoneNumber != nil {
		in.PhoneNumber = *r.PhoneNumber
	}
	if r.Email != nil {
		in.Email = *r.Email
	}
	if r.Address != nil {
		in.Address = *r.Address
	}
	if r.TaxID != nil {
		in.TaxID = *r.TaxID
	}
	if r.CreditLimit != nil {
		in.CreditLimit = *r.CreditLimit
	}
	if r.PaymentTerms != nil {
		in.PaymentTerms = partner.PaymentTerms(*r.PaymentTerms)
	}
	return in
}

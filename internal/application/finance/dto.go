package finance

import (
	"time"

	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentResponse represents a supplier payment in API responses
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	POID            uuid.UUID       `json:"po_id"`
	PONumber        string          `json:"po_number"`
	SupplierID      uuid.UUID       `json:"supplier_id"`
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"payment_method"`
	PaidAt          time.Time       `json:"payment_date"`
	ChequeNumber    string          `json:"cheque_number,omitempty"`
	BankName        string          `json:"bank_name,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	MobileNumber    string          `json:"mobile_number,omitempty"`
	MobileProvider  string          `json:"mobile_provider,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	RecordedBy      uuid.UUID       `json:"recorded_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a domain Payment
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		POID:            p.POID,
		PONumber:        p.PONumber,
		SupplierID:      p.SupplierID,
		Amount:          p.Amount,
		Method:          string(p.Method),
		PaidAt:          p.PaidAt,
		ChequeNumber:    p.ChequeNumber,
		BankName:        p.BankName,
		ReferenceNumber: p.ReferenceNumber,
		MobileNumber:    p.MobileNumber,
		MobileProvider:  string(p.MobileProvider),
		Notes:           p.Notes,
		RecordedBy:      p.RecordedBy,
		CreatedAt:       p.CreatedAt,
	}
}

// ToPaymentResponses converts a list of payments
func ToPaymentResponses(payments []finance.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}

// CreateExpenseTypeRequest represents a request to create an expense type
type CreateExpenseTypeRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// ExpenseTypeResponse represents an expense type in API responses
type ExpenseTypeResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsSalary  bool      `json:"is_salary"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateExpenseRecordRequest represents a request to record an expense
type CreateExpenseRecordRequest struct {
	TypeID        uuid.UUID       `json:"expense_type_id" binding:"required"`
	Subtype       string          `json:"expense_name" binding:"max=100"`
	Amount        decimal.Decimal `json:"amount" binding:"required,decimal_gt0"`
	DateOfExpense *time.Time      `json:"date_of_expense"`
	Notes         string          `json:"notes" binding:"max=1000"`
}

// ExpenseRecordFilter represents filter options for the expense list
type ExpenseRecordFilter struct {
	TypeID    *uuid.UUID `form:"type_id"`
	ManagerID *uuid.UUID `form:"manager_id"`
	Search    string     `form:"search"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ExpenseRecordResponse represents an expense record in API responses
type ExpenseRecordResponse struct {
	ID            uuid.UUID       `json:"id"`
	TypeID        uuid.UUID       `json:"expense_type_id"`
	TypeName      string          `json:"expense_type"`
	Subtype       string          `json:"expense_name,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	DateOfExpense time.Time       `json:"date_of_expense"`
	Notes         string          `json:"notes,omitempty"`
	ManagerID     uuid.UUID       `json:"manager_id"`
	ManagerName   string          `json:"manager_name"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ExpenseSuggestionResponse is one autocomplete entry
type ExpenseSuggestionResponse struct {
	Name       string    `json:"name"`
	UsageCount int64     `json:"usage_count"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// ToExpenseTypeResponse converts a domain ExpenseType
func ToExpenseTypeResponse(t *finance.ExpenseType) ExpenseTypeResponse {
	return ExpenseTypeResponse{ID: t.ID, Name: t.Name, IsSalary: t.IsSalary(), CreatedBy: t.CreatedBy, CreatedAt: t.CreatedAt}
}

// ToExpenseRecordResponse converts a domain ExpenseRecord
func ToExpenseRecordResponse(r *finance.ExpenseRecord) ExpenseRecordResponse {
	return ExpenseRecordResponse{
		ID:            r.ID,
		TypeID:        r.TypeID,
		TypeName:      r.TypeName,
		Subtype:       r.Subtype,
		Amount:        r.Amount,
		DateOfExpense: r.DateOfExpense,
		Notes:         r.Notes,
		ManagerID:     r.ManagerID,
		ManagerName:   r.ManagerName,
		CreatedAt:     r.CreatedAt,
	}
}

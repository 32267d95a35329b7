package finance

import (
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

const (
	AggregateTypeExpense   = "Expense"
	maxExpenseNameLength   = 100
	salaryExpenseNameToken = "salary"
)

var expenseFolder = cases.Fold()

// NormalizeExpenseName folds case and collapses whitespace so that
// "Fuel ", "fuel" and "FUEL" share one key.
func NormalizeExpenseName(name string) string {
	return expenseFolder.String(strings.Join(strings.Fields(name), " "))
}

// IsSalaryName reports whether the name denotes payroll. Salary entries are
// restricted to the Boss.
func IsSalaryName(name string) bool {
	return strings.Contains(NormalizeExpenseName(name), salaryExpenseNameToken)
}

// ExpenseType is a user-defined grouping of expenses
type ExpenseType struct {
	shared.BaseEntity
	Name           string
	NormalizedName string
	CreatedBy      uuid.UUID
}

// NewExpenseType creates a type
func NewExpenseType(name string, createdBy uuid.UUID) (*ExpenseType, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return nil, shared.NewValidationError("INVALID_NAME", "Expense type name cannot be empty")
	}
	if len(name) > maxExpenseNameLength {
		return nil, shared.NewValidationError("INVALID_NAME", "Expense type name cannot exceed 100 characters")
	}
	return &ExpenseType{
		BaseEntity:     shared.NewBaseEntity(),
		Name:           name,
		NormalizedName: NormalizeExpenseName(name),
		CreatedBy:      createdBy,
	}, nil
}

// IsSalary reports whether records of this type are payroll
func (t *ExpenseType) IsSalary() bool {
	return IsSalaryName(t.Name)
}

// ExpenseRecord is money spent on running the business
type ExpenseRecord struct {
	shared.BaseEntity
	TypeID        uuid.UUID
	TypeName      string
	Subtype       string
	Amount        decimal.Decimal
	DateOfExpense time.Time
	Notes         string
	ManagerID     uuid.UUID
	ManagerName   string
}

// ExpenseInput carries a new expense record
type ExpenseInput struct {
	Subtype       string
	Amount        decimal.Decimal
	DateOfExpense *time.Time
	Notes         string
}

// NewExpenseRecord creates a record of the given type
func NewExpenseRecord(t *ExpenseType, in ExpenseInput, managerID uuid.UUID, managerName string) (*ExpenseRecord, error) {
	if t == nil {
		return nil, shared.NewValidationError("INVALID_EXPENSE_TYPE", "Expense type is required")
	}
	if !in.Amount.IsPositive() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Expense amount must be greater than zero")
	}
	subtype := strings.Join(strings.Fields(in.Subtype), " ")
	if len(subtype) > maxExpenseNameLength {
		return nil, shared.NewValidationError("INVALID_SUBTYPE", "Expense name cannot exceed 100 characters")
	}

	r := &ExpenseRecord{
		BaseEntity:  shared.NewBaseEntity(),
		TypeID:      t.ID,
		TypeName:    t.Name,
		Subtype:     subtype,
		Amount:      in.Amount,
		Notes:       strings.TrimSpace(in.Notes),
		ManagerID:   managerID,
		ManagerName: managerName,
	}
	r.DateOfExpense = r.CreatedAt
	if in.DateOfExpense != nil {
		r.DateOfExpense = in.DateOfExpense.UTC()
	}
	return r, nil
}

// IsSalary reports whether the record is payroll by type or by name
func (r *ExpenseRecord) IsSalary() bool {
	return IsSalaryName(r.TypeName) || IsSalaryName(r.Subtype)
}

// ExpenseSuggestion is an entry of the free-text expense name index used
// for autocompletion. Entries only ever gain usage.
type ExpenseSuggestion struct {
	NormalizedKey string
	DisplayName   string
	UsageCount    int64
	LastUsedAt    time.Time
}

// NewExpenseSuggestion starts an index entry at its first use. The display
// name keeps the spelling first seen.
func NewExpenseSuggestion(name string, at time.Time) *ExpenseSuggestion {
	display := strings.Join(strings.Fields(name), " ")
	return &ExpenseSuggestion{
		NormalizedKey: NormalizeExpenseName(display),
		DisplayName:   display,
		UsageCount:    1,
		LastUsedAt:    at,
	}
}

// Use records one more use of the name
func (s *ExpenseSuggestion) Use(at time.Time) {
	s.UsageCount++
	if at.After(s.LastUsedAt) {
		s.LastUsedAt = at
	}
}

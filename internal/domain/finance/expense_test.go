package finance

import (
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeExpenseName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Fuel", "fuel"},
		{"  FUEL  ", "fuel"},
		{"Generator   Fuel", "generator fuel"},
		{"Straße", "strasse"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeExpenseName(tt.in), tt.in)
	}
}

func TestIsSalaryName(t *testing.T) {
	assert.True(t, IsSalaryName("Salary"))
	assert.True(t, IsSalaryName("Monthly SALARY advance"))
	assert.False(t, IsSalaryName("Wages"))
}

func TestNewExpenseType(t *testing.T) {
	et, err := NewExpenseType("  Staff   Salary ", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "Staff Salary", et.Name)
	assert.Equal(t, "staff salary", et.NormalizedName)
	assert.True(t, et.IsSalary())

	_, err = NewExpenseType("   ", uuid.New())
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestNewExpenseRecord(t *testing.T) {
	fuel, err := NewExpenseType("Transport", uuid.New())
	require.NoError(t, err)
	manager := uuid.New()

	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	r, err := NewExpenseRecord(fuel, ExpenseInput{Subtype: " Boda  fare ", Amount: decimal.NewFromInt(3000), DateOfExpense: &day}, manager, "Neema")
	require.NoError(t, err)
	assert.Equal(t, "Boda fare", r.Subtype)
	assert.Equal(t, day, r.DateOfExpense)
	assert.Equal(t, "Transport", r.TypeName)
	assert.False(t, r.IsSalary())

	_, err = NewExpenseRecord(fuel, ExpenseInput{Amount: decimal.Zero}, manager, "Neema")
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	_, err = NewExpenseRecord(nil, ExpenseInput{Amount: decimal.NewFromInt(1)}, manager, "Neema")
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	r, err = NewExpenseRecord(fuel, ExpenseInput{Subtype: "salary top-up", Amount: decimal.NewFromInt(1)}, manager, "Neema")
	require.NoError(t, err)
	assert.True(t, r.IsSalary())
}

func TestExpenseSuggestion_Use(t *testing.T) {
	first := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	s := NewExpenseSuggestion(" Boda Fare", first)
	assert.Equal(t, "boda fare", s.NormalizedKey)
	assert.Equal(t, "Boda Fare", s.DisplayName)

	s.Use(first.Add(time.Hour))
	s.Use(first)
	assert.Equal(t, int64(3), s.UsageCount)
	assert.Equal(t, first.Add(time.Hour), s.LastUsedAt)
}

package catalog

import (
	"testing"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() ProductInput {
	return ProductInput{
		CategoryID:    uuid.New(),
		Code:          "rice-25kg",
		Name:          "Rice 25kg",
		UnitOfMeasure: "bag",
		MinStockLevel: decimal.NewFromInt(10),
	}
}

func TestNewProduct(t *testing.T) {
	t.Run("upper-cases code", func(t *testing.T) {
		p, err := NewProduct(validInput())
		require.NoError(t, err)
		assert.Equal(t, "RICE-25KG", p.Code)
		assert.True(t, p.IsActive)
		assert.Equal(t, int64(0), p.LotSequence)
	})

	t.Run("derives code from name when missing", func(t *testing.T) {
		in := validInput()
		in.Code = ""
		in.Name = "Cooking Oil 5L"
		p, err := NewProduct(in)
		require.NoError(t, err)
		assert.Regexp(t, `^COOKINGO-[0-9A-F]{4}$`, p.Code)
	})

	tests := []struct {
		name   string
		mutate func(*ProductInput)
		code   string
	}{
		{"empty name", func(in *ProductInput) { in.Name = " " }, "INVALID_NAME"},
		{"missing unit", func(in *ProductInput) { in.UnitOfMeasure = "" }, "INVALID_UNIT"},
		{"missing category", func(in *ProductInput) { in.CategoryID = uuid.Nil }, "INVALID_CATEGORY"},
		{"bad code", func(in *ProductInput) { in.Code = "a b" }, "INVALID_CODE"},
		{"negative min stock", func(in *ProductInput) { in.MinStockLevel = decimal.NewFromInt(-1) }, "INVALID_MIN_STOCK"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := NewProduct(in)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.code, de.Code)
		})
	}
}

func TestProduct_NextLotSequence(t *testing.T) {
	p, err := NewProduct(validInput())
	require.NoError(t, err)

	assert.Equal(t, int64(1), p.NextLotSequence())
	assert.Equal(t, int64(2), p.NextLotSequence())
	assert.Equal(t, int64(2), p.LotSequence)
}

func TestProduct_UpdateKeepsCode(t *testing.T) {
	p, err := NewProduct(validInput())
	require.NoError(t, err)

	in := validInput()
	in.Code = "OTHER"
	in.Name = "Rice 50kg"
	require.NoError(t, p.Update(in))
	assert.Equal(t, "RICE-25KG", p.Code)
	assert.Equal(t, "Rice 50kg", p.Name)
}

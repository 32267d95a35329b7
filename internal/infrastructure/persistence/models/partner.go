package models

import (
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// SupplierModel is the persistence model for suppliers and their credit ledger
type SupplierModel struct {
	AggregateModel
	Name           string          `gorm:"type:varchar(200);not null;index"`
	ContactPerson  string          `gorm:"type:varchar(100)"`
	PhoneNumber    string          `gorm:"type:varchar(50)"`
	Email          string          `gorm:"type:varchar(200)"`
	Address        string          `gorm:"type:text"`
	TaxID          string          `gorm:"column:tax_id;type:varchar(50)"`
	CreditLimit    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentTerms   string          `gorm:"type:varchar(30);not null"`
	IsActive       bool            `gorm:"not null;default:true;index"`
}

func (SupplierModel) TableName() string {
	return "suppliers"
}

func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseAggregateRoot: m.aggregate(),
		Name:              m.Name,
		ContactPerson:     m.ContactPerson,
		PhoneNumber:       m.PhoneNumber,
		Email:             m.Email,
		Address:           m.Address,
		TaxID:             m.TaxID,
		CreditLimit:       m.CreditLimit,
		CurrentBalance:    m.CurrentBalance,
		PaymentTerms:      partner.PaymentTerms(m.PaymentTerms),
		IsActive:          m.IsActive,
	}
}

// SupplierModelFromDomain creates a persistence model from a domain supplier
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{
		Name:           s.Name,
		ContactPerson:  s.ContactPerson,
		PhoneNumber:    s.PhoneNumber,
		Email:          s.Email,
		Address:        s.Address,
		TaxID:          s.TaxID,
		CreditLimit:    s.CreditLimit,
		CurrentBalance: s.CurrentBalance,
		PaymentTerms:   string(s.PaymentTerms),
		IsActive:       s.IsActive,
	}
	m.setAggregate(s.BaseAggregateRoot)
	return m
}

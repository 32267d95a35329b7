package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentModel is a row of the append-only supplier payment ledger
type PaymentModel struct {
	BaseModel
	POID            uuid.UUID       `gorm:"column:po_id;type:uuid;not null;index"`
	PONumber        string          `gorm:"column:po_number;type:varchar(30);not null"`
	SupplierID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method          string          `gorm:"type:varchar(30);not null"`
	PaidAt          time.Time       `gorm:"not null;index"`
	ChequeNumber    string          `gorm:"type:varchar(50)"`
	BankName        string          `gorm:"type:varchar(100)"`
	ReferenceNumber string          `gorm:"type:varchar(100)"`
	MobileNumber    string          `gorm:"type:varchar(30)"`
	MobileProvider  string          `gorm:"type:varchar(30)"`
	Notes           string          `gorm:"type:text"`
	RecordedBy      uuid.UUID       `gorm:"type:uuid;not null"`
}

func (PaymentModel) TableName() string {
	return "po_payments"
}

func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		BaseEntity:      m.entity(),
		POID:            m.POID,
		PONumber:        m.PONumber,
		SupplierID:      m.SupplierID,
		Amount:          m.Amount,
		Method:          finance.PaymentMethod(m.Method),
		PaidAt:          m.PaidAt,
		ChequeNumber:    m.ChequeNumber,
		BankName:        m.BankName,
		ReferenceNumber: m.ReferenceNumber,
		MobileNumber:    m.MobileNumber,
		MobileProvider:  finance.MobileProvider(m.MobileProvider),
		Notes:           m.Notes,
		RecordedBy:      m.RecordedBy,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain payment
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{
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
	}
	m.setEntity(p.BaseEntity)
	return m
}

// ExpenseTypeModel is the persistence model for expense types
type ExpenseTypeModel struct {
	BaseModel
	Name           string    `gorm:"type:varchar(100);not null"`
	NormalizedName string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	CreatedBy      uuid.UUID `gorm:"type:uuid;not null"`
}

func (ExpenseTypeModel) TableName() string {
	return "expense_types"
}

func (m *ExpenseTypeModel) ToDomain() *finance.ExpenseType {
	return &finance.ExpenseType{
		BaseEntity:     m.entity(),
		Name:           m.Name,
		NormalizedName: m.NormalizedName,
		CreatedBy:      m.CreatedBy,
	}
}

// ExpenseTypeModelFromDomain creates a persistence model from a domain type
func ExpenseTypeModelFromDomain(t *finance.ExpenseType) *ExpenseTypeModel {
	m := &ExpenseTypeModel{Name: t.Name, NormalizedName: t.NormalizedName, CreatedBy: t.CreatedBy}
	m.setEntity(t.BaseEntity)
	return m
}

// ExpenseRecordModel is the persistence model for expense records
type ExpenseRecordModel struct {
	BaseModel
	TypeID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	TypeName      string          `gorm:"type:varchar(100);not null"`
	Subtype       string          `gorm:"type:varchar(100)"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DateOfExpense time.Time       `gorm:"not null;index"`
	Notes         string          `gorm:"type:text"`
	ManagerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ManagerName   string          `gorm:"type:varchar(100);not null"`
}

func (ExpenseRecordModel) TableName() string {
	return "expense_records"
}

func (m *ExpenseRecordModel) ToDomain() *finance.ExpenseRecord {
	return &finance.ExpenseRecord{
		BaseEntity:    m.entity(),
		TypeID:        m.TypeID,
		TypeName:      m.TypeName,
		Subtype:       m.Subtype,
		Amount:        m.Amount,
		DateOfExpense: m.DateOfExpense,
		Notes:         m.Notes,
		ManagerID:     m.ManagerID,
		ManagerName:   m.ManagerName,
	}
}

// ExpenseRecordModelFromDomain creates a persistence model from a domain record
func ExpenseRecordModelFromDomain(r *finance.ExpenseRecord) *ExpenseRecordModel {
	m := &ExpenseRecordModel{
		TypeID:        r.TypeID,
		TypeName:      r.TypeName,
		Subtype:       r.Subtype,
		Amount:        r.Amount,
		DateOfExpense: r.DateOfExpense,
		Notes:         r.Notes,
		ManagerID:     r.ManagerID,
		ManagerName:   r.ManagerName,
	}
	m.setEntity(r.BaseEntity)
	return m
}

// ExpenseSuggestionModel is one entry of the expense name index
type ExpenseSuggestionModel struct {
	NormalizedKey string    `gorm:"type:varchar(100);primaryKey"`
	DisplayName   string    `gorm:"type:varchar(100);not null"`
	UsageCount    int64     `gorm:"not null;default:1;index"`
	LastUsedAt    time.Time `gorm:"not null"`
}

func (ExpenseSuggestionModel) TableName() string {
	return "expense_suggestions"
}

func (m *ExpenseSuggestionModel) ToDomain() finance.ExpenseSuggestion {
	return finance.ExpenseSuggestion{
		NormalizedKey: m.NormalizedKey,
		DisplayName:   m.DisplayName,
		UsageCount:    m.UsageCount,
		LastUsedAt:    m.LastUsedAt,
	}
}

// AllModels lists every model in migration order, for AutoMigrate in tests
func AllModels() []any {
	return []any{
		&UserModel{},
		&CategoryModel{},
		&ProductModel{},
		&StockLotModel{},
		&SupplierModel{},
		&PurchaseOrderModel{},
		&PurchaseOrderItemModel{},
		&PaymentModel{},
		&SalesOrderModel{},
		&SalesOrderItemModel{},
		&ExpenseTypeModel{},
		&ExpenseRecordModel{},
		&ExpenseSuggestionModel{},
	}
}

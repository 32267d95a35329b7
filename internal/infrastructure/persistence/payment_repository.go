package persistence

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements finance.PaymentRepository using GORM.
// Payments are never updated or deleted.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create appends a payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *finance.Payment) error {
	return translateError(r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(payment)).Error, "Payment")
}

// FindByPO returns the payments of an order in the order they were made
func (r *GormPaymentRepository) FindByPO(ctx context.Context, poID uuid.UUID) ([]finance.Payment, error) {
	return r.find(r.db.WithContext(ctx).Where("po_id = ?", poID).Order("paid_at ASC, created_at ASC"))
}

// FindBySupplier returns the supplier's payments made within the range
func (r *GormPaymentRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, from, to *time.Time) ([]finance.Payment, error) {
	query := r.db.WithContext(ctx).Where("supplier_id = ?", supplierID)
	if from != nil {
		query = query.Where("paid_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("paid_at <= ?", *to)
	}
	return r.find(query.Order("paid_at ASC, created_at ASC"))
}

func (r *GormPaymentRepository) find(query *gorm.DB) ([]finance.Payment, error) {
	var rows []models.PaymentModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, translateError(err, "Payment")
	}
	payments := make([]finance.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, nil
}

var _ finance.PaymentRepository = (*GormPaymentRepository)(nil)

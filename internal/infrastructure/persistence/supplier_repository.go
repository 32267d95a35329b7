package persistence

import (
	"context"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSupplierRepository implements partner.SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var m models.SupplierModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Supplier")
	}
	return m.ToDomain(), nil
}

// FindByIDForUpdate loads the supplier holding its row lock
func (r *GormSupplierRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var m models.SupplierModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Supplier")
	}
	return m.ToDomain(), nil
}

// FindAll finds all suppliers matching the filter. Search matches name,
// contact person or email; is_active narrows by state.
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	var rows []models.SupplierModel
	query := applyPage(r.applyFilter(r.db.WithContext(ctx).Model(&models.SupplierModel{}), filter), filter, SupplierSortFields, "name")
	if err := query.Find(&rows).Error; err != nil {
		return nil, translateError(err, "Supplier")
	}
	suppliers := make([]partner.Supplier, len(rows))
	for i := range rows {
		suppliers[i] = *rows[i].ToDomain()
	}
	return suppliers, nil
}

// Count counts suppliers matching the filter
func (r *GormSupplierRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.SupplierModel{}), filter).Count(&count).Error; err != nil {
		return 0, translateError(err, "Supplier")
	}
	return count, nil
}

// Create inserts a new supplier
func (r *GormSupplierRepository) Create(ctx context.Context, supplier *partner.Supplier) error {
	return translateError(r.db.WithContext(ctx).Create(models.SupplierModelFromDomain(supplier)).Error, "Supplier")
}

// Save updates the supplier guarded by its version
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	m := models.SupplierModelFromDomain(supplier)
	loaded := supplier.Version
	m.Version = loaded + 1
	if err := saveVersioned(ctx, r.db, m, supplier.ID, loaded, "Supplier"); err != nil {
		return err
	}
	supplier.Version = m.Version
	return nil
}

func (r *GormSupplierRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(contact_person) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern, pattern)
	}
	if active, ok := filterBool(filter, "is_active"); ok {
		query = query.Where("is_active = ?", active)
	}
	return query
}

var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)

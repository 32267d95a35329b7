package persistence

import (
	"context"
	"strings"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var m models.ProductModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Product")
	}
	return m.ToDomain(), nil
}

// FindByIDForUpdate loads the product holding its row lock
func (r *GormProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var m models.ProductModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Product")
	}
	return m.ToDomain(), nil
}

// FindByIDs loads the given products in ID order
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, translateError(err, "Product")
	}
	return productsToDomain(rows), nil
}

// FindAll finds all products matching the filter. Recognized filter keys are
// category_id and is_active; Search matches name or code.
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var rows []models.ProductModel
	query := applyPage(r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter), filter, ProductSortFields, "name")
	if err := query.Find(&rows).Error; err != nil {
		return nil, translateError(err, "Product")
	}
	return productsToDomain(rows), nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter).Count(&count).Error; err != nil {
		return 0, translateError(err, "Product")
	}
	return count, nil
}

// ExistsByCode checks whether a product code is taken
func (r *GormProductRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, translateError(err, "Product")
	}
	return count > 0, nil
}

// Save inserts a new product or updates an existing one guarded by its version
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	exists, err := rowExists(ctx, r.db, &models.ProductModel{}, product.ID)
	if err != nil {
		return translateError(err, "Product")
	}
	m := models.ProductModelFromDomain(product)
	if !exists {
		return translateError(r.db.WithContext(ctx).Create(m).Error, "Product")
	}
	loaded := product.Version
	m.Version = loaded + 1
	if err := saveVersioned(ctx, r.db, m, product.ID, loaded, "Product"); err != nil {
		return err
	}
	product.Version = m.Version
	return nil
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", pattern, pattern)
	}
	if categoryID, ok := filterString(filter, "category_id"); ok {
		query = query.Where("category_id = ?", categoryID)
	}
	if active, ok := filterBool(filter, "is_active"); ok {
		query = query.Where("is_active = ?", active)
	}
	return query
}

func productsToDomain(rows []models.ProductModel) []catalog.Product {
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)

package persistence

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	fifoOrder          = "date_acquired ASC, created_at ASC, batch_number ASC"
	defaultSearchLimit = 100
)

// GormStockLotRepository implements inventory.StockLotRepository using GORM
type GormStockLotRepository struct {
	db *gorm.DB
}

// NewGormStockLotRepository creates a new GormStockLotRepository
func NewGormStockLotRepository(db *gorm.DB) *GormStockLotRepository {
	return &GormStockLotRepository{db: db}
}

// FindByID finds a lot by its ID
func (r *GormStockLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockLot, error) {
	var m models.StockLotModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Stock lot")
	}
	return m.ToDomain(), nil
}

// FindByIDForUpdate loads the lot holding its row lock
func (r *GormStockLotRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.StockLot, error) {
	var m models.StockLotModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Stock lot")
	}
	return m.ToDomain(), nil
}

// FindByProduct returns every lot of a product in FIFO order
func (r *GormStockLotRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockLot, error) {
	return r.find(r.db.WithContext(ctx).Where("product_id = ?", productID).Order(fifoOrder))
}

// FindActiveByProducts returns the active lots of the given products in
// FIFO order per product
func (r *GormStockLotRepository) FindActiveByProducts(ctx context.Context, productIDs []uuid.UUID) ([]inventory.StockLot, error) {
	if len(productIDs) == 0 {
		return []inventory.StockLot{}, nil
	}
	return r.find(r.db.WithContext(ctx).
		Where("product_id IN ? AND is_active = ?", productIDs, true).
		Order("product_id").Order(fifoOrder))
}

// FindByPO returns the lots created by receipts against a purchase order
func (r *GormStockLotRepository) FindByPO(ctx context.Context, poID uuid.UUID) ([]inventory.StockLot, error) {
	return r.find(r.db.WithContext(ctx).Where("po_id = ?", poID).Order("created_at ASC, batch_number ASC"))
}

// Search finds lots matching every criterion that is set
func (r *GormStockLotRepository) Search(ctx context.Context, search inventory.BatchSearch) ([]inventory.StockLot, error) {
	query := r.db.WithContext(ctx)
	if search.BatchNumber != "" {
		query = query.Where("LOWER(batch_number) LIKE ?", likePattern(search.BatchNumber))
	}
	if search.POID != nil {
		query = query.Where("po_id = ?", *search.POID)
	}
	if search.ProductName != "" {
		query = query.Where("product_id IN (?)",
			r.db.Model(&models.ProductModel{}).Select("id").Where("LOWER(name) LIKE ?", likePattern(search.ProductName)))
	}
	if search.ExpiryBefore != nil {
		query = query.Where("expiry_date IS NOT NULL AND expiry_date <= ?", *search.ExpiryBefore)
	}
	if search.ExpiryAfter != nil {
		query = query.Where("expiry_date IS NOT NULL AND expiry_date >= ?", *search.ExpiryAfter)
	}
	if search.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	limit := search.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return r.find(query.Order("date_acquired DESC, batch_number ASC").Limit(limit))
}

// FindExpiring returns active lots with stock left whose expiry falls in
// [from, to], soonest first
func (r *GormStockLotRepository) FindExpiring(ctx context.Context, from, to time.Time) ([]inventory.StockLot, error) {
	return r.find(r.db.WithContext(ctx).
		Where("is_active = ? AND quantity > 0", true).
		Where("expiry_date IS NOT NULL AND expiry_date >= ? AND expiry_date <= ?", from, to).
		Order("expiry_date ASC, batch_number ASC"))
}

// FindExpired returns active lots with stock left whose expiry date is
// before now, longest expired first
func (r *GormStockLotRepository) FindExpired(ctx context.Context, now time.Time) ([]inventory.StockLot, error) {
	return r.find(r.db.WithContext(ctx).
		Where("is_active = ? AND quantity > 0", true).
		Where("expiry_date IS NOT NULL AND expiry_date < ?", now).
		Order("expiry_date ASC, batch_number ASC"))
}

// Create inserts a new lot
func (r *GormStockLotRepository) Create(ctx context.Context, lot *inventory.StockLot) error {
	return translateError(r.db.WithContext(ctx).Create(models.StockLotModelFromDomain(lot)).Error, "Stock lot")
}

// Save updates the lot guarded by its version
func (r *GormStockLotRepository) Save(ctx context.Context, lot *inventory.StockLot) error {
	m := models.StockLotModelFromDomain(lot)
	loaded := lot.Version
	m.Version = loaded + 1
	if err := saveVersioned(ctx, r.db, m, lot.ID, loaded, "Stock lot"); err != nil {
		return err
	}
	lot.Version = m.Version
	return nil
}

func (r *GormStockLotRepository) find(query *gorm.DB) ([]inventory.StockLot, error) {
	var rows []models.StockLotModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, translateError(err, "Stock lot")
	}
	lots := make([]inventory.StockLot, len(rows))
	for i := range rows {
		lots[i] = *rows[i].ToDomain()
	}
	return lots, nil
}

var _ inventory.StockLotRepository = (*GormStockLotRepository)(nil)

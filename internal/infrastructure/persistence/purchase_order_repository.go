package persistence

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// committedStatuses are the states in which an order counts against the
// supplier's credit
var committedStatuses = []string{
	trade.POStatusApproved.String(),
	trade.POStatusOrdered.String(),
	trade.POStatusPartiallyReceived.String(),
	trade.POStatusReceived.String(),
}

// GormPurchaseOrderRepository implements trade.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC")
}

// FindByID loads an order with its items
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var m models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).Preload("Items", preloadItems).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Purchase order")
	}
	return m.ToDomain(), nil
}

// FindByIDForUpdate locks the order row, then loads its items
func (r *GormPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var m models.PurchaseOrderModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Purchase order")
	}
	if err := r.db.WithContext(ctx).Where("po_id = ?", id).Order("line_no ASC").Find(&m.Items).Error; err != nil {
		return nil, translateError(err, "Purchase order")
	}
	return m.ToDomain(), nil
}

// FindAll finds orders matching the filter. Recognized filter keys are
// status, supplier_id and payment_status; Search matches the PO number and
// From/To bound the creation date.
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.PurchaseOrder, error) {
	query := applyPage(r.applyFilter(r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}), filter), filter, PurchaseOrderSortFields, "created_at")
	return r.find(query)
}

// Count counts orders matching the filter
func (r *GormPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}), filter).Count(&count).Error; err != nil {
		return 0, translateError(err, "Purchase order")
	}
	return count, nil
}

// FindBySupplier returns the supplier's orders created within the range,
// oldest first
func (r *GormPurchaseOrderRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, from, to *time.Time) ([]trade.PurchaseOrder, error) {
	query := r.db.WithContext(ctx).Where("supplier_id = ?", supplierID)
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}
	return r.find(query.Order("created_at ASC"))
}

// SumExposure adds up the balance due of the supplier's committed orders
func (r *GormPurchaseOrderRepository) SumExposure(ctx context.Context, supplierID uuid.UUID) (decimal.Decimal, error) {
	var sum struct{ Total decimal.Decimal }
	err := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Select("COALESCE(SUM(balance_due), 0) AS total").
		Where("supplier_id = ? AND status IN ?", supplierID, committedStatuses).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, translateError(err, "Purchase order")
	}
	return sum.Total, nil
}

type statusCount struct {
	Status string
	Count  int64
}

type poTotals struct {
	Count       int64
	TotalValue  decimal.Decimal
	TotalPaid   decimal.Decimal
	Outstanding decimal.Decimal
}

// Stats aggregates the purchasing dashboard figures
func (r *GormPurchaseOrderRepository) Stats(ctx context.Context, now time.Time) (*trade.PurchaseOrderStats, error) {
	db := r.db.WithContext(ctx)
	stats := &trade.PurchaseOrderStats{ByStatus: make(map[trade.PurchaseOrderStatus]int64)}

	var counts []statusCount
	if err := db.Model(&models.PurchaseOrderModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, translateError(err, "Purchase order")
	}
	for _, c := range counts {
		stats.ByStatus[trade.PurchaseOrderStatus(c.Status)] = c.Count
	}

	cancelled := trade.POStatusCancelled.String()
	var totals poTotals
	if err := db.Model(&models.PurchaseOrderModel{}).
		Select("COUNT(*) AS count, COALESCE(SUM(grand_total), 0) AS total_value, COALESCE(SUM(amount_paid), 0) AS total_paid, COALESCE(SUM(balance_due), 0) AS outstanding").
		Where("status <> ?", cancelled).
		Scan(&totals).Error; err != nil {
		return nil, translateError(err, "Purchase order")
	}
	stats.TotalValue = totals.TotalValue
	stats.TotalPaid = totals.TotalPaid
	stats.TotalOutstanding = totals.Outstanding

	var overdue poTotals
	if err := db.Model(&models.PurchaseOrderModel{}).
		Select("COUNT(*) AS count, COALESCE(SUM(balance_due), 0) AS outstanding").
		Where("status <> ? AND due_date IS NOT NULL AND due_date < ? AND balance_due > 0", cancelled, now).
		Scan(&overdue).Error; err != nil {
		return nil, translateError(err, "Purchase order")
	}
	stats.OverdueCount = overdue.Count
	stats.OverdueAmount = overdue.Outstanding
	return stats, nil
}

// LastNumber returns the highest PO number starting with prefix, or "" when
// there is none. Sequences outgrow their zero padding, so a longer number is
// always the higher one.
func (r *GormPurchaseOrderRepository) LastNumber(ctx context.Context, prefix string) (string, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("po_number LIKE ?", prefix+"%").
		Order("LENGTH(po_number) DESC, po_number DESC").
		Limit(1).
		Pluck("po_number", &numbers).Error; err != nil {
		return "", translateError(err, "Purchase order")
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

// Create inserts the order and its items
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, order *trade.PurchaseOrder) error {
	return translateError(r.db.WithContext(ctx).Create(models.PurchaseOrderModelFromDomain(order)).Error, "Purchase order")
}

// Save updates the header guarded by its version and upserts the items
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *trade.PurchaseOrder) error {
	m := models.PurchaseOrderModelFromDomain(order)
	loaded := order.Version
	m.Version = loaded + 1
	if err := saveVersioned(ctx, r.db, m, order.ID, loaded, "Purchase order"); err != nil {
		return err
	}
	if len(m.Items) > 0 {
		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
			Create(&m.Items).Error; err != nil {
			return translateError(err, "Purchase order")
		}
	}
	order.Version = m.Version
	return nil
}

func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(po_number) LIKE ?", likePattern(filter.Search))
	}
	if status, ok := filterString(filter, "status"); ok {
		query = query.Where("status = ?", status)
	}
	if supplierID, ok := filterString(filter, "supplier_id"); ok {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if paymentStatus, ok := filterString(filter, "payment_status"); ok {
		query = query.Where("payment_status = ?", paymentStatus)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	return query
}

func (r *GormPurchaseOrderRepository) find(query *gorm.DB) ([]trade.PurchaseOrder, error) {
	var rows []models.PurchaseOrderModel
	if err := query.Preload("Items", preloadItems).Find(&rows).Error; err != nil {
		return nil, translateError(err, "Purchase order")
	}
	orders := make([]trade.PurchaseOrder, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)

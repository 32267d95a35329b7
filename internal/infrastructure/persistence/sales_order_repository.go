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
)

// GormSalesOrderRepository implements trade.SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByID loads a sale with its items
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	var m models.SalesOrderModel
	if err := r.db.WithContext(ctx).Preload("Items", preloadItems).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Sales order")
	}
	return m.ToDomain(), nil
}

// FindAll finds sales matching the filter. payment_status narrows by
// status, Search matches the order number or customer, From/To bound the
// creation date.
func (r *GormSalesOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.SalesOrder, error) {
	return r.find(applyPage(r.applyFilter(r.db.WithContext(ctx).Model(&models.SalesOrderModel{}), filter), filter, SalesOrderSortFields, "created_at"))
}

// Count counts sales matching the filter
func (r *GormSalesOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.SalesOrderModel{}), filter).Count(&count).Error; err != nil {
		return 0, translateError(err, "Sales order")
	}
	return count, nil
}

// FindRecent returns the latest sales, newest first
func (r *GormSalesOrderRepository) FindRecent(ctx context.Context, limit int) ([]trade.SalesOrder, error) {
	return r.find(r.db.WithContext(ctx).Order("created_at DESC").Limit(limit))
}

type salesTally struct {
	PaymentStatus string
	Count         int64
	Revenue       decimal.Decimal
	Paid          decimal.Decimal
	Cost          decimal.Decimal
}

// Summarize aggregates sales created within the range
func (r *GormSalesOrderRepository) Summarize(ctx context.Context, from, to *time.Time) (*trade.SalesSummary, error) {
	query := r.db.WithContext(ctx).Model(&models.SalesOrderModel{})
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	var tallies []salesTally
	if err := query.
		Select("payment_status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS revenue, COALESCE(SUM(amount_paid), 0) AS paid, COALESCE(SUM(cost_of_goods), 0) AS cost").
		Group("payment_status").
		Scan(&tallies).Error; err != nil {
		return nil, translateError(err, "Sales order")
	}

	summary := &trade.SalesSummary{
		TotalRevenue: decimal.Zero,
		TotalPaid:    decimal.Zero,
		CostOfGoods:  decimal.Zero,
		ByStatus:     make(map[trade.SalesPaymentStatus]trade.SalesStatusTally),
	}
	for _, t := range tallies {
		summary.OrderCount += t.Count
		summary.TotalRevenue = summary.TotalRevenue.Add(t.Revenue)
		summary.TotalPaid = summary.TotalPaid.Add(t.Paid)
		summary.CostOfGoods = summary.CostOfGoods.Add(t.Cost)
		summary.ByStatus[trade.SalesPaymentStatus(t.PaymentStatus)] = trade.SalesStatusTally{Count: t.Count, Amount: t.Revenue}
	}
	return summary, nil
}

// LastNumber returns the highest order number starting with prefix
func (r *GormSalesOrderRepository) LastNumber(ctx context.Context, prefix string) (string, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).Model(&models.SalesOrderModel{}).
		Where("order_number LIKE ?", prefix+"%").
		Order("LENGTH(order_number) DESC, order_number DESC").
		Limit(1).
		Pluck("order_number", &numbers).Error; err != nil {
		return "", translateError(err, "Sales order")
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

// Create inserts the sale and its items
func (r *GormSalesOrderRepository) Create(ctx context.Context, order *trade.SalesOrder) error {
	return translateError(r.db.WithContext(ctx).Create(models.SalesOrderModelFromDomain(order)).Error, "Sales order")
}

func (r *GormSalesOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(customer_name) LIKE ?", pattern, pattern)
	}
	if status, ok := filterString(filter, "payment_status"); ok {
		query = query.Where("payment_status = ?", status)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	return query
}

func (r *GormSalesOrderRepository) find(query *gorm.DB) ([]trade.SalesOrder, error) {
	var rows []models.SalesOrderModel
	if err := query.Preload("Items", preloadItems).Find(&rows).Error; err != nil {
		return nil, translateError(err, "Sales order")
	}
	orders := make([]trade.SalesOrder, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

var _ trade.SalesOrderRepository = (*GormSalesOrderRepository)(nil)

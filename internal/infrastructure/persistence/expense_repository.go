package persistence

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormExpenseTypeRepository implements finance.ExpenseTypeRepository using GORM
type GormExpenseTypeRepository struct {
	db *gorm.DB
}

// NewGormExpenseTypeRepository creates a new GormExpenseTypeRepository
func NewGormExpenseTypeRepository(db *gorm.DB) *GormExpenseTypeRepository {
	return &GormExpenseTypeRepository{db: db}
}

// FindByID finds an expense type by its ID
func (r *GormExpenseTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.ExpenseType, error) {
	var m models.ExpenseTypeModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Expense type")
	}
	return m.ToDomain(), nil
}

// FindAll returns every expense type ordered by name
func (r *GormExpenseTypeRepository) FindAll(ctx context.Context) ([]finance.ExpenseType, error) {
	var rows []models.ExpenseTypeModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err, "Expense type")
	}
	types := make([]finance.ExpenseType, len(rows))
	for i := range rows {
		types[i] = *rows[i].ToDomain()
	}
	return types, nil
}

// ExistsByName checks for a type with the given normalized name
func (r *GormExpenseTypeRepository) ExistsByName(ctx context.Context, normalizedName string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ExpenseTypeModel{}).
		Where("normalized_name = ?", normalizedName).
		Count(&count).Error; err != nil {
		return false, translateError(err, "Expense type")
	}
	return count > 0, nil
}

// Create inserts a new expense type
func (r *GormExpenseTypeRepository) Create(ctx context.Context, t *finance.ExpenseType) error {
	return translateError(r.db.WithContext(ctx).Create(models.ExpenseTypeModelFromDomain(t)).Error, "Expense type")
}

// GormExpenseRecordRepository implements finance.ExpenseRecordRepository using GORM
type GormExpenseRecordRepository struct {
	db *gorm.DB
}

// NewGormExpenseRecordRepository creates a new GormExpenseRecordRepository
func NewGormExpenseRecordRepository(db *gorm.DB) *GormExpenseRecordRepository {
	return &GormExpenseRecordRepository{db: db}
}

// FindAll finds records matching the filter. From/To bound the expense
// date, type_id and manager_id narrow the result.
func (r *GormExpenseRecordRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.ExpenseRecord, error) {
	var rows []models.ExpenseRecordModel
	query := applyPage(r.applyFilter(r.db.WithContext(ctx).Model(&models.ExpenseRecordModel{}), filter), filter, ExpenseRecordSortFields, "date_of_expense")
	if err := query.Find(&rows).Error; err != nil {
		return nil, translateError(err, "Expense record")
	}
	records := make([]finance.ExpenseRecord, len(rows))
	for i := range rows {
		records[i] = *rows[i].ToDomain()
	}
	return records, nil
}

// Count counts records matching the filter
func (r *GormExpenseRecordRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ExpenseRecordModel{}), filter).Count(&count).Error; err != nil {
		return 0, translateError(err, "Expense record")
	}
	return count, nil
}

// SumAmount adds up the records dated within the range
func (r *GormExpenseRecordRepository) SumAmount(ctx context.Context, from, to *time.Time) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).Model(&models.ExpenseRecordModel{})
	if from != nil {
		query = query.Where("date_of_expense >= ?", *from)
	}
	if to != nil {
		query = query.Where("date_of_expense <= ?", *to)
	}
	var sum struct{ Total decimal.Decimal }
	if err := query.Select("COALESCE(SUM(amount), 0) AS total").Scan(&sum).Error; err != nil {
		return decimal.Zero, translateError(err, "Expense record")
	}
	return sum.Total, nil
}

// Create inserts a new record
func (r *GormExpenseRecordRepository) Create(ctx context.Context, rec *finance.ExpenseRecord) error {
	return translateError(r.db.WithContext(ctx).Create(models.ExpenseRecordModelFromDomain(rec)).Error, "Expense record")
}

func (r *GormExpenseRecordRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(type_name) LIKE ? OR LOWER(subtype) LIKE ?", pattern, pattern)
	}
	if typeID, ok := filterString(filter, "type_id"); ok {
		query = query.Where("type_id = ?", typeID)
	}
	if managerID, ok := filterString(filter, "manager_id"); ok {
		query = query.Where("manager_id = ?", managerID)
	}
	if filter.From != nil {
		query = query.Where("date_of_expense >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date_of_expense <= ?", *filter.To)
	}
	return query
}

// GormExpenseSuggestionRepository implements finance.ExpenseSuggestionRepository
// as an upserted counter table
type GormExpenseSuggestionRepository struct {
	db *gorm.DB
}

// NewGormExpenseSuggestionRepository creates a new GormExpenseSuggestionRepository
func NewGormExpenseSuggestionRepository(db *gorm.DB) *GormExpenseSuggestionRepository {
	return &GormExpenseSuggestionRepository{db: db}
}

// Increment records one use of name. The first spelling seen stays the
// display name.
func (r *GormExpenseSuggestionRepository) Increment(ctx context.Context, name string, at time.Time) error {
	s := finance.NewExpenseSuggestion(name, at)
	if s.NormalizedKey == "" {
		return nil
	}
	m := &models.ExpenseSuggestionModel{
		NormalizedKey: s.NormalizedKey,
		DisplayName:   s.DisplayName,
		UsageCount:    s.UsageCount,
		LastUsedAt:    s.LastUsedAt,
	}
	lastUsed := gorm.Expr("CASE WHEN expense_suggestions.last_used_at < excluded.last_used_at " +
		"THEN excluded.last_used_at ELSE expense_suggestions.last_used_at END")
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "normalized_key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"usage_count":  gorm.Expr("expense_suggestions.usage_count + 1"),
			"last_used_at": lastUsed,
		}),
	}).Create(m).Error
	return translateError(err, "Expense suggestion")
}

// Search returns entries whose key starts with the normalized prefix, most
// used first
func (r *GormExpenseSuggestionRepository) Search(ctx context.Context, prefix string, limit int) ([]finance.ExpenseSuggestion, error) {
	query := r.db.WithContext(ctx).Model(&models.ExpenseSuggestionModel{})
	if key := finance.NormalizeExpenseName(prefix); key != "" {
		query = query.Where("normalized_key LIKE ?", key+"%")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.ExpenseSuggestionModel
	if err := query.Order("usage_count DESC, display_name ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err, "Expense suggestion")
	}
	suggestions := make([]finance.ExpenseSuggestion, len(rows))
	for i := range rows {
		suggestions[i] = rows[i].ToDomain()
	}
	return suggestions, nil
}

var (
	_ finance.ExpenseTypeRepository       = (*GormExpenseTypeRepository)(nil)
	_ finance.ExpenseRecordRepository     = (*GormExpenseRecordRepository)(nil)
	_ finance.ExpenseSuggestionRepository = (*GormExpenseSuggestionRepository)(nil)
)

package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate adds a row lock held until the surrounding transaction ends.
// The sqlite dialect drops the clause.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// saveVersioned writes every column of model provided the row still carries
// the loaded version, and bumps the stored version. Zero rows updated means
// another writer got there first.
func saveVersioned(ctx context.Context, db *gorm.DB, model any, id uuid.UUID, loaded int, resource string) error {
	res := db.WithContext(ctx).
		Model(model).
		Where("version = ?", loaded).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(model)
	if res.Error != nil {
		return translateError(res.Error, resource)
	}
	if res.RowsAffected == 0 {
		return shared.ErrConcurrentModification.WithDetail("resource", resource).WithDetail("id", id.String())
	}
	return nil
}

// applyPage applies ordering and pagination from a filter
func applyPage(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	query = query.Order(fmt.Sprintf("%s %s", field, ValidateSortOrder(filter.OrderDir)))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// likePattern builds a case-insensitive contains pattern for LOWER(col) LIKE ?
func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// filterString reads a string filter value, ignoring empty ones
func filterString(filter shared.Filter, key string) (string, bool) {
	v, ok := filter.Filters[key]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, t != ""
	case fmt.Stringer:
		s := t.String()
		return s, s != ""
	}
	return "", false
}

func filterBool(filter shared.Filter, key string) (bool, bool) {
	v, ok := filter.Filters[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// rowExists reports whether a row with the primary key id exists in the
// table of model
func rowExists(ctx context.Context, db *gorm.DB, model any, id uuid.UUID) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

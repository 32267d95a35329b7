package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// PostgreSQL error codes the repositories care about
const (
	sqlStateUniqueViolation      = "23505"
	sqlStateLockNotAvailable     = "55P03"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateQueryCanceled        = "57014"
)

// sqlState extracts the SQLSTATE from either postgres driver
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// translateError maps driver errors onto the domain taxonomy. Row lock
// waits, serialization failures and deadlocks surface as Busy so the client
// may retry. Domain errors pass through untouched.
func translateError(err error, resource string) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(resource)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return shared.ErrBusy.WithDetail("resource", resource)
	}

	switch sqlState(err) {
	case sqlStateLockNotAvailable, sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateQueryCanceled:
		return shared.ErrBusy.WithDetail("resource", resource)
	case sqlStateUniqueViolation:
		return shared.NewKindError(shared.KindConflict, "ALREADY_EXISTS", resource+" already exists")
	}

	// sqlite, used by the repository tests and local runs
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return shared.NewKindError(shared.KindConflict, "ALREADY_EXISTS", resource+" already exists")
	case strings.Contains(msg, "database is locked"):
		return shared.ErrBusy.WithDetail("resource", resource)
	}

	return fmt.Errorf("%s: %w", resource, err)
}

// IsContention reports whether err is a row lock or serialization failure
func IsContention(err error) bool {
	switch sqlState(err) {
	case sqlStateLockNotAvailable, sqlStateSerializationFailure, sqlStateDeadlockDetected:
		return true
	}
	return false
}

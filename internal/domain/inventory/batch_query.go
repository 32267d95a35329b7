package inventory

import (
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// BatchStatus selects lots in a batch listing
type BatchStatus string

const (
	BatchStatusAll      BatchStatus = "all"
	BatchStatusActive   BatchStatus = "active"
	BatchStatusExpired  BatchStatus = "expired"
	BatchStatusInactive BatchStatus = "inactive"
)

// ParseBatchStatus parses a status query value; empty means active
func ParseBatchStatus(s string) (BatchStatus, error) {
	switch BatchStatus(s) {
	case "":
		return BatchStatusActive, nil
	case BatchStatusAll, BatchStatusActive, BatchStatusExpired, BatchStatusInactive:
		return BatchStatus(s), nil
	}
	return "", shared.NewValidationError("INVALID_STATUS", "Status must be one of all, active, expired, inactive")
}

// Matches reports whether lot belongs to the status at time now.
// Expired ignores the active flag; active excludes expired lots.
func (s BatchStatus) Matches(lot *StockLot, now time.Time) bool {
	switch s {
	case BatchStatusActive:
		return lot.IsAvailableAt(now)
	case BatchStatusExpired:
		return lot.IsExpiredAt(now)
	case BatchStatusInactive:
		return !lot.IsActive
	default:
		return true
	}
}

// FilterByStatus returns the lots matching status
func FilterByStatus(lots []StockLot, status BatchStatus, now time.Time) []StockLot {
	out := make([]StockLot, 0, len(lots))
	for i := range lots {
		if status.Matches(&lots[i], now) {
			out = append(out, lots[i])
		}
	}
	return out
}

// BatchSearch is the cross-product lot lookup
type BatchSearch struct {
	BatchNumber  string
	POID         *uuid.UUID
	ProductName  string
	ExpiryBefore *time.Time
	ExpiryAfter  *time.Time
	ActiveOnly   bool
	Limit        int
}

// IsEmpty reports whether no criterion is set
func (s BatchSearch) IsEmpty() bool {
	return s.BatchNumber == "" && s.POID == nil && s.ProductName == "" &&
		s.ExpiryBefore == nil && s.ExpiryAfter == nil
}

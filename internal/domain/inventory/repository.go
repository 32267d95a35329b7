package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StockLotRepository persists stock lots
type StockLotRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockLot, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*StockLot, error)
	// FindByProduct returns every lot of a product, oldest first
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]StockLot, error)
	// FindActiveByProducts returns active lots of the given products
	FindActiveByProducts(ctx context.Context, productIDs []uuid.UUID) ([]StockLot, error)
	FindByPO(ctx context.Context, poID uuid.UUID) ([]StockLot, error)
	Search(ctx context.Context, search BatchSearch) ([]StockLot, error)
	FindExpiring(ctx context.Context, from, to time.Time) ([]StockLot, error)
	// FindExpired returns active lots with stock left that expired before now
	FindExpired(ctx context.Context, now time.Time) ([]StockLot, error)
	Create(ctx context.Context, lot *StockLot) error
	// Save updates quantity and state guarded by the lot version
	Save(ctx context.Context, lot *StockLot) error
}

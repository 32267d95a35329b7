package partner

import (
	"context"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const auditPageSize = 100

// BalanceDrift is a supplier whose stored balance disagrees with its orders
type BalanceDrift struct {
	SupplierID uuid.UUID       `json:"supplier_id"`
	Name       string          `json:"name"`
	Stored     decimal.Decimal `json:"stored"`
	Recomputed decimal.Decimal `json:"recomputed"`
}

// AuditReport summarises one pass over every supplier ledger
type AuditReport struct {
	Checked int            `json:"checked"`
	Drifts  []BalanceDrift `json:"drifts"`
}

// AuditBalances compares every supplier's incremental balance with the sum
// recomputed from its purchase orders. Nothing is corrected: a drift is
// logged and left for ReconcileBalance.
func (s *SupplierService) AuditBalances(ctx context.Context) (report *AuditReport, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "partner", "audit_balances")
	defer telemetry.Finish(span, &err)

	report = &AuditReport{}
	for page := 1; ; page++ {
		var suppliers []partner.Supplier
		var exposure []decimal.Decimal
		err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
			var err error
			suppliers, err = repos.Suppliers().FindAll(ctx, shared.Filter{
				Page:     page,
				PageSize: auditPageSize,
				OrderBy:  "created_at",
				OrderDir: "asc",
			})
			if err != nil {
				return err
			}
			exposure = make([]decimal.Decimal, len(suppliers))
			for i := range suppliers {
				if exposure[i], err = repos.PurchaseOrders().SumExposure(ctx, suppliers[i].ID); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		for i := range suppliers {
			report.Checked++
			if suppliers[i].CurrentBalance.Equal(exposure[i]) {
				continue
			}
			report.Drifts = append(report.Drifts, BalanceDrift{
				SupplierID: suppliers[i].ID,
				Name:       suppliers[i].Name,
				Stored:     suppliers[i].CurrentBalance,
				Recomputed: exposure[i],
			})
			s.logger.Warn("Supplier balance drift detected",
				zap.String("supplier_id", suppliers[i].ID.String()),
				zap.String("stored", suppliers[i].CurrentBalance.String()),
				zap.String("recomputed", exposure[i].String()),
			)
		}
		if len(suppliers) < auditPageSize {
			break
		}
	}

	s.logger.Info("Supplier ledger audit finished",
		zap.Int("checked", report.Checked),
		zap.Int("drifts", len(report.Drifts)),
	)
	return report, nil
}

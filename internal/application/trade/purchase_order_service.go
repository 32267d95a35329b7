// Package trade implements the purchase order lifecycle, supplier payments
// and sales orders.
package trade

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	appfinance "github.com/erp/backoffice/internal/application/finance"
	appinventory "github.com/erp/backoffice/internal/application/inventory"
	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// poSequenceKey serializes PO number allocation
var poSequenceKey = shared.LockPurchaseOrder + ":sequence"

// PurchaseOrderService drives purchase orders through their lifecycle
type PurchaseOrderService struct {
	runner *uow.Runner
	policy *identity.Policy
	ledger *appinventory.Ledger
	logger *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(runner *uow.Runner, policy *identity.Policy, ledger *appinventory.Ledger, logger *zap.Logger) *PurchaseOrderService {
	return &PurchaseOrderService{runner: runner, policy: policy, ledger: ledger, logger: logger}
}

// Create builds a Draft purchase order authored by actor
func (s *PurchaseOrderService) Create(ctx context.Context, actor identity.Actor, req CreatePORequest) (resp *POResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "trade", "create_po", attribute.String("supplier_id", req.SupplierID.String()))
	defer telemetry.Finish(span, &err)

	if err := s.policy.Authorize(actor, identity.ActionPOCreate); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, shared.NewValidationError("NO_ITEMS", "Purchase order must have at least one item")
	}
	var terms partner.PaymentTerms
	if strings.TrimSpace(req.PaymentTerms) != "" {
		if terms, err = partner.ParsePaymentTerms(req.PaymentTerms); err != nil {
			return nil, err
		}
	}

	var po *trade.PurchaseOrder
	err = s.runner.Write(ctx, []string{poSequenceKey}, func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
		supplier, err := repos.Suppliers().FindByID(ctx, req.SupplierID)
		if err != nil {
			if shared.KindOf(err) == shared.KindNotFound {
				return nil, shared.NewValidationError("SUPPLIER_NOT_FOUND", "Supplier does not exist").
					WithDetail("supplier_id", req.SupplierID.String())
			}
			return nil, err
		}
		items, err := s.resolveItems(ctx, repos, req.Items)
		if err != nil {
			return nil, err
		}

		now := shared.Now()
		prefix := fmt.Sprintf("%s-%d-", trade.PONumberPrefix, now.Year())
		last, err := repos.PurchaseOrders().LastNumber(ctx, prefix)
		if err != nil {
			return nil, err
		}
		po, err = trade.NewPurchaseOrder(
			trade.NextNumber(trade.PONumberPrefix, now.Year(), last),
			supplier, actor.UserID, items, terms,
			trade.Charges{TaxAmount: req.TaxAmount, ShippingCost: req.ShippingCost, Discount: req.Discount},
			req.Notes,
		)
		if err != nil {
			return nil, err
		}
		if err := repos.PurchaseOrders().Create(ctx, po); err != nil {
			return nil, err
		}
		return shared.CollectEvents(po), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase order created",
		zap.String("po_id", po.ID.String()),
		zap.String("po_number", po.PONumber),
		zap.String("grand_total", po.GrandTotal.String()),
		zap.String("user_id", actor.UserID.String()),
	)
	r := ToPOResponse(po, shared.Now())
	return &r, nil
}

// resolveItems checks every product exists and is active and copies its
// name onto the line
func (s *PurchaseOrderService) resolveItems(ctx context.Context, repos uow.Repositories, lines []CreatePOItemRequest) ([]trade.ItemInput, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := repos.Products().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(products))
	for _, p := range products {
		if p.IsActive {
			names[p.ID] = p.Name
		}
	}

	items := make([]trade.ItemInput, len(lines))
	for i, line := range lines {
		name, ok := names[line.ProductID]
		if !ok {
			return nil, shared.NewValidationError("PRODUCT_NOT_FOUND", fmt.Sprintf("Item %d: product does not exist or is inactive", i+1)).
				WithDetail("product_id", line.ProductID.String())
		}
		items[i] = trade.ItemInput{
			ProductID:   line.ProductID,
			ProductName: name,
			Quantity:    line.Quantity,
			UnitCost:    line.UnitCost,
		}
	}
	return items, nil
}

// GetByID returns a purchase order with its items
func (s *PurchaseOrderService) GetByID(ctx context.Context, id uuid.UUID) (*POResponse, error) {
	var po *trade.PurchaseOrder
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		po, err = repos.PurchaseOrders().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	r := ToPOResponse(po, shared.Now())
	return &r, nil
}

// List returns a page of purchase orders, newest first by default
func (s *PurchaseOrderService) List(ctx context.Context, filter POListFilter) (*shared.Paginated[POResponse], error) {
	domainFilter, err := filter.toDomain()
	if err != nil {
		return nil, err
	}

	var page shared.Paginated[POResponse]
	err = s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		orders, err := repos.PurchaseOrders().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		total, err := repos.PurchaseOrders().Count(ctx, domainFilter)
		if err != nil {
			return err
		}
		now := shared.Now()
		items := make([]POResponse, len(orders))
		for i := range orders {
			items[i] = ToPOResponse(&orders[i], now)
		}
		page = shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (f POListFilter) toDomain() (shared.Filter, error) {
	from, to := shared.InclusiveRange(f.From, f.To)
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   strings.TrimSpace(f.Search),
		From:     from,
		To:       to,
	}.Normalize()
	if f.Status != "" {
		status := trade.PurchaseOrderStatus(f.Status)
		if !status.IsValid() {
			return filter, shared.NewValidationError("INVALID_STATUS", fmt.Sprintf("Unknown purchase order status: %s", f.Status))
		}
		filter.Filters["status"] = status.String()
	}
	if f.PaymentStatus != "" {
		status := trade.PaymentStatus(f.PaymentStatus)
		if !status.IsValid() {
			return filter, shared.NewValidationError("INVALID_PAYMENT_STATUS", fmt.Sprintf("Unknown payment status: %s", f.PaymentStatus))
		}
		filter.Filters["payment_status"] = string(status)
	}
	if f.SupplierID != nil {
		filter.Filters["supplier_id"] = *f.SupplierID
	}
	return filter, nil
}

// Submit moves a Draft order to Submitted. Only its author may submit it.
func (s *PurchaseOrderService) Submit(ctx context.Context, actor identity.Actor, id uuid.UUID) (*POResponse, error) {
	return s.transition(ctx, id, "submit", false, func(po *trade.PurchaseOrder, _ *partner.Supplier) error {
		if err := s.policy.AuthorizeOwned(actor, identity.ActionPOSubmit, po.ManagerID); err != nil {
			return err
		}
		return po.Submit(actor.UserID)
	})
}

// Approve moves a Submitted order to Approved after the supplier credit
// check, and adds the order to the supplier balance
func (s *PurchaseOrderService) Approve(ctx context.Context, actor identity.Actor, id uuid.UUID) (*POResponse, error) {
	if err := s.policy.Authorize(actor, identity.ActionPOApprove); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, "approve", true, func(po *trade.PurchaseOrder, supplier *partner.Supplier) error {
		return po.Approve(supplier, actor.UserID)
	})
}

// MarkOrdered moves an Approved order to Ordered and fixes its due date
func (s *PurchaseOrderService) MarkOrdered(ctx context.Context, actor identity.Actor, id uuid.UUID) (*POResponse, error) {
	if err := s.policy.Authorize(actor, identity.ActionPOMarkOrdered); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, "order", false, func(po *trade.PurchaseOrder, _ *partner.Supplier) error {
		return po.MarkOrdered()
	})
}

// Cancel cancels an order that is not yet fully received. Received stock
// stays in its lots; the batch numbers are returned for reconciliation.
func (s *PurchaseOrderService) Cancel(ctx context.Context, actor identity.Actor, id uuid.UUID, req CancelRequest) (*CancelResponse, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return nil, shared.NewValidationError("REASON_REQUIRED", "Cancel reason is required")
	}
	var batches []string
	po, err := s.transition(ctx, id, "cancel", true, func(po *trade.PurchaseOrder, supplier *partner.Supplier) error {
		if err := s.policy.AuthorizeOwned(actor, identity.ActionPOCancel, po.ManagerID); err != nil {
			return err
		}
		var err error
		batches, err = po.Cancel(supplier, req.Reason, actor.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if batches == nil {
		batches = []string{}
	}
	if len(batches) > 0 {
		s.logger.Warn("Cancelled purchase order had received stock",
			zap.String("po_id", id.String()),
			zap.Strings("batches", batches),
		)
	}
	return &CancelResponse{PurchaseOrder: *po, ReceivedBatches: batches}, nil
}

// transition runs fn on the locked order, and on its locked supplier when
// withSupplier is set, then saves what changed
func (s *PurchaseOrderService) transition(ctx context.Context, id uuid.UUID, op string, withSupplier bool, fn func(*trade.PurchaseOrder, *partner.Supplier) error) (resp *POResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "trade", op+"_po", attribute.String("po_id", id.String()))
	defer telemetry.Finish(span, &err)

	unlock, err := s.runner.Lock(ctx, shared.LockKey(shared.LockPurchaseOrder, id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var keys []string
	if withSupplier {
		supplierID, err := s.supplierOf(ctx, id)
		if err != nil {
			return nil, err
		}
		keys = append(keys, shared.LockKey(shared.LockSupplier, supplierID))
	}

	var po *trade.PurchaseOrder
	err = s.runner.Write(ctx, keys, func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
		var err error
		po, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		var supplier *partner.Supplier
		if withSupplier {
			if supplier, err = repos.Suppliers().FindByIDForUpdate(ctx, po.SupplierID); err != nil {
				return nil, err
			}
		}
		if err := fn(po, supplier); err != nil {
			return nil, err
		}
		if err := repos.PurchaseOrders().Save(ctx, po); err != nil {
			return nil, err
		}
		if supplier != nil {
			if err := repos.Suppliers().Save(ctx, supplier); err != nil {
				return nil, err
			}
			return shared.CollectEvents(po, supplier), nil
		}
		return shared.CollectEvents(po), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase order transitioned",
		zap.String("operation", op),
		zap.String("po_id", id.String()),
		zap.String("status", po.Status.String()),
	)
	r := ToPOResponse(po, shared.Now())
	return &r, nil
}

// supplierOf reads the order's supplier. The supplier of an order never
// changes, so the value stays valid while the order lock is held.
func (s *PurchaseOrderService) supplierOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var supplierID uuid.UUID
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		po, err := repos.PurchaseOrders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		supplierID = po.SupplierID
		return nil
	})
	return supplierID, err
}

// Receive books goods against an Ordered or PartiallyReceived order. Each
// line becomes a stock lot at the item's unit cost. Either every line is
// applied or none is.
func (s *PurchaseOrderService) Receive(ctx context.Context, actor identity.Actor, id uuid.UUID, req ReceiveRequest) (resp *POResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "trade", "receive_po",
		attribute.String("po_id", id.String()),
		attribute.Int("lines", len(req.Items)),
	)
	defer telemetry.Finish(span, &err)

	if err := s.policy.Authorize(actor, identity.ActionPOReceive); err != nil {
		return nil, err
	}
	lines := make([]trade.ReceiptLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = trade.ReceiptLine{ItemID: item.POItemID, Quantity: item.Quantity, Notes: item.Notes}
	}

	unlock, err := s.runner.Lock(ctx, shared.LockKey(shared.LockPurchaseOrder, id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var productKeys []string
	err = s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		po, err := repos.PurchaseOrders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := po.ValidateReceipt(lines); err != nil {
			return err
		}
		productKeys = receiptLockKeys(po, lines)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var po *trade.PurchaseOrder
	var created []*inventory.StockLot
	err = s.runner.Write(ctx, productKeys, func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
		var err error
		po, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := po.ValidateReceipt(lines); err != nil {
			return nil, err
		}

		received := make([]trade.ReceivedLot, 0, len(req.Items))
		events := make([]shared.DomainEvent, 0, len(req.Items)+1)
		for _, line := range req.Items {
			item := po.GetItem(line.POItemID)
			notes := line.Notes
			if notes == "" {
				notes = req.Notes
			}
			poID, itemID := po.ID, item.ID
			lot, _, err := s.ledger.AddLot(ctx, repos, inventory.LotSpec{
				ProductID:  item.ProductID,
				POID:       &poID,
				POItemID:   &itemID,
				UnitCost:   item.UnitCost,
				Quantity:   line.Quantity,
				UnitPrice:  line.UnitPrice,
				ExpiryDate: line.ExpiryDate,
				Notes:      notes,
			})
			if err != nil {
				return nil, err
			}
			created = append(created, lot)
			events = append(events, shared.CollectEvents(lot)...)
			received = append(received, trade.ReceivedLot{ItemID: item.ID, Quantity: line.Quantity, BatchNumber: lot.BatchNumber})
		}
		if err := po.Receive(received); err != nil {
			return nil, err
		}
		if err := repos.PurchaseOrders().Save(ctx, po); err != nil {
			return nil, err
		}
		return append(shared.CollectEvents(po), events...), nil
	})
	if err != nil {
		return nil, err
	}

	batches := make([]string, len(created))
	for i, lot := range created {
		batches[i] = lot.BatchNumber
	}
	s.logger.Info("Goods received",
		zap.String("po_id", id.String()),
		zap.String("status", po.Status.String()),
		zap.Strings("batches", batches),
		zap.String("user_id", actor.UserID.String()),
	)
	r := ToPOResponse(po, shared.Now())
	return &r, nil
}

// receiptLockKeys returns the product keys of the received lines in ID order
func receiptLockKeys(po *trade.PurchaseOrder, lines []trade.ReceiptLine) []string {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		item := po.GetItem(line.ItemID)
		if item == nil {
			continue
		}
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return productLockKeys(ids)
}

// productLockKeys sorts ids and builds their lock keys
func productLockKeys(ids []uuid.UUID) []string {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = shared.LockKey(shared.LockProduct, id)
	}
	return keys
}

// AddPayment records a payment against the order. The amount may not
// exceed the balance due at the time the order is locked.
func (s *PurchaseOrderService) AddPayment(ctx context.Context, actor identity.Actor, id uuid.UUID, req PaymentRequest) (resp *appfinance.PaymentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "trade", "add_payment",
		attribute.String("po_id", id.String()),
		attribute.String("amount", req.Amount.String()),
	)
	defer telemetry.Finish(span, &err)

	if err := s.policy.Authorize(actor, identity.ActionPOPay); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Payment amount must be greater than zero")
	}

	unlock, err := s.runner.Lock(ctx, shared.LockKey(shared.LockPurchaseOrder, id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	supplierID, err := s.supplierOf(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		payment *finance.Payment
		po      *trade.PurchaseOrder
	)
	err = s.runner.Write(ctx, []string{shared.LockKey(shared.LockSupplier, supplierID)},
		func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
			var err error
			po, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, id)
			if err != nil {
				return nil, err
			}
			supplier, err := repos.Suppliers().FindByIDForUpdate(ctx, po.SupplierID)
			if err != nil {
				return nil, err
			}
			payment, err = finance.NewPayment(po.ID, po.PONumber, po.SupplierID, req.Amount,
				finance.PaymentMethod(req.Method), req.PaymentDate,
				finance.PaymentDetails{
					ChequeNumber:    req.ChequeNumber,
					BankName:        req.BankName,
					ReferenceNumber: req.ReferenceNumber,
					MobileNumber:    req.MobileNumber,
					MobileProvider:  finance.MobileProvider(req.MobileProvider),
					Notes:           req.Notes,
				}, actor.UserID)
			if err != nil {
				return nil, err
			}
			if err := po.RecordPayment(supplier, req.Amount); err != nil {
				return nil, err
			}
			if err := repos.PurchaseOrders().Save(ctx, po); err != nil {
				return nil, err
			}
			if err := repos.Suppliers().Save(ctx, supplier); err != nil {
				return nil, err
			}
			if err := repos.Payments().Create(ctx, payment); err != nil {
				return nil, err
			}
			return shared.CollectEvents(po, supplier), nil
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment recorded",
		zap.String("po_id", id.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("balance_due", po.BalanceDue.String()),
		zap.String("payment_status", string(po.PaymentStatus)),
	)
	r := appfinance.ToPaymentResponse(payment)
	return &r, nil
}

// Payments lists the payments of an order, oldest first
func (s *PurchaseOrderService) Payments(ctx context.Context, id uuid.UUID) ([]appfinance.PaymentResponse, error) {
	var payments []finance.Payment
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		if _, err := repos.PurchaseOrders().FindByID(ctx, id); err != nil {
			return err
		}
		var err error
		payments, err = repos.Payments().FindByPO(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return appfinance.ToPaymentResponses(payments), nil
}

// DashboardStats summarizes purchasing: counts by status, overdue orders
// and value totals
func (s *PurchaseOrderService) DashboardStats(ctx context.Context) (*trade.PurchaseOrderStats, error) {
	var stats *trade.PurchaseOrderStats
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		stats, err = repos.PurchaseOrders().Stats(ctx, shared.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, st := range trade.AllPurchaseOrderStatuses() {
		if _, ok := stats.ByStatus[st]; !ok {
			stats.ByStatus[st] = 0
		}
	}
	return stats, nil
}

// ExportRows returns every order matching filter for a spreadsheet export,
// ignoring pagination
func (s *PurchaseOrderService) ExportRows(ctx context.Context, filter POListFilter) ([]POResponse, error) {
	domainFilter, err := filter.toDomain()
	if err != nil {
		return nil, err
	}
	var out []POResponse
	err = s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		for page := 1; ; page++ {
			domainFilter.Page = page
			domainFilter.PageSize = shared.MaxPageSize
			orders, err := repos.PurchaseOrders().FindAll(ctx, domainFilter)
			if err != nil {
				return err
			}
			now := shared.Now()
			for i := range orders {
				out = append(out, ToPOResponse(&orders[i], now))
			}
			if len(orders) < shared.MaxPageSize {
				return nil
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExportFilename names the purchase order workbook download
func ExportFilename(at time.Time) string {
	return fmt.Sprintf("purchase-orders-%s.xlsx", at.Format("20060102"))
}

package telemetry

import (
	"context"

	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics turns committed domain events into counters. It is
// subscribed to the event bus rather than called from services.
type BusinessMetrics struct {
	poCreated       *Counter
	poTransitions   *Counter
	poCancelled     *Counter
	paymentsTotal   *Counter
	paymentAmount   *Histogram
	lotsCreated     *Counter
	lotAdjustments  *Counter
	salesTotal      *Counter
	salesAmount     *Histogram
	lowStockEvents  *Counter
	balanceChanges  *Counter
	eventsProcessed *Counter
}

// moneyBuckets span a single cheap item to a large purchase order.
var moneyBuckets = []float64{1_000, 10_000, 50_000, 100_000, 500_000, 1_000_000, 5_000_000, 10_000_000}

// NewBusinessMetrics creates the back-office instruments on meter.
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	m := &BusinessMetrics{}
	counters := []struct {
		dst               **Counter
		name, desc, unit string
	}{
		{&m.poCreated, "po_created_total", "Purchase orders created", "{order}"},
		{&m.poTransitions, "po_status_transitions_total", "Purchase order status changes by target status", "{transition}"},
		{&m.poCancelled, "po_cancelled_total", "Purchase orders cancelled by prior status", "{order}"},
		{&m.paymentsTotal, "po_payments_total", "Supplier payments recorded by resulting payment status", "{payment}"},
		{&m.lotsCreated, "stock_lots_created_total", "Stock lots created by origin", "{lot}"},
		{&m.lotAdjustments, "stock_lot_adjustments_total", "Manual lot adjustments and retirements", "{adjustment}"},
		{&m.salesTotal, "sales_orders_total", "Sales orders by payment status", "{order}"},
		{&m.lowStockEvents, "stock_low_total", "Sales that left a product at or below its minimum stock", "{event}"},
		{&m.balanceChanges, "supplier_balance_changes_total", "Supplier balance movements by direction", "{change}"},
		{&m.eventsProcessed, "domain_events_total", "Domain events observed by type", "{event}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	var err error
	if m.paymentAmount, err = NewHistogram(meter, HistogramOpts{
		Name: "po_payment_amount", Description: "Supplier payment amounts", Unit: "{currency}", Boundaries: moneyBuckets,
	}); err != nil {
		return nil, err
	}
	if m.salesAmount, err = NewHistogram(meter, HistogramOpts{
		Name: "sales_order_amount", Description: "Sales order totals", Unit: "{currency}", Boundaries: moneyBuckets,
	}); err != nil {
		return nil, err
	}
	return m, nil
}

// EventTypes lists the events the metrics observe.
func (m *BusinessMetrics) EventTypes() []string {
	return []string{
		trade.EventTypePurchaseOrderCreated,
		trade.EventTypePurchaseOrderStatusChanged,
		trade.EventTypePurchaseOrderReceived,
		trade.EventTypePurchaseOrderCancelled,
		trade.EventTypePurchaseOrderPaid,
		trade.EventTypeSalesOrderCreated,
		inventory.EventTypeStockLotCreated,
		inventory.EventTypeStockLotAdjusted,
		inventory.EventTypeStockDepleted,
		partner.EventTypeSupplierBalanceChanged,
	}
}

// Handle records one event. It never fails.
func (m *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	m.eventsProcessed.Inc(ctx, attribute.String("event_type", event.EventType()))

	switch e := event.(type) {
	case *trade.PurchaseOrderCreatedEvent:
		m.poCreated.Inc(ctx)
	case *trade.PurchaseOrderStatusChangedEvent:
		m.poTransitions.Inc(ctx, attribute.String("from", string(e.From)), attribute.String("to", string(e.To)))
	case *trade.PurchaseOrderReceivedEvent:
		m.poTransitions.Inc(ctx, attribute.String("from", string(e.From)), attribute.String("to", string(e.To)))
	case *trade.PurchaseOrderCancelledEvent:
		m.poCancelled.Inc(ctx, attribute.String("from", string(e.From)))
	case *trade.PurchaseOrderPaidEvent:
		m.paymentsTotal.Inc(ctx, attribute.String("payment_status", string(e.PaymentStatus)))
		m.paymentAmount.Record(ctx, e.Amount.InexactFloat64())
	case *trade.SalesOrderCreatedEvent:
		m.salesTotal.Inc(ctx, attribute.String("payment_status", string(e.PaymentStatus)))
		m.salesAmount.Record(ctx, e.TotalAmount.InexactFloat64())
	case *inventory.StockLotCreatedEvent:
		origin := "manual"
		if e.POID != nil {
			origin = "purchase_order"
		}
		m.lotsCreated.Inc(ctx, attribute.String("origin", origin))
	case *inventory.StockLotAdjustedEvent:
		m.lotAdjustments.Inc(ctx, attribute.Bool("retired", !e.IsActive))
	case *inventory.StockDepletedEvent:
		if e.IsLowStock {
			m.lowStockEvents.Inc(ctx)
		}
	case *partner.SupplierBalanceChangedEvent:
		direction := "down"
		if e.NewBalance.GreaterThan(e.OldBalance) {
			direction = "up"
		}
		m.balanceChanges.Inc(ctx, attribute.String("direction", direction))
	}
	return nil
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)

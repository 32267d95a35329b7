package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypePurchaseOrder is the aggregate type for purchase orders
const AggregateTypePurchaseOrder = "PurchaseOrder"

// PurchaseOrderItem represents a line item in a purchase order
type PurchaseOrderItem struct {
	ID               uuid.UUID
	POID             uuid.UUID
	ProductID        uuid.UUID
	ProductName      string
	Quantity         decimal.Decimal
	UnitCost         decimal.Decimal
	Subtotal         decimal.Decimal
	QuantityReceived decimal.Decimal
	// BatchNumbers and ReceivedDates are parallel: one entry per receipt
	BatchNumbers  []string
	ReceivedDates []time.Time
}

// RemainingQuantity returns the quantity still to be received
func (i *PurchaseOrderItem) RemainingQuantity() decimal.Decimal {
	return i.Quantity.Sub(i.QuantityReceived)
}

// IsFullyReceived returns true if all ordered quantity has been received
func (i *PurchaseOrderItem) IsFullyReceived() bool {
	return i.QuantityReceived.GreaterThanOrEqual(i.Quantity)
}

// ItemInput describes a line when creating a purchase order
type ItemInput struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
}

// Charges are the order-level amounts applied on top of the item total
type Charges struct {
	TaxAmount    decimal.Decimal
	ShippingCost decimal.Decimal
	Discount     decimal.Decimal
}

// PurchaseOrder is the aggregate root for buying stock from a supplier
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	PONumber      string
	SupplierID    uuid.UUID
	ManagerID     uuid.UUID
	Items         []PurchaseOrderItem
	TotalCost     decimal.Decimal
	TaxAmount     decimal.Decimal
	ShippingCost  decimal.Decimal
	Discount      decimal.Decimal
	GrandTotal    decimal.Decimal
	Status        PurchaseOrderStatus
	AmountPaid    decimal.Decimal
	BalanceDue    decimal.Decimal
	PaymentStatus PaymentStatus
	PaymentTerms  partner.PaymentTerms
	SubmittedAt   *time.Time
	ApprovedAt    *time.Time
	ApprovedBy    *uuid.UUID
	OrderedAt     *time.Time
	ReceivedAt    *time.Time
	DueDate       *time.Time
	CancelledAt   *time.Time
	CancelledBy   *uuid.UUID
	CancelReason  string
	Notes         string
}

// NewPurchaseOrder creates a Draft purchase order authored by managerID
func NewPurchaseOrder(poNumber string, supplier *partner.Supplier, managerID uuid.UUID, items []ItemInput, terms partner.PaymentTerms, charges Charges, notes string) (*PurchaseOrder, error) {
	if strings.TrimSpace(poNumber) == "" {
		return nil, shared.NewValidationError("INVALID_PO_NUMBER", "PO number cannot be empty")
	}
	if supplier == nil {
		return nil, shared.NewValidationError("INVALID_SUPPLIER", "Supplier is required")
	}
	if !supplier.IsActive {
		return nil, shared.NewValidationError("SUPPLIER_INACTIVE", "Supplier is not active")
	}
	if managerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_MANAGER", "Author is required")
	}
	if len(items) == 0 {
		return nil, shared.NewValidationError("NO_ITEMS", "Purchase order must have at least one item")
	}
	if terms == "" {
		terms = supplier.PaymentTerms
	}
	if _, err := partner.ParsePaymentTerms(string(terms)); err != nil {
		return nil, err
	}

	po := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PONumber:          poNumber,
		SupplierID:        supplier.ID,
		ManagerID:         managerID,
		Status:            POStatusDraft,
		AmountPaid:        decimal.Zero,
		PaymentStatus:     PaymentStatusUnpaid,
		PaymentTerms:      terms,
		Notes:             strings.TrimSpace(notes),
	}

	po.Items = make([]PurchaseOrderItem, 0, len(items))
	for idx, in := range items {
		if in.ProductID == uuid.Nil {
			return nil, shared.NewValidationError("INVALID_PRODUCT", fmt.Sprintf("Item %d: product is required", idx+1))
		}
		if !in.Quantity.IsPositive() {
			return nil, shared.NewValidationError("INVALID_QUANTITY", fmt.Sprintf("Item %d: quantity must be greater than zero", idx+1))
		}
		if !in.UnitCost.IsPositive() {
			return nil, shared.NewValidationError("INVALID_COST", fmt.Sprintf("Item %d: unit cost must be greater than zero", idx+1))
		}
		po.Items = append(po.Items, PurchaseOrderItem{
			ID:               uuid.New(),
			POID:             po.ID,
			ProductID:        in.ProductID,
			ProductName:      in.ProductName,
			Quantity:         in.Quantity,
			UnitCost:         in.UnitCost,
			Subtotal:         in.Quantity.Mul(in.UnitCost),
			QuantityReceived: decimal.Zero,
			BatchNumbers:     []string{},
			ReceivedDates:    []time.Time{},
		})
	}

	if err := po.applyCharges(charges); err != nil {
		return nil, err
	}

	po.AddDomainEvent(NewPurchaseOrderCreatedEvent(po))
	return po, nil
}

func (o *PurchaseOrder) applyCharges(c Charges) error {
	if c.TaxAmount.IsNegative() || c.ShippingCost.IsNegative() || c.Discount.IsNegative() {
		return shared.NewValidationError("INVALID_AMOUNT", "Tax, shipping and discount cannot be negative")
	}
	o.TaxAmount = c.TaxAmount
	o.ShippingCost = c.ShippingCost
	o.Discount = c.Discount
	o.recalculateTotals()
	if o.GrandTotal.IsNegative() {
		return shared.NewValidationError("INVALID_DISCOUNT", "Discount cannot exceed the order total")
	}
	return nil
}

func (o *PurchaseOrder) recalculateTotals() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal)
	}
	o.TotalCost = total
	o.GrandTotal = total.Add(o.TaxAmount).Add(o.ShippingCost).Sub(o.Discount)
	o.BalanceDue = o.GrandTotal.Sub(o.AmountPaid)
	o.PaymentStatus = derivePaymentStatus(o.AmountPaid, o.GrandTotal)
}

func derivePaymentStatus(paid, grandTotal decimal.Decimal) PaymentStatus {
	switch {
	case paid.IsZero():
		return PaymentStatusUnpaid
	case paid.GreaterThanOrEqual(grandTotal):
		return PaymentStatusPaid
	default:
		return PaymentStatusPartial
	}
}

func (o *PurchaseOrder) transitionTo(target PurchaseOrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewTransitionError(fmt.Sprintf("Cannot move purchase order from %s to %s", o.Status, target)).
			WithDetail("from", string(o.Status)).
			WithDetail("to", string(target))
	}
	o.Status = target
	return nil
}

// IsAuthoredBy reports whether userID created the order
func (o *PurchaseOrder) IsAuthoredBy(userID uuid.UUID) bool {
	return o.ManagerID == userID
}

// Submit moves a Draft order to Submitted. Only the author may submit.
func (o *PurchaseOrder) Submit(actorID uuid.UUID) error {
	if err := o.ensureStatus(POStatusDraft, "submit"); err != nil {
		return err
	}
	if !o.IsAuthoredBy(actorID) {
		return shared.NewForbiddenError("Only the author may submit a purchase order")
	}
	if err := o.transitionTo(POStatusSubmitted); err != nil {
		return err
	}
	now := shared.Now()
	o.SubmittedAt = &now
	o.Touch()
	o.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(o, POStatusDraft))
	return nil
}

// Approve moves a Submitted order to Approved after the supplier credit
// check, and posts the order's balance to the supplier ledger.
func (o *PurchaseOrder) Approve(supplier *partner.Supplier, approverID uuid.UUID) error {
	if err := o.ensureStatus(POStatusSubmitted, "approve"); err != nil {
		return err
	}
	if err := o.ensureSupplier(supplier); err != nil {
		return err
	}
	if err := supplier.CheckCredit(o.GrandTotal); err != nil {
		return err
	}
	if err := o.transitionTo(POStatusApproved); err != nil {
		return err
	}
	if err := supplier.AddExposure(o.BalanceDue, o.PONumber); err != nil {
		return err
	}
	now := shared.Now()
	o.ApprovedAt = &now
	o.ApprovedBy = &approverID
	o.Touch()
	o.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(o, POStatusSubmitted))
	return nil
}

// MarkOrdered moves an Approved order to Ordered and fixes the due date
// from the payment terms.
func (o *PurchaseOrder) MarkOrdered() error {
	if err := o.ensureStatus(POStatusApproved, "mark as ordered"); err != nil {
		return err
	}
	if err := o.transitionTo(POStatusOrdered); err != nil {
		return err
	}
	now := shared.Now()
	o.OrderedAt = &now
	o.DueDate = o.PaymentTerms.DueDate(now)
	o.Touch()
	o.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(o, POStatusApproved))
	return nil
}

// ReceiptLine is one line of a goods receipt
type ReceiptLine struct {
	ItemID   uuid.UUID
	Quantity decimal.Decimal
	Notes    string
}

// ReceivedLot pairs an accepted receipt line with the lot created for it
type ReceivedLot struct {
	ItemID      uuid.UUID
	Quantity    decimal.Decimal
	BatchNumber string
}

// ValidateReceipt checks a receipt against the order without changing it.
// Every line must reference a distinct item and stay within its remaining
// quantity.
func (o *PurchaseOrder) ValidateReceipt(lines []ReceiptLine) error {
	if !o.Status.CanReceive() {
		return shared.NewTransitionError(fmt.Sprintf("Cannot receive goods for purchase order in %s status", o.Status)).
			WithDetail("status", string(o.Status))
	}
	if len(lines) == 0 {
		return shared.NewValidationError("NO_ITEMS", "Receive items cannot be empty")
	}
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if _, dup := seen[line.ItemID]; dup {
			return shared.NewValidationError("DUPLICATE_ITEM", "Each purchase order item may appear once per receipt").
				WithDetail("po_item_id", line.ItemID.String())
		}
		seen[line.ItemID] = struct{}{}

		item := o.GetItem(line.ItemID)
		if item == nil {
			return shared.NewValidationError("ITEM_NOT_FOUND", "Item does not belong to this purchase order").
				WithDetail("po_item_id", line.ItemID.String())
		}
		if !line.Quantity.IsPositive() {
			return shared.NewValidationError("INVALID_QUANTITY", "Receive quantity must be greater than zero").
				WithDetail("po_item_id", line.ItemID.String())
		}
		if line.Quantity.GreaterThan(item.RemainingQuantity()) {
			return shared.ErrOverReceipt.
				WithDetail("po_item_id", line.ItemID.String()).
				WithDetail("product_name", item.ProductName).
				WithDetail("requested", line.Quantity.String()).
				WithDetail("remaining", item.RemainingQuantity().String())
		}
	}
	return nil
}

// Receive applies a validated receipt. Each lot's batch number and the
// receipt time are appended to its item, then the status becomes Received
// when every item is complete and PartiallyReceived otherwise.
func (o *PurchaseOrder) Receive(lots []ReceivedLot) error {
	lines := make([]ReceiptLine, 0, len(lots))
	for _, lot := range lots {
		if strings.TrimSpace(lot.BatchNumber) == "" {
			return shared.NewValidationError("INVALID_BATCH_NUMBER", "Batch number cannot be empty")
		}
		lines = append(lines, ReceiptLine{ItemID: lot.ItemID, Quantity: lot.Quantity})
	}
	if err := o.ValidateReceipt(lines); err != nil {
		return err
	}

	now := shared.Now()
	for _, lot := range lots {
		item := o.GetItem(lot.ItemID)
		item.QuantityReceived = item.QuantityReceived.Add(lot.Quantity)
		item.BatchNumbers = append(item.BatchNumbers, lot.BatchNumber)
		item.ReceivedDates = append(item.ReceivedDates, now)
	}

	from := o.Status
	target := POStatusPartiallyReceived
	if o.isAllItemsReceived() {
		target = POStatusReceived
	}
	if err := o.transitionTo(target); err != nil {
		return err
	}
	if target == POStatusReceived {
		o.ReceivedAt = &now
	}
	o.Touch()
	o.AddDomainEvent(NewPurchaseOrderReceivedEvent(o, from, lots))
	return nil
}

// Cancel moves the order to Cancelled and rolls its contribution back out
// of the supplier ledger. Stock already received stays in the lots; the
// received batch numbers are returned for reconciliation.
func (o *PurchaseOrder) Cancel(supplier *partner.Supplier, reason string, actorID uuid.UUID) ([]string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewValidationError("REASON_REQUIRED", "Cancel reason is required")
	}
	if err := o.ensureSupplier(supplier); err != nil {
		return nil, err
	}
	from := o.Status
	exposure := o.SupplierExposure()
	if err := o.transitionTo(POStatusCancelled); err != nil {
		return nil, err
	}
	if err := supplier.ReduceExposure(exposure, o.PONumber); err != nil {
		return nil, err
	}
	now := shared.Now()
	o.CancelledAt = &now
	o.CancelledBy = &actorID
	o.CancelReason = reason
	o.Touch()

	batches := o.ReceivedBatchNumbers()
	o.AddDomainEvent(NewPurchaseOrderCancelledEvent(o, from, batches))
	return batches, nil
}

// RecordPayment adds amount to the paid total. When the order already
// counts against the supplier, the supplier balance goes down by the same
// amount.
func (o *PurchaseOrder) RecordPayment(supplier *partner.Supplier, amount decimal.Decimal) error {
	if o.Status == POStatusCancelled {
		return shared.NewTransitionError("Cannot record payment on a cancelled purchase order").
			WithDetail("status", string(o.Status))
	}
	if err := o.ensureSupplier(supplier); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("INVALID_AMOUNT", "Payment amount must be greater than zero")
	}
	if !o.BalanceDue.IsPositive() {
		return shared.NewTransitionError("Purchase order is already fully paid").
			WithDetail("balance_due", o.BalanceDue.String())
	}
	if amount.GreaterThan(o.BalanceDue) {
		return shared.ErrOverPayment.
			WithDetail("amount", amount.String()).
			WithDetail("balance_due", o.BalanceDue.String())
	}

	if o.Status.IsCommitted() {
		if err := supplier.ReduceExposure(amount, o.PONumber); err != nil {
			return err
		}
	}
	o.AmountPaid = o.AmountPaid.Add(amount)
	o.recalculateTotals()
	o.Touch()
	o.AddDomainEvent(NewPurchaseOrderPaidEvent(o, amount))
	return nil
}

// SupplierExposure is what this order currently contributes to the
// supplier balance: its balance due once approved, zero otherwise.
func (o *PurchaseOrder) SupplierExposure() decimal.Decimal {
	if o.Status.IsCommitted() {
		return o.BalanceDue
	}
	return decimal.Zero
}

// IsOverdue reports whether an unpaid balance is past its due date
func (o *PurchaseOrder) IsOverdue(now time.Time) bool {
	if o.Status == POStatusCancelled || o.DueDate == nil || !o.BalanceDue.IsPositive() {
		return false
	}
	return o.DueDate.Before(now)
}

// ReceivedBatchNumbers lists every batch created against the order
func (o *PurchaseOrder) ReceivedBatchNumbers() []string {
	var batches []string
	for _, item := range o.Items {
		batches = append(batches, item.BatchNumbers...)
	}
	return batches
}

// GetItem returns the item with the given ID, or nil
func (o *PurchaseOrder) GetItem(itemID uuid.UUID) *PurchaseOrderItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// ProductIDs returns the distinct products on the order, in item order
func (o *PurchaseOrder) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(o.Items))
	ids := make([]uuid.UUID, 0, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// ReceiveProgress returns the received percentage across all items
func (o *PurchaseOrder) ReceiveProgress() decimal.Decimal {
	ordered, received := decimal.Zero, decimal.Zero
	for _, item := range o.Items {
		ordered = ordered.Add(item.Quantity)
		received = received.Add(item.QuantityReceived)
	}
	if ordered.IsZero() {
		return decimal.Zero
	}
	return received.Div(ordered).Mul(decimal.NewFromInt(100)).Round(2)
}

func (o *PurchaseOrder) isAllItemsReceived() bool {
	for _, item := range o.Items {
		if !item.IsFullyReceived() {
			return false
		}
	}
	return true
}

func (o *PurchaseOrder) ensureStatus(want PurchaseOrderStatus, op string) error {
	if o.Status != want {
		return shared.NewTransitionError(fmt.Sprintf("Cannot %s purchase order in %s status", op, o.Status)).
			WithDetail("status", string(o.Status))
	}
	return nil
}

func (o *PurchaseOrder) ensureSupplier(s *partner.Supplier) error {
	if s == nil || s.ID != o.SupplierID {
		return shared.NewKindError(shared.KindInternal, "SUPPLIER_MISMATCH", "Supplier does not match purchase order")
	}
	return nil
}

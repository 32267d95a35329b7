package trade

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	POStatusDraft             PurchaseOrderStatus = "Draft"
	POStatusSubmitted         PurchaseOrderStatus = "Submitted"
	POStatusApproved          PurchaseOrderStatus = "Approved"
	POStatusOrdered           PurchaseOrderStatus = "Ordered"
	POStatusPartiallyReceived PurchaseOrderStatus = "Partially Received"
	POStatusReceived          PurchaseOrderStatus = "Received"
	POStatusCancelled         PurchaseOrderStatus = "Cancelled"
)

// AllPurchaseOrderStatuses lists the statuses in lifecycle order
func AllPurchaseOrderStatuses() []PurchaseOrderStatus {
	return []PurchaseOrderStatus{
		POStatusDraft, POStatusSubmitted, POStatusApproved, POStatusOrdered,
		POStatusPartiallyReceived, POStatusReceived, POStatusCancelled,
	}
}

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	for _, v := range AllPurchaseOrderStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no transition leaves the status
func (s PurchaseOrderStatus) IsTerminal() bool {
	return s == POStatusReceived || s == POStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case POStatusDraft:
		return target == POStatusSubmitted || target == POStatusCancelled
	case POStatusSubmitted:
		return target == POStatusApproved || target == POStatusCancelled
	case POStatusApproved:
		return target == POStatusOrdered || target == POStatusCancelled
	case POStatusOrdered, POStatusPartiallyReceived:
		return target == POStatusPartiallyReceived || target == POStatusReceived || target == POStatusCancelled
	}
	return false
}

// CanReceive returns true if receiving goods is allowed in this status
func (s PurchaseOrderStatus) CanReceive() bool {
	return s == POStatusOrdered || s == POStatusPartiallyReceived
}

// IsCommitted reports whether a PO in this status counts against the
// supplier's credit: it has been approved and not cancelled.
func (s PurchaseOrderStatus) IsCommitted() bool {
	switch s {
	case POStatusApproved, POStatusOrdered, POStatusPartiallyReceived, POStatusReceived:
		return true
	}
	return false
}

// PaymentStatus is derived from the paid ratio of a purchase order
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "Unpaid"
	PaymentStatusPartial PaymentStatus = "Partial"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

// IsValid checks if the payment status is known
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusUnpaid || s == PaymentStatusPartial || s == PaymentStatusPaid
}

package shared

import "errors"

// ErrorKind classifies a domain error for callers. The kind decides how the
// error is surfaced (HTTP status) and whether it may be retried.
type ErrorKind string

const (
	KindValidation          ErrorKind = "ValidationError"
	KindInvalidTransition   ErrorKind = "InvalidTransition"
	KindForbidden           ErrorKind = "Forbidden"
	KindUnauthorized        ErrorKind = "Unauthorized"
	KindCreditLimitExceeded ErrorKind = "CreditLimitExceeded"
	KindOverReceipt         ErrorKind = "OverReceipt"
	KindOverPayment         ErrorKind = "OverPayment"
	KindInsufficientStock   ErrorKind = "InsufficientStock"
	KindNotFound            ErrorKind = "NotFound"
	KindConflict            ErrorKind = "Conflict"
	KindBusy                ErrorKind = "Busy"
	KindInternal            ErrorKind = "Internal"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Kind    ErrorKind      `json:"kind"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is works against the sentinel values below even when the message
// was customized.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Retryable reports whether the caller may retry the same request unchanged.
func (e *DomainError) Retryable() bool {
	return e.Kind == KindBusy
}

// WithDetail returns a copy of the error carrying an extra detail entry
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{Code: e.Code, Message: e.Message, Kind: e.Kind, Details: details}
}

// NewDomainError creates a new domain error. The kind is derived from the
// code when the code belongs to a known family, otherwise ValidationError.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    kindForCode(code),
	}
}

// NewKindError creates a domain error with an explicit kind
func NewKindError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
}

// Common domain errors
var (
	ErrNotFound               = NewKindError(KindNotFound, "NOT_FOUND", "Resource not found")
	ErrAlreadyExists          = NewKindError(KindConflict, "ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput           = NewKindError(KindValidation, "INVALID_INPUT", "Invalid input provided")
	ErrConcurrentModification = NewKindError(KindBusy, "CONCURRENT_MODIFICATION", "Resource was modified by another request, retry")
	ErrBusy                   = NewKindError(KindBusy, "BUSY", "Resource is busy, retry later")
	ErrUnauthorized           = NewKindError(KindUnauthorized, "UNAUTHORIZED", "Authentication required")
	ErrForbidden              = NewKindError(KindForbidden, "FORBIDDEN", "Not allowed to perform this action")
	ErrInvalidTransition      = NewKindError(KindInvalidTransition, "INVALID_TRANSITION", "Operation not allowed in current state")
	ErrInsufficientStock      = NewKindError(KindInsufficientStock, "INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrCreditLimitExceeded    = NewKindError(KindCreditLimitExceeded, "CREDIT_LIMIT_EXCEEDED", "Supplier credit limit exceeded")
	ErrOverReceipt            = NewKindError(KindOverReceipt, "OVER_RECEIPT", "Received quantity exceeds remaining quantity")
	ErrOverPayment            = NewKindError(KindOverPayment, "OVER_PAYMENT", "Payment amount exceeds balance due")
	ErrDuplicateRequest       = NewKindError(KindConflict, "DUPLICATE_REQUEST", "Request with this idempotency key was already processed")
	ErrInternal               = NewKindError(KindInternal, "INTERNAL", "Internal error")
)

// NewValidationError creates a ValidationError with a specific code
func NewValidationError(code, message string) *DomainError {
	return NewKindError(KindValidation, code, message)
}

// NewNotFoundError creates a NotFound error for the named resource
func NewNotFoundError(resource string) *DomainError {
	return NewKindError(KindNotFound, "NOT_FOUND", resource+" not found")
}

// NewTransitionError creates an InvalidTransition error
func NewTransitionError(message string) *DomainError {
	return NewKindError(KindInvalidTransition, "INVALID_TRANSITION", message)
}

// NewForbiddenError creates a Forbidden error
func NewForbiddenError(message string) *DomainError {
	return NewKindError(KindForbidden, "FORBIDDEN", message)
}

// NewBusyError creates a retryable Busy error
func NewBusyError(message string) *DomainError {
	return NewKindError(KindBusy, "BUSY", message)
}

// KindOf returns the kind of err, or KindInternal when err is not a DomainError
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsBusy reports whether err is a retryable concurrency error
func IsBusy(err error) bool {
	return KindOf(err) == KindBusy
}

func kindForCode(code string) ErrorKind {
	switch code {
	case "NOT_FOUND":
		return KindNotFound
	case "FORBIDDEN":
		return KindForbidden
	case "UNAUTHORIZED":
		return KindUnauthorized
	case "INVALID_TRANSITION", "INVALID_STATE":
		return KindInvalidTransition
	case "INSUFFICIENT_STOCK":
		return KindInsufficientStock
	case "CREDIT_LIMIT_EXCEEDED":
		return KindCreditLimitExceeded
	case "OVER_RECEIPT":
		return KindOverReceipt
	case "OVER_PAYMENT":
		return KindOverPayment
	case "BUSY", "CONCURRENT_MODIFICATION":
		return KindBusy
	case "ALREADY_EXISTS", "DUPLICATE_REQUEST":
		return KindConflict
	case "INTERNAL":
		return KindInternal
	default:
		return KindValidation
	}
}

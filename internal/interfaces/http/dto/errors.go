package dto

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
)

// Error code constants for failures raised at the HTTP layer itself.
// Domain codes are normalized into the same ERR_<DESCRIPTION> format.
const (
	ErrCodeInternal          = "ERR_INTERNAL"
	ErrCodeValidation        = "ERR_VALIDATION"
	ErrCodeInvalidJSON       = "ERR_INVALID_JSON"
	ErrCodeUnauthorized      = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired      = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid      = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked      = "ERR_TOKEN_REVOKED"
	ErrCodeNotFound          = "ERR_NOT_FOUND"
	ErrCodeRateLimited       = "ERR_RATE_LIMITED"
	ErrCodeRequestTooLarge   = "ERR_REQUEST_TOO_LARGE"
	ErrCodeDuplicateRequest  = "ERR_DUPLICATE_REQUEST"
	ErrCodeRequestTimeout    = "ERR_REQUEST_TIMEOUT"
	ErrCodeDocsNotAvailable  = "ERR_DOCS_NOT_AVAILABLE"
	ErrCodeDocsAccessDenied  = "ERR_DOCS_ACCESS_DENIED"
	ErrCodeIdempotencyFailed = "ERR_IDEMPOTENCY_UNAVAILABLE"
)

// KindHTTPStatus maps error kinds to HTTP status codes
var KindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation:          http.StatusBadRequest,
	shared.KindUnauthorized:        http.StatusUnauthorized,
	shared.KindForbidden:           http.StatusForbidden,
	shared.KindNotFound:            http.StatusNotFound,
	shared.KindBusy:                http.StatusConflict,
	shared.KindConflict:            http.StatusConflict,
	shared.KindInvalidTransition:   http.StatusUnprocessableEntity,
	shared.KindCreditLimitExceeded: http.StatusUnprocessableEntity,
	shared.KindOverReceipt:         http.StatusUnprocessableEntity,
	shared.KindOverPayment:         http.StatusUnprocessableEntity,
	shared.KindInsufficientStock:   http.StatusUnprocessableEntity,
	shared.KindInternal:            http.StatusInternalServerError,
}

// HTTPStatus returns the status code for kind, 500 for unknown kinds
func HTTPStatus(kind shared.ErrorKind) int {
	if status, ok := KindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode prefixes a domain code with ERR_
func NormalizeErrorCode(code string) string {
	if code == "" {
		return ErrCodeInternal
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}

// FromError converts any error into a status code and an error body.
// Errors that are not domain errors become a generic internal error; the
// cause is the caller's to log.
func FromError(err error) (int, ErrorInfo) {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, ErrorInfo{
			Code:    ErrCodeInternal,
			Kind:    string(shared.KindInternal),
			Message: "An unexpected error occurred",
		}
	}
	info := ErrorInfo{
		Code:      NormalizeErrorCode(de.Code),
		Kind:      string(de.Kind),
		Message:   de.Message,
		Retryable: de.Retryable(),
		Details:   de.Details,
	}
	if de.Kind == shared.KindInternal {
		info.Message = "An unexpected error occurred"
		info.Details = nil
	}
	return HTTPStatus(de.Kind), info
}

// NewHTTPError builds an error body for failures that never reach a service
func NewHTTPError(kind shared.ErrorKind, code, message string) ErrorInfo {
	return ErrorInfo{Code: code, Kind: string(kind), Message: message, Retryable: kind == shared.KindBusy}
}

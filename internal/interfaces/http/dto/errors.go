package dto

import "net/http"

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeValidation is used for request validation failures
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeAlreadyExists is used when creating a duplicate resource
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	// ErrCodeUnauthorized is used when authentication is missing or invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks access to the resource
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "CONFLICT"
	// ErrCodeRateLimited is used when the rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMITED"
)

// Order lifecycle error codes
const (
	// ErrCodeInvalidTransition is used when a status change is not allowed
	// by the order state machine
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	// ErrCodeOrderLocked is used when line items are edited after stock deduction
	ErrCodeOrderLocked = "ORDER_LOCKED"
	// ErrCodeOrderStockCommitted is used when packing touches an order whose
	// stock is already committed
	ErrCodeOrderStockCommitted = "ORDER_STOCK_COMMITTED"
)

// Picking and packing error codes
const (
	// ErrCodeOrderNotEligible is used when a session batch contains orders
	// that cannot join
	ErrCodeOrderNotEligible = "ORDER_NOT_ELIGIBLE"
	// ErrCodeIncompletePacking is used when completion is attempted with
	// unfilled counters
	ErrCodeIncompletePacking = "INCOMPLETE_PACKING"
	// ErrCodePickingIncomplete is used when packing starts before picking is done
	ErrCodePickingIncomplete = "PICKING_INCOMPLETE"
	// ErrCodeOverPack is used when an increment would exceed the quantity needed
	ErrCodeOverPack = "OVER_PACK"
	// ErrCodeUnderPack is used when a decrement would go below zero
	ErrCodeUnderPack = "UNDER_PACK"
	// ErrCodeSessionNotPacking is used when pack mutations hit a session
	// outside packing status
	ErrCodeSessionNotPacking = "SESSION_NOT_PACKING"
	// ErrCodeSessionNotPicking is used when pick mutations hit a session
	// outside picking status
	ErrCodeSessionNotPicking = "SESSION_NOT_PICKING"
	// ErrCodePrimitiveUnavailable is used when no increment tier could run
	ErrCodePrimitiveUnavailable = "PRIMITIVE_UNAVAILABLE"
)

// Concurrency error codes
const (
	// ErrCodeConcurrentModification is used when an optimistic-lock race is lost
	ErrCodeConcurrentModification = "CONCURRENT_MODIFICATION"
	// ErrCodeTooManyConflicts is used when the CAS retry budget is exhausted
	ErrCodeTooManyConflicts = "TOO_MANY_CONFLICTS"
)

// Stock error codes
const (
	// ErrCodeInsufficientStock is used when a deduction would fail a guard
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Codes emitted by
// domain errors that are absent here fall through to GetHTTPStatus's default.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:       http.StatusInternalServerError,
	ErrCodeInternal:      http.StatusInternalServerError,
	ErrCodeValidation:    http.StatusBadRequest,
	ErrCodeBadRequest:    http.StatusBadRequest,
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeUnauthorized:  http.StatusUnauthorized,
	ErrCodeForbidden:     http.StatusForbidden,
	ErrCodeConflict:      http.StatusConflict,
	ErrCodeRateLimited:   http.StatusTooManyRequests,

	// State machine violations -> 422 Unprocessable Entity
	ErrCodeInvalidTransition:   http.StatusUnprocessableEntity,
	ErrCodeOrderLocked:         http.StatusUnprocessableEntity,
	ErrCodeOrderStockCommitted: http.StatusUnprocessableEntity,
	"INVALID_STATE":            http.StatusUnprocessableEntity,

	// Session business rules -> 422 Unprocessable Entity
	ErrCodeOrderNotEligible:  http.StatusUnprocessableEntity,
	ErrCodeIncompletePacking: http.StatusUnprocessableEntity,
	ErrCodePickingIncomplete: http.StatusUnprocessableEntity,
	ErrCodeOverPack:          http.StatusUnprocessableEntity,
	ErrCodeUnderPack:         http.StatusUnprocessableEntity,
	ErrCodeSessionNotPacking: http.StatusUnprocessableEntity,
	ErrCodeSessionNotPicking: http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,

	// Concurrency -> 409 Conflict, caller should retry or re-read
	ErrCodeConcurrentModification: http.StatusConflict,
	ErrCodeTooManyConflicts:       http.StatusConflict,

	// No usable atomicity primitive on this backend
	ErrCodePrimitiveUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 400 Bad Request since every unmapped domain error
// is an input validation failure (INVALID_QUANTITY, INVALID_ORDER_NUMBER, ...).
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusBadRequest
}

// ValidationDetail describes a single field-level validation failure
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewValidationErrorResponse creates an error response carrying field details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      ErrCodeValidation,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
	}
}

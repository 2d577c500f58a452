package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState  = NewDomainError("INVALID_STATE", "Operation not allowed in current state")

	// ErrConcurrentModification signals a lost optimistic-lock race. The caller
	// must re-read state and decide whether its intent still applies; it is never
	// retried silently inside the core.
	ErrConcurrentModification = NewDomainError("CONCURRENT_MODIFICATION", "Resource was modified by another process")

	// ErrTooManyConflicts signals that the bounded compare-and-swap retry loop
	// exhausted its attempts under contention.
	ErrTooManyConflicts = NewDomainError("TOO_MANY_CONFLICTS", "Too many concurrent conflicts, try again")
)

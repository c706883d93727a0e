// Package errors defines the domain error taxonomy shared by the
// service layer and the HTTP handlers. Resource-state outcomes
// (insufficient balance, quota exceeded, duplicate swipe, ...) are
// expected user-facing results, not bugs; they carry a stable code and
// enough detail for the UI to guide the user.
package errors

// DomainError is a user-facing error with a stable machine code.
type DomainError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so sentinel values compare equal to
// detail-carrying copies built with WithDetails.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// WithDetails returns a copy of the error carrying extra context,
// leaving the sentinel untouched.
func (e *DomainError) WithDetails(details map[string]interface{}) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// ErrTransactionFailed marks a retryable consistency failure (a
// transactional unit aborted by a concurrent change), distinct from
// deterministic rejections such as insufficient balance.
var ErrTransactionFailed = &DomainError{
	Code:    "TRANSACTION_FAILED",
	Message: "operation failed due to a concurrent update, please retry",
}

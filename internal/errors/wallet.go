package errors

var (
	ErrInsufficientBalance = &DomainError{
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient point balance",
	}
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "invalid amount",
	}
	ErrWalletNotFound = &DomainError{
		Code:    "WALLET_NOT_FOUND",
		Message: "points wallet not found",
	}
	ErrDuplicateReference = &DomainError{
		Code:    "DUPLICATE_REFERENCE",
		Message: "a transaction with this reference already exists",
	}
)

// InsufficientBalance builds the detail-carrying variant handed to the
// UI so it can prompt a top-up.
func InsufficientBalance(balance, required int) *DomainError {
	return ErrInsufficientBalance.WithDetails(map[string]interface{}{
		"balance":  balance,
		"required": required,
	})
}

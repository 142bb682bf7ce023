package errors

var (
	ErrInsufficientBalance = &DomainError{
		Kind:    KindInsufficientBalance,
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient wallet balance",
	}
	ErrInvalidAmount = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_AMOUNT",
		Message: "amount must be greater than zero",
	}
	ErrWalletNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet not found",
	}
	ErrSelfPayment = &DomainError{
		Kind:    KindValidation,
		Code:    "SELF_PAYMENT",
		Message: "source and destination wallets must differ",
	}
	ErrTransactionNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "TRANSACTION_NOT_FOUND",
		Message: "transaction not found",
	}
	ErrPersistence = &DomainError{
		Kind:    KindPersistence,
		Code:    "PERSISTENCE",
		Message: "operation failed, no changes were applied",
	}
)

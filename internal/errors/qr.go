package errors

var (
	ErrInvalidQRPayload = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_QR_PAYLOAD",
		Message: "QR payload could not be parsed",
	}
	ErrQRExpired = &DomainError{
		Kind:    KindValidation,
		Code:    "QR_EXPIRED",
		Message: "QR code has expired",
	}
)

package errors

var (
	ErrProviderNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "PROVIDER_NOT_FOUND",
		Message: "payment provider not found",
	}
	ErrProviderDisabled = &DomainError{
		Kind:    KindValidation,
		Code:    "PROVIDER_DISABLED",
		Message: "payment provider is disabled",
	}
	ErrProviderCharge = &DomainError{
		Kind:    KindExternalProvider,
		Code:    "PROVIDER_CHARGE_FAILED",
		Message: "provider declined the charge",
	}
	ErrCredentialDecryption = &DomainError{
		Kind:    KindDecryption,
		Code:    "CREDENTIAL_DECRYPTION_FAILED",
		Message: "provider credentials could not be decrypted",
	}
)

// Package errors defines the domain error taxonomy shared by the ledger
// and its collaborators. Every failure surfaced to a caller carries a
// stable kind tag and a human-readable message; internal identifiers and
// stack traces never leak through a DomainError.
package errors

import "fmt"

// Kind classifies a domain error for retry and HTTP mapping decisions.
type Kind string

const (
	KindValidation          Kind = "VALIDATION"
	KindNotFound            Kind = "NOT_FOUND"
	KindInsufficientBalance Kind = "INSUFFICIENT_BALANCE"
	KindExternalProvider    Kind = "EXTERNAL_PROVIDER"
	KindDecryption          Kind = "DECRYPTION"
	KindPersistence         Kind = "PERSISTENCE"
)

// DomainError is the structured error returned across the service boundary.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches two domain errors by code so sentinel errors work with
// errors.Is even after WithMessage copies.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of the error carrying a more specific
// message, e.g. a provider's decline reason propagated verbatim.
func (e *DomainError) WithMessage(format string, args ...interface{}) *DomainError {
	return &DomainError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: fmt.Sprintf(format, args...),
	}
}

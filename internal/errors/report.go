package errors

var (
	ErrInvalidReportRequest = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_REPORT_REQUEST",
		Message: "report role or month is invalid",
	}
	ErrReportNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "REPORT_NOT_FOUND",
		Message: "report not found",
	}
)

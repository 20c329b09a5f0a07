package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors
var (
	ErrLoanNotFound      = errors.New("loan not found")
	ErrStorage           = errors.New("storage failure")
	ErrMalformedRequest  = errors.New("malformed request")
	ErrValidation        = errors.New("validation failed")
	ErrCacheUnavailable  = errors.New("cache unavailable")
	ErrStaleSnapshot     = errors.New("stats snapshot is stale")
	ErrInvalidIdentifier = errors.New("invalid loan identifier")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeLoanNotFound     = "LOAN_NOT_FOUND"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeMalformedRequest = "MALFORMED_REQUEST"
	ErrCodeDatabaseError    = "DATABASE_ERROR"
	ErrCodeCacheError       = "CACHE_ERROR"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeServiceDown      = "SERVICE_UNAVAILABLE"
)

// Field error codes
const (
	FieldCodeRequired      = "REQUIRED"
	FieldCodeInvalidType   = "INVALID_TYPE"
	FieldCodeEmpty         = "EMPTY"
	FieldCodeOutOfRange    = "OUT_OF_RANGE"
	FieldCodeTooPrecise    = "TOO_MANY_DECIMAL_PLACES"
	FieldCodeInvalidLength = "INVALID_LENGTH"
)

// FieldError names one violated rule on one input field. Code is stable for
// clients; Message is for humans.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError collects every field violation found on a payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return fmt.Sprintf("%s: %s", ErrCodeValidationFailed, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Add records a violation.
func (e *ValidationError) Add(field, code, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Code: code, Message: message})
}

// Has reports whether field was named in any violation.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// OrNil returns nil when nothing was recorded, so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Wrap common errors with business context
func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		fmt.Errorf("%w: %w", ErrStorage, err),
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		fmt.Errorf("%w: %w", ErrCacheUnavailable, err),
	)
}

func WrapMalformedRequest(message string, err error) *BusinessError {
	if err == nil {
		err = ErrMalformedRequest
	} else {
		err = fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}
	return NewBusinessError(ErrCodeMalformedRequest, message, err)
}

func WrapInvalidIdentifier(raw string) *BusinessError {
	return WrapMalformedRequest(
		fmt.Sprintf("%q is not a valid loan identifier", raw),
		ErrInvalidIdentifier,
	)
}

// CodeOf returns the business code carried by err, or ErrCodeInternalError.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ErrCodeValidationFailed
	}
	return ErrCodeInternalError
}

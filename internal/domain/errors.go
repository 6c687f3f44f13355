package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code and message,
// so an instance carrying a cause still matches its sentinel with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// IsCode reports whether any DomainError in err's chain carries code.
func IsCode(err error, code string) bool {
	for err != nil {
		var domainErr *DomainError
		if !errors.As(err, &domainErr) {
			return false
		}
		if domainErr.Code == code {
			return true
		}
		err = domainErr.Err
	}
	return false
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeConfiguration     = "CONFIGURATION_ERROR"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeRemote            = "REMOTE_ERROR"
	ErrCodeCancelled         = "CANCELLED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrMissingQuestion   = NewDomainError(ErrCodeValidation, "question is required")
	ErrInvalidLengthBand = NewDomainError(ErrCodeValidation, "invalid summary length band")
	ErrUnknownTask       = NewDomainError(ErrCodeValidation, "unknown task kind")
)

// Configuration errors
var (
	ErrConfiguration    = NewDomainError(ErrCodeConfiguration, "invalid configuration")
	ErrMissingAPIKey    = NewDomainError(ErrCodeConfiguration, "the API key is not set")
	ErrInvalidChunkSize = NewDomainError(ErrCodeConfiguration, "chunk limit must be positive")
	ErrInvalidContext   = NewDomainError(ErrCodeConfiguration, "context limit must be positive")
)

// Document source errors
var (
	ErrUnsupportedFormat = NewDomainError(ErrCodeUnsupportedFormat, "unsupported document format")
)

// Remote errors
var (
	ErrRateLimited  = NewDomainError(ErrCodeRateLimited, "rate limit reached")
	ErrFatalRemote  = NewDomainError(ErrCodeRemote, "remote model call failed")
	ErrRunCancelled = NewDomainError(ErrCodeCancelled, "run cancelled")
)

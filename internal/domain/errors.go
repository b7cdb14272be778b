package domain

import (
	"errors"
	"fmt"
)

// Error types for domain-specific errors
type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "validation"
	ErrorTypeUnsupportedMedia  ErrorType = "unsupported_media"
	ErrorTypeDocumentRead      ErrorType = "document_read"
	ErrorTypeConversion        ErrorType = "conversion"
	ErrorTypeConversionTimeout ErrorType = "conversion_timeout"
	ErrorTypeNoContent         ErrorType = "no_content"
	ErrorTypeEmptyResponse     ErrorType = "empty_response"
	ErrorTypeMalformedResponse ErrorType = "malformed_response"
	ErrorTypeInsufficientText  ErrorType = "insufficient_text"
	ErrorTypeModelUnavailable  ErrorType = "model_unavailable"
	ErrorTypeAPI               ErrorType = "api"
	ErrorTypeConfig            ErrorType = "config"
	ErrorTypeIO                ErrorType = "io"
)

// DomainError represents a domain-specific error with context.
// Page is the 1-based page number the error refers to, or 0 when unknown.
type DomainError struct {
	Type    ErrorType
	Message string
	Page    int
	Err     error
}

func (e *DomainError) Error() string {
	msg := e.Message
	if e.Page > 0 {
		msg = fmt.Sprintf("%s (page %d)", msg, e.Page)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func UnsupportedMediaError(message string) *DomainError {
	return NewError(ErrorTypeUnsupportedMedia, message, nil)
}

// DocumentReadError reports an undecodable document. page is 1-based; pass 0
// when the failing page is not known.
func DocumentReadError(page int, message string, err error) *DomainError {
	e := NewError(ErrorTypeDocumentRead, message, err)
	e.Page = page
	return e
}

func ConversionError(message string, err error) *DomainError {
	return NewError(ErrorTypeConversion, message, err)
}

func ConversionTimeoutError(message string, err error) *DomainError {
	return NewError(ErrorTypeConversionTimeout, message, err)
}

func NoContentError(message string) *DomainError {
	return NewError(ErrorTypeNoContent, message, nil)
}

func EmptyResponseError(message string) *DomainError {
	return NewError(ErrorTypeEmptyResponse, message, nil)
}

func MalformedResponseError(message string) *DomainError {
	return NewError(ErrorTypeMalformedResponse, message, nil)
}

func InsufficientTextError(message string) *DomainError {
	return NewError(ErrorTypeInsufficientText, message, nil)
}

func ModelUnavailableError(message string, err error) *DomainError {
	return NewError(ErrorTypeModelUnavailable, message, err)
}

func APIError(message string, err error) *DomainError {
	return NewError(ErrorTypeAPI, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

func IOError(message string, err error) *DomainError {
	return NewError(ErrorTypeIO, message, err)
}

// TypeOf returns the type of the outermost DomainError in err's chain, or ""
// when err carries none.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ""
}

// IsType reports whether any DomainError in err's chain has the given type.
func IsType(err error, errType ErrorType) bool {
	for err != nil {
		var de *DomainError
		if !errors.As(err, &de) {
			return false
		}
		if de.Type == errType {
			return true
		}
		err = de.Err
	}
	return false
}

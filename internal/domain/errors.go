// Package domain defines the error taxonomy shared by the Lead Engine components.
package domain

import (
	"errors"
	"fmt"
)

// ErrorType classifies domain errors.
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeIngestion       ErrorType = "ingestion"
	ErrorTypeStorage         ErrorType = "storage"
	ErrorTypeConfig          ErrorType = "config"
	ErrorTypeAuth            ErrorType = "auth"
	ErrorTypeRateLimit       ErrorType = "rate_limit"
	ErrorTypeContextTooLarge ErrorType = "context_too_large"
	ErrorTypeParse           ErrorType = "parse"
	ErrorTypeAI              ErrorType = "ai"
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error.
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func NotFoundError(message string, err error) *DomainError {
	return NewError(ErrorTypeNotFound, message, err)
}

func IngestionError(message string, err error) *DomainError {
	return NewError(ErrorTypeIngestion, message, err)
}

func StorageError(message string, err error) *DomainError {
	return NewError(ErrorTypeStorage, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

// TypeOf returns the type of the outermost DomainError in err's chain, or "" if none.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ""
}

// IsType reports whether err carries a DomainError of the given type.
func IsType(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}

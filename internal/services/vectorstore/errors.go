// File: internal/services/vectorstore/errors.go
package vectorstore

import (
	"fmt"

	"github.com/iyunix/go-ragchat/internal/domain"
)

// IndexError represents a vector index failure. It unwraps to
// domain.ErrIndexingFailure and to its cause.
type IndexError struct {
	Type    string
	Message string
	Err     error
}

func (e *IndexError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vector index %s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("vector index %s error: %s", e.Type, e.Message)
}

func (e *IndexError) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrIndexingFailure}
	}
	return []error{domain.ErrIndexingFailure, e.Err}
}

func NewConnectionError(errorType, message string, err error) *IndexError {
	return &IndexError{Type: errorType, Message: message, Err: err}
}

func NewOperationError(message string, err error) *IndexError {
	return &IndexError{Type: "operation", Message: message, Err: err}
}

func NewConfigError(message string) *IndexError {
	return &IndexError{Type: "config", Message: message}
}

func NewTimeoutError(message string, err error) *IndexError {
	return &IndexError{Type: "timeout", Message: message, Err: err}
}

func NewRetryError(message string, err error) *IndexError {
	return &IndexError{Type: "retry", Message: message, Err: err}
}

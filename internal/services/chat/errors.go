// File: internal/services/chat/errors.go
package chat

import (
	"errors"
	"fmt"

	"github.com/iyunix/go-ragchat/internal/domain"
)

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeRole       ErrorType = "ROLE"
	ErrTypeModel      ErrorType = "MODEL"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeRAG        ErrorType = "RAG"
	ErrTypeStreaming  ErrorType = "STREAMING"
)

// ErrValidation marks input the orchestrator refuses before doing any work.
var ErrValidation = errors.New("validation failed")

type ChatError struct {
	Type      ErrorType
	Operation string
	Message   string
	ChatID    uint
	Cause     error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

// Unwrap exposes the error kind and the cause to errors.Is and errors.As.
func (e *ChatError) Unwrap() []error {
	var errs []error
	switch e.Type {
	case ErrTypeValidation, ErrTypeConfig:
		errs = append(errs, ErrValidation)
	case ErrTypeNotFound:
		errs = append(errs, domain.ErrNotFound)
	case ErrTypeRole:
		errs = append(errs, domain.ErrInvalidRole)
	case ErrTypeModel:
		errs = append(errs, domain.ErrModelUnavailable)
	case ErrTypeStorage:
		errs = append(errs, domain.ErrStorageFailure)
	case ErrTypeRAG:
		errs = append(errs, domain.ErrIndexingFailure)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func NewValidationError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewNotFoundError(operation string, chatID uint) *ChatError {
	return &ChatError{
		Type:      ErrTypeNotFound,
		Operation: operation,
		Message:   "chat not found",
		ChatID:    chatID,
	}
}

func NewModelError(operation string, chatID uint, cause error) *ChatError {
	return &ChatError{
		Type:      ErrTypeModel,
		Operation: operation,
		Message:   "language model unavailable",
		ChatID:    chatID,
		Cause:     cause,
	}
}

func NewRAGError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeRAG, Operation: operation, Message: msg, Cause: cause}
}

// classify turns a lower-layer error into a ChatError of the matching kind.
func classify(operation string, chatID uint, err error) error {
	if err == nil {
		return nil
	}
	var chatErr *ChatError
	if errors.As(err, &chatErr) {
		return chatErr
	}

	e := &ChatError{Operation: operation, ChatID: chatID, Cause: err}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		e.Type, e.Message = ErrTypeNotFound, "chat not found"
	case errors.Is(err, domain.ErrInvalidRole):
		e.Type, e.Message = ErrTypeRole, "invalid role"
	case errors.Is(err, domain.ErrModelUnavailable):
		e.Type, e.Message = ErrTypeModel, "language model unavailable"
	case errors.Is(err, domain.ErrIndexingFailure):
		e.Type, e.Message = ErrTypeRAG, "vector index failure"
	default:
		e.Type, e.Message = ErrTypeStorage, "could not persist chat"
	}
	return e
}

package errors

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/status"
)

// Error is a domain error carrying a machine-readable code, a developer
// message, and optional metadata for message templating.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is matches errors by code, so sentinel errors compare across instances
// that carry different metadata.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// WithMetadata returns a copy of the error with the given metadata attached.
func (e *Error) WithMetadata(metadata map[string]string) *Error {
	clone := &Error{Code: e.Code, Message: e.Message}
	if len(metadata) > 0 {
		clone.Metadata = make(map[string]string, len(metadata))
		for key, value := range metadata {
			clone.Metadata[key] = value
		}
	}
	return clone
}

// ToGRPCStatus converts the error to a gRPC status with the provided
// user-facing message.
func (e *Error) ToGRPCStatus(locale string, message string) error {
	if message == "" {
		message = e.Message
	}
	return status.Error(e.Code.GRPCCode(), message)
}

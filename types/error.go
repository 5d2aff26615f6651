package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the engine.
type ErrorCode string

// Run error codes
const (
	ErrInvalidPipelineConfig ErrorCode = "INVALID_PIPELINE_CONFIG"
	ErrPipelineNotFound      ErrorCode = "PIPELINE_NOT_FOUND"
	ErrSourceNotFound        ErrorCode = "SOURCE_NOT_FOUND"
	ErrToolNotFound          ErrorCode = "TOOL_NOT_FOUND"
	ErrUpstreamError         ErrorCode = "UPSTREAM_ERROR"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	NodeID  string    `json:"node_id,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewErrorf creates a new Error with a formatted message.
func NewErrorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithNodeID names the pipeline node that produced the error.
func (e *Error) WithNodeID(nodeID string) *Error {
	e.NodeID = nodeID
	return e
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotFound checks whether an error is one of the not-found codes.
func IsNotFound(err error) bool {
	switch GetErrorCode(err) {
	case ErrPipelineNotFound, ErrSourceNotFound:
		return true
	}
	return false
}

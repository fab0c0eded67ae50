// errors.go - Structured errors for backend calls
package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried by APIError.
const (
	CodeListFailed   = "LIST_FAILED"
	CodeUploadFailed = "UPLOAD_FAILED"
	CodeNetwork      = "NETWORK_ERROR"
	CodeDecode       = "DECODE_ERROR"
)

// APIError describes a failed call to the file backend.
type APIError struct {
	Status    int    `json:"status,omitempty"` // 0 when no response was received
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
	cause     error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Code, e.Message, e.Status)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying transport or decode error, if any.
func (e *APIError) Unwrap() error {
	return e.cause
}

// newStatusError creates an error for a non-2xx response
func newStatusError(code string, status int, body string) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: http.StatusText(status),
		Details: body,
	}
}

// newNetworkError creates an error for a request that got no response
func newNetworkError(message string, cause error) *APIError {
	err := &APIError{
		Code:    CodeNetwork,
		Message: message,
		cause:   cause,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// newDecodeError creates an error for an unreadable response body
func newDecodeError(cause error) *APIError {
	return &APIError{
		Code:    CodeDecode,
		Message: "invalid response body",
		Details: cause.Error(),
		cause:   cause,
	}
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Package errors provides the standardized error shape returned by the portal API.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Request parsing errors. Raised before any backend call.
	ErrCodeMalformedFilter ErrorCode = "MALFORMED_FILTER"
	ErrCodeMalformedSort   ErrorCode = "MALFORMED_SORT"
	ErrCodeInvalidParams   ErrorCode = "INVALID_PARAMETERS"

	// Search backend errors.
	ErrCodeUpstream        ErrorCode = "UPSTREAM_ERROR"
	ErrCodeUpstreamTimeout ErrorCode = "UPSTREAM_TIMEOUT"

	// Bulk export errors.
	ErrCodeIncompleteExport ErrorCode = "INCOMPLETE_EXPORT"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns a copy of e carrying an extra metadata entry.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	cp := *e
	cp.Metadata = make(map[string]interface{}, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		cp.Metadata[k] = v
	}
	cp.Metadata[key] = value
	return &cp
}

// ==========================
// 2. Error Constructors
// ==========================

// NewMalformedFilterError reports a filter, phylogeny or paging parameter that cannot be parsed.
func NewMalformedFilterError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedFilter,
		Message:   "Malformed filter expression",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedSortError reports a sort parameter that is not a list of field:direction pairs.
func NewMalformedSortError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedSort,
		Message:   "Malformed sort expression",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidParamsError reports request parameters rejected by schema validation.
func NewInvalidParamsError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidParams,
		Message:   "Invalid request parameters",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamError wraps a failure returned by, or while reaching, the search backend.
func NewUpstreamError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstream,
		Message:   "Search backend request failed",
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewUpstreamTimeoutError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamTimeout,
		Message:   "Search backend request timed out",
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewIncompleteExportError reports pagination that stopped before the reported total was reached.
func NewIncompleteExportError(retrieved, total int64, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIncompleteExport,
		Message:   "Export stopped before all matching records were retrieved",
		Details:   details,
		Retryable: false,
		Metadata: map[string]interface{}{
			"retrieved": retrieved,
			"total":     total,
		},
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   errDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. Helpers
// ==========================

// HTTPStatus maps an error code to the status the API answers with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeMalformedFilter, ErrCodeMalformedSort, ErrCodeInvalidParams:
		return http.StatusBadRequest
	case ErrCodeUpstream:
		return http.StatusBadGateway
	case ErrCodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf returns the code of the first StandardError in err's chain, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeMalformedFilter, ErrCodeMalformedSort, ErrCodeInvalidParams:
		return "CLIENT"
	case ErrCodeUpstream, ErrCodeUpstreamTimeout:
		return "UPSTREAM"
	case ErrCodeIncompleteExport:
		return "EXPORT"
	default:
		return "INTERNAL"
	}
}

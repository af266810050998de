// Package errors provides the standardized error taxonomy for the
// generation and discovery pipelines: configuration errors are fatal to a
// call and never retried, transient upstream errors are retried a bounded
// number of times and then degrade to an empty result, and malformed input
// fails closed to "no data" without ever crossing a component boundary.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Configuration errors: programmer-contract violations, fatal, never retried.
	ErrCodeUnknownOperation   ErrorCode = "UNKNOWN_OPERATION"
	ErrCodeUnknownProtocol    ErrorCode = "UNKNOWN_PROTOCOL"
	ErrCodeAssetTableGap      ErrorCode = "ASSET_TABLE_GAP"
	ErrCodeMissingCredentials ErrorCode = "MISSING_CREDENTIALS"

	// Transient upstream errors: retried with backoff, then degrade to empty.
	ErrCodeSearchRateLimited ErrorCode = "SEARCH_RATE_LIMITED"
	ErrCodeSearchFailed      ErrorCode = "SEARCH_FAILED"
	ErrCodeSearchTimeout     ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeGenerationTimeout ErrorCode = "GENERATION_TIMEOUT"
	ErrCodeGenerationFailed  ErrorCode = "GENERATION_FAILED"
	ErrCodeSessionReadFailed ErrorCode = "SESSION_READ_FAILED"
	ErrCodeChunkFetchFailed  ErrorCode = "CHUNK_FETCH_FAILED"

	// Malformed input: fail-closed locally, never raised past the boundary.
	ErrCodeMalformedSignal   ErrorCode = "MALFORMED_RELEVANCE_SIGNAL"
	ErrCodeMalformedEvidence ErrorCode = "MALFORMED_EVIDENCE"
	ErrCodeUnparsableBody    ErrorCode = "UNPARSABLE_RESPONSE_BODY"
)

// StandardError is a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewConfigurationError creates a fatal, non-retryable error for an
// operation/protocol combination or credential the caller got wrong.
func NewConfigurationError(code ErrorCode, details string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   "Invalid pipeline configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchFailedError creates a retryable upstream search error.
func NewSearchFailedError(backend string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchFailed,
		Message:   "Search backend error",
		Details:   fmt.Sprintf("backend: %s, error: %s", backend, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchRateLimitedError creates a retryable rate-limit error.
func NewSearchRateLimitedError(backend string, retryAfter float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchRateLimited,
		Message:   "Search backend rate limited the request",
		Details:   fmt.Sprintf("backend: %s", backend),
		Retryable: true,
		Metadata:  map[string]interface{}{"retryAfterSeconds": retryAfter},
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationFailedError creates a retryable generation-step error.
func NewGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFailed,
		Message:   "Generation step API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationTimeoutError creates a retryable generation timeout error.
func NewGenerationTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationTimeout,
		Message:   "Generation step timeout",
		Details:   "generation call exceeded its deadline",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionReadFailedError creates a retryable session store error.
func NewSessionReadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionReadFailed,
		Message:   "Session store read error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewChunkFetchFailedError creates a retryable chunk store error.
func NewChunkFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeChunkFetchFailed,
		Message:   "Documentation chunk fetch error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedInputError creates a non-retryable fail-closed error. Callers
// log it and substitute an empty value; it is never propagated upward.
func NewMalformedInputError(code ErrorCode, details string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   "Malformed input, treated as no data",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// GetRetryCount returns the job-level retry budget for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSearchFailed,
		ErrCodeGenerationFailed,
		ErrCodeSessionReadFailed,
		ErrCodeChunkFetchFailed:
		return 3

	case ErrCodeSearchRateLimited,
		ErrCodeSearchTimeout:
		return 2

	case ErrCodeGenerationTimeout:
		return 1

	default:
		return 0 // configuration and malformed-input errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

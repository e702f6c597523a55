// internal/common/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeSourceReadFailed ErrorCode = "SOURCE_READ_FAILED"

	ErrCodeEnrichmentFailed ErrorCode = "ENRICHMENT_FAILED"

	ErrCodeDocumentValidationFailed ErrorCode = "DOCUMENT_VALIDATION_FAILED"
	ErrCodeDuplicateDocumentID      ErrorCode = "DUPLICATE_DOCUMENT_ID"
	ErrCodeBatchUpsertFailed        ErrorCode = "BATCH_UPSERT_FAILED"
	ErrCodeIndexSetupFailed         ErrorCode = "INDEX_SETUP_FAILED"
	ErrCodeRunCancelled             ErrorCode = "RUN_CANCELLED"

	ErrCodeDecodeFrameFailed    ErrorCode = "DECODE_FRAME_FAILED"
	ErrCodeAgentRequestFailed   ErrorCode = "AGENT_REQUEST_FAILED"
	ErrCodeConfigurationMissing ErrorCode = "CONFIGURATION_MISSING"
)

// StandardError is the error shape surfaced to operators. Cause, when set, is reachable
// through errors.Is / errors.As.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// Fields renders the error as log fields.
func (e *StandardError) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"errorCode":     string(e.Code),
		"message":       e.Message,
		"retryable":     e.Retryable,
		"errorCategory": GetErrorCategory(e.Code),
	}
	if e.Details != "" {
		fields["details"] = e.Details
	}
	for k, v := range e.Metadata {
		fields[k] = v
	}
	return fields
}

func NewSourceReadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSourceReadFailed,
		Message:   "Catalog source could not be read",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Metadata:  map[string]interface{}{"path": path},
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func NewEnrichmentFailedError(stage, productID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEnrichmentFailed,
		Message:   fmt.Sprintf("Enrichment stage '%s' failed", stage),
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"stage": stage, "productId": productID},
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func NewDocumentValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentValidationFailed,
		Message:   "Document failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewDuplicateDocumentIDError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateDocumentID,
		Message:   "Document id produced more than once in one run",
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Metadata:  map[string]interface{}{"documentId": id},
		Timestamp: time.Now().UTC(),
	}
}

func NewBatchUpsertFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBatchUpsertFailed,
		Message:   "Batch upsert to search index failed",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Metadata:  map[string]interface{}{"index": index},
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func NewIndexSetupFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexSetupFailed,
		Message:   "Search index setup failed",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Metadata:  map[string]interface{}{"index": index},
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func NewRunCancelledError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRunCancelled,
		Message:   "Ingestion run cancelled before index write",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func NewDecodeFrameFailedError(marker string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecodeFrameFailed,
		Message:   "Stream line could not be decoded",
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"marker": marker},
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func NewAgentRequestFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAgentRequestFailed,
		Message:   "Agent completion request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func NewConfigurationMissingError(fields ...string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationMissing,
		Message:   "Required configuration missing",
		Details:   strings.Join(fields, ", "),
		Retryable: false,
		Metadata:  map[string]interface{}{"fields": fields},
		Timestamp: time.Now().UTC(),
	}
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeBatchUpsertFailed,
		ErrCodeIndexSetupFailed,
		ErrCodeAgentRequestFailed:
		return 3

	case ErrCodeEnrichmentFailed:
		// retried by re-running the whole pipeline, never per item
		return 0

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SOURCE"):
		return "SOURCE"
	case strings.Contains(codeStr, "ENRICHMENT"):
		return "ENRICHMENT"
	case strings.Contains(codeStr, "UPSERT") || strings.Contains(codeStr, "INDEX") || strings.Contains(codeStr, "DOCUMENT"):
		return "INDEX"
	case strings.Contains(codeStr, "DECODE") || strings.Contains(codeStr, "AGENT"):
		return "AGENT"
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "CANCELLED"):
		return "RUN"
	default:
		return "OTHER"
	}
}

// AsStandardError normalizes any error to a StandardError.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// HasCode reports whether err wraps a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

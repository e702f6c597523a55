// internal/common/errors/handler.go
package errors

import (
	"net/http"
)

// ErrorHandler logs failures in one consistent shape and maps them to an outcome.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle normalizes err, logs it under msg and returns the normalized form.
func (h *ErrorHandler) Handle(msg string, err error, fields map[string]interface{}) *StandardError {
	stdErr := AsStandardError(err)
	if stdErr == nil {
		return nil
	}

	logFields := stdErr.Fields()
	logFields["retries"] = GetRetryCount(stdErr.Code)
	for k, v := range fields {
		logFields[k] = v
	}
	h.logger.Error(msg, logFields)
	return stdErr
}

// HTTPStatus maps an error code to the status returned by the chat endpoint.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeConfigurationMissing:
		return http.StatusInternalServerError
	case ErrCodeAgentRequestFailed:
		return http.StatusBadGateway
	case ErrCodeDocumentValidationFailed, ErrCodeDecodeFrameFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeRunCancelled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Package errors holds the error codes shared by the chat workflow and the
// conversion of those codes into workflow-engine errors.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidMode          ErrorCode = "INVALID_MODE"
	ErrCodeInvalidRequest       ErrorCode = "INVALID_REQUEST"
	ErrCodeContextFetchDegraded ErrorCode = "CONTEXT_FETCH_DEGRADED"
	ErrCodeLLMCompletionFailed  ErrorCode = "LLM_COMPLETION_FAILED"
	ErrCodeEmailContentFailed   ErrorCode = "EMAIL_CONTENT_FAILED"
	ErrCodePDFGenerationFailed  ErrorCode = "PDF_GENERATION_FAILED"
	ErrCodeEmailSendFailed      ErrorCode = "EMAIL_SEND_FAILED"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
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
	if e.Details == "" {
		return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

func newStandardError(code ErrorCode, message string, cause error) *StandardError {
	e := &StandardError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// NewInvalidModeError rejects a chat mode the router does not know.
func NewInvalidModeError(mode string) *StandardError {
	e := newStandardError(ErrCodeInvalidMode, "Invalid mode. Use 'stock' or 'economy'.", nil)
	e.Details = fmt.Sprintf("mode: %q", mode)
	return e
}

func NewInvalidRequestError(err error) *StandardError {
	return newStandardError(ErrCodeInvalidRequest, "Invalid chat request", err)
}

func NewContextFetchDegradedError(source string, err error) *StandardError {
	e := newStandardError(ErrCodeContextFetchDegraded, "Context source unavailable", err)
	e.Metadata = map[string]interface{}{"source": source}
	return e
}

func NewLLMCompletionFailedError(err error) *StandardError {
	return newStandardError(ErrCodeLLMCompletionFailed, "Chat completion failed", err)
}

func NewEmailContentFailedError(err error) *StandardError {
	return newStandardError(ErrCodeEmailContentFailed, "Failed to generate email content", err)
}

func NewPDFGenerationFailedError(err error) *StandardError {
	return newStandardError(ErrCodePDFGenerationFailed, "PDF generation failed", err)
}

func NewEmailSendFailedError(err error) *StandardError {
	return newStandardError(ErrCodeEmailSendFailed, "Email sending failed", err)
}

// AsStandardError normalizes any error into a StandardError.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newStandardError(ErrCodeInternal, "Unexpected error", err)
}

// CodeOf returns the code carried by err, or ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return AsStandardError(err).Code
}

// IsRetryable reports whether err may succeed on a second attempt. Nothing
// in the chat flow is retried, so only errors explicitly marked qualify.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// GetErrorCategory groups codes for dashboards and log filtering.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeInvalidMode, ErrCodeInvalidRequest:
		return "CLIENT"
	case ErrCodeContextFetchDegraded:
		return "UPSTREAM_DATA"
	case ErrCodeLLMCompletionFailed, ErrCodeEmailContentFailed:
		return "LLM"
	case ErrCodePDFGenerationFailed, ErrCodeEmailSendFailed:
		return "DELIVERY"
	default:
		return "INTERNAL"
	}
}

// BPMNError represents an error that can be thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for job error variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ConvertToBPMNError converts a StandardError into a BPMNError.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	return &BPMNError{
		Code:    string(stdErr.Code),
		Message: stdErr.Message,
		Details: stdErr.Details,
		ErrorVariables: map[string]interface{}{
			"errorCategory": GetErrorCategory(stdErr.Code),
		},
	}
}

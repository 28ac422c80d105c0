// Package errors provides the structured error type shared by the session,
// the API client and the job worker, plus its conversion to BPMN errors.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Parameter service errors
const (
	ErrCodeParamServiceUnavailable ErrorCode = "PARAM_SERVICE_UNAVAILABLE"
	ErrCodeParamServiceRejected    ErrorCode = "PARAM_SERVICE_REJECTED"
	ErrCodeParamServiceTimeout     ErrorCode = "PARAM_SERVICE_TIMEOUT"
)

// Session precondition errors
const (
	ErrCodePreconditionFailed ErrorCode = "PRECONDITION_FAILED"
	ErrCodePresetNotFound     ErrorCode = "PRESET_NOT_FOUND"
	ErrCodePresetsDisabled    ErrorCode = "PRESETS_DISABLED"
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
)

// Persistence errors
const (
	ErrCodePresetPersistenceFailed ErrorCode = "PRESET_PERSISTENCE_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
)

const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

// StandardError represents a structured application error.
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
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error { return e.Cause }

// Is matches any StandardError carrying the same code, so sentinels such as
// ErrPresetNotFound work with errors.Is.
func (e *StandardError) Is(target error) bool {
	var other *StandardError
	if !stderrors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// Sentinels for errors.Is comparisons.
var (
	ErrParamServiceUnavailable = &StandardError{Code: ErrCodeParamServiceUnavailable}
	ErrParamServiceRejected    = &StandardError{Code: ErrCodeParamServiceRejected}
	ErrPreconditionFailed      = &StandardError{Code: ErrCodePreconditionFailed}
	ErrPresetNotFound          = &StandardError{Code: ErrCodePresetNotFound}
	ErrPresetsDisabled         = &StandardError{Code: ErrCodePresetsDisabled}
	ErrPresetPersistenceFailed = &StandardError{Code: ErrCodePresetPersistenceFailed}
)

// AsStandard extracts a StandardError from err's chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the code of err, or ErrCodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandard(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewParamServiceUnavailableError wraps a transport failure talking to the parameter service.
func NewParamServiceUnavailableError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeParamServiceUnavailable,
		Message:   "Parameter service unreachable",
		Details:   fmt.Sprintf("operation: %s, error: %v", operation, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewParamServiceTimeoutError is a transport failure caused by a deadline.
func NewParamServiceTimeoutError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeParamServiceTimeout,
		Message:   "Parameter service timeout",
		Details:   fmt.Sprintf("operation: %s, error: %v", operation, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewParamServiceRejectedError carries a failure reported by the service itself.
// message is what the service said and becomes the user-facing text.
func NewParamServiceRejectedError(operation, message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeParamServiceRejected,
		Message:   message,
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewPreconditionFailedError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodePreconditionFailed,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewPresetNotFoundError(packageName, name string) *StandardError {
	return &StandardError{
		Code:      ErrCodePresetNotFound,
		Message:   fmt.Sprintf("Preset %q not found", name),
		Details:   fmt.Sprintf("packageName: %s", packageName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewPresetsDisabledError() *StandardError {
	return &StandardError{
		Code:      ErrCodePresetsDisabled,
		Message:   "Presets are not enabled for this session",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPresetPersistenceFailedError wraps a storage backend failure.
func NewPresetPersistenceFailedError(backend string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePresetPersistenceFailed,
		Message:   "Preset storage failed",
		Details:   fmt.Sprintf("backend: %s, error: %v", backend, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid job input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// ==========================
// 4. BPMN Mapping
// ==========================

// BPMNErrorMapping maps internal codes to the error codes modelled in BPMN.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeParamServiceUnavailable:  "PARAM_SERVICE_UNAVAILABLE",
	ErrCodeParamServiceTimeout:      "PARAM_SERVICE_UNAVAILABLE",
	ErrCodeParamServiceRejected:     "PARAMETERS_REJECTED",
	ErrCodePreconditionFailed:       "PARAMETERS_REJECTED",
	ErrCodePresetNotFound:           "PRESET_NOT_FOUND",
	ErrCodePresetsDisabled:          "PRESET_NOT_FOUND",
	ErrCodePresetPersistenceFailed:  "PRESET_STORAGE_FAILED",
	ErrCodeDatabaseConnectionFailed: "PRESET_STORAGE_FAILED",
	ErrCodeInvalidInput:             "INVALID_INPUT",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeParamServiceUnavailable,
		ErrCodePresetPersistenceFailed,
		ErrCodeDatabaseConnectionFailed:
		return 3
	case ErrCodeParamServiceTimeout:
		return 2
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "PARAM_SERVICE"):
		return "TRANSPORT"
	case strings.HasPrefix(codeStr, "PRESET_PERSISTENCE"), strings.HasPrefix(codeStr, "DATABASE"):
		return "PERSISTENCE"
	case strings.HasPrefix(codeStr, "PRESET"), code == ErrCodePreconditionFailed:
		return "PRECONDITION"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

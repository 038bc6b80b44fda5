// Package errors provides structured error handling for the application.
// It defines AppError type with error codes for consistent API responses.
package errors

import (
	"errors"
	"fmt"
)

// Error codes organized by category
const (
	// General errors (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidParams = 1001
	CodeNotFound      = 1002

	// Submission errors (1100-1199)
	CodeSubmitFailed = 1100
	CodeMissingRunID = 1101

	// Polling errors (1200-1299)
	CodePollFailed = 1200

	// Run outcome errors (1300-1399)
	CodeRunFailed     = 1300
	CodeRunIncomplete = 1301

	// Workflow errors (1400-1499)
	CodeInvalidTransition = 1400
	CodeEmptySelection    = 1401
	CodeSessionNotFound   = 1402
	CodeSessionLimit      = 1403
)

// AppError represents a structured application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetail wraps an error with additional detail
func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
	}
}

// Is checks if the target error is an AppError with the specified code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsSubmissionError reports whether err came from a failed run submission.
func IsSubmissionError(err error) bool {
	code := GetCode(err)
	return code >= CodeSubmitFailed && code < CodePollFailed
}

// GetCode extracts error code from error, returns CodeUnknown if not AppError
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage extracts message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// GetDetail extracts detail from error, empty if not AppError
func GetDetail(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Detail
	}
	return ""
}

// Predefined common errors
var (
	ErrInvalidParams = New(CodeInvalidParams, "Invalid parameters")
	ErrNotFound      = New(CodeNotFound, "Resource not found")

	// Submission
	ErrSubmitFailed = New(CodeSubmitFailed, "Workflow submission failed")
	ErrMissingRunID = New(CodeMissingRunID, "Workflow response did not include a run id")

	// Workflow
	ErrInvalidTransition = New(CodeInvalidTransition, "Action not allowed in the current step")
	ErrEmptySelection    = New(CodeEmptySelection, "Select at least one paper")
	ErrSessionNotFound   = New(CodeSessionNotFound, "Session not found")
	ErrSessionLimit      = New(CodeSessionLimit, "Too many active sessions")
)

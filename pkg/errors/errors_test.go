package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	// Test without cause
	err := New(CodeSubmitFailed, "Test error")
	assert.Equal(t, "[1100] Test error", err.Error())

	// Test with cause
	cause := errors.New("underlying error")
	errWithCause := Wrap(CodeSubmitFailed, "Test error", cause)
	assert.Contains(t, errWithCause.Error(), "underlying error")
	assert.Contains(t, errWithCause.Error(), "1100")
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodePollFailed, "Status poll failed", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestIs(t *testing.T) {
	err := New(CodeRunFailed, "Run failed")

	assert.True(t, Is(err, CodeRunFailed))
	assert.False(t, Is(err, CodeRunIncomplete))

	regularErr := errors.New("regular error")
	assert.False(t, Is(regularErr, CodeRunFailed))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, Is(wrapped, CodeRunFailed))
}

func TestIsSubmissionError(t *testing.T) {
	assert.True(t, IsSubmissionError(ErrSubmitFailed))
	assert.True(t, IsSubmissionError(Wrap(CodeMissingRunID, "no run id", nil)))
	assert.False(t, IsSubmissionError(ErrEmptySelection))
	assert.False(t, IsSubmissionError(New(CodePollFailed, "poll")))
	assert.False(t, IsSubmissionError(errors.New("plain")))
}

func TestGetCode(t *testing.T) {
	appErr := New(CodeEmptySelection, "empty")
	assert.Equal(t, CodeEmptySelection, GetCode(appErr))

	regularErr := errors.New("regular error")
	assert.Equal(t, CodeUnknown, GetCode(regularErr))
}

func TestGetMessage(t *testing.T) {
	appErr := New(CodeSessionNotFound, "Session not found")
	assert.Equal(t, "Session not found", GetMessage(appErr))

	regularErr := errors.New("regular error message")
	assert.Equal(t, "regular error message", GetMessage(regularErr))
}

func TestGetDetail(t *testing.T) {
	err := WrapWithDetail(CodeSubmitFailed, "Submission failed", "status=502", errors.New("bad gateway"))
	assert.Equal(t, "status=502", GetDetail(err))
	assert.Equal(t, "", GetDetail(errors.New("plain")))
}

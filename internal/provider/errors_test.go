package provider

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindForStatus(t *testing.T) {
	assert.Equal(t, FailureNotFound, kindForStatus(http.StatusNotFound))
	assert.Equal(t, FailureRateLimited, kindForStatus(http.StatusTooManyRequests))
	assert.Equal(t, FailureTransient, kindForStatus(http.StatusInternalServerError))
	assert.Equal(t, FailureTransient, kindForStatus(http.StatusBadGateway))
	assert.Equal(t, FailureMalformed, kindForStatus(http.StatusBadRequest))
	assert.Equal(t, FailureMalformed, kindForStatus(http.StatusForbidden))
}

func TestRetryable(t *testing.T) {
	assert.True(t, FailureTransient.Retryable())
	assert.True(t, FailureRateLimited.Retryable())
	assert.False(t, FailureNotFound.Retryable())
	assert.False(t, FailureMalformed.Retryable())
}

func TestClassify(t *testing.T) {
	err := NewError("yahoo", FailureNotFound, errors.New("no such symbol"))
	assert.Equal(t, FailureNotFound, Classify(err))

	// Classification survives wrapping.
	wrapped := fmt.Errorf("acquire: %w", err)
	assert.Equal(t, FailureNotFound, Classify(wrapped))

	// Bare errors default to transient so they stay retryable.
	assert.Equal(t, FailureTransient, Classify(errors.New("connection reset")))
}

func TestErrorMessage(t *testing.T) {
	err := NewError("fmp", FailureRateLimited, errors.New("quota exceeded"))
	assert.Equal(t, "fmp: rate limited: quota exceeded", err.Error())
	assert.EqualError(t, errors.Unwrap(err), "quota exceeded")
}

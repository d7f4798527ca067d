package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"ERR_SOMETHING_NEW", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		name   string
		domain string
		wire   string
	}{
		{"not found", "NOT_FOUND", ErrCodeNotFound},
		{"forbidden", "FORBIDDEN", ErrCodeForbidden},
		{"duplicate review is a validation failure", "ALREADY_REVIEWED", ErrCodeValidation},
		{"taken email", "EMAIL_TAKEN", ErrCodeAlreadyExists},
		{"self review is a validation failure", "SELF_REVIEW", ErrCodeValidation},
		{"interval check", "INVALID_INTERVAL", ErrCodeValidation},
		{"category check", "INVALID_CATEGORY", ErrCodeValidation},
		{"position check", "INVALID_POSITION", ErrCodeValidation},
		{"missing creator", "MISSING_CREATOR", ErrCodeValidation},
		{"upload failure", "UPLOAD_FAILED", ErrCodeUploadFailed},
		{"unknown passes through", "SOMETHING_ELSE", "SOMETHING_ELSE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wire, NormalizeErrorCode(tt.domain))
		})
	}
}

func TestDuplicateReviewStatusCodes(t *testing.T) {
	// A repeated submit caught by the pre-check is a client error, the
	// unique index losing a race is a conflict.
	assert.Equal(t, http.StatusBadRequest, GetHTTPStatus(NormalizeErrorCode("ALREADY_REVIEWED")))
	assert.Equal(t, http.StatusConflict, GetHTTPStatus(NormalizeErrorCode("ALREADY_EXISTS")))
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "stars", Message: "Must be at least 1"},
	}

	resp := NewValidationErrorResponse("Request validation failed", "req-123", details)

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-123", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 1)
}

package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeValidationRequired, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeBusinessRule, http.StatusUnprocessableEntity},
		{ErrCodePendingBalance, http.StatusUnprocessableEntity},
		{ErrCodeAlreadyPaid, http.StatusUnprocessableEntity},
		{ErrCodeBedOccupied, http.StatusConflict},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}

	t.Run("unmapped code falls back to 500", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("UNKNOWN_CODE"))
	})
}

func TestNormalizeErrorCode(t *testing.T) {
	t.Run("domain codes map to response codes", func(t *testing.T) {
		mappings := map[string]string{
			"NOT_FOUND":              ErrCodeNotFound,
			"ALREADY_EXISTS":         ErrCodeAlreadyExists,
			"INVALID_INPUT":          ErrCodeInvalidInput,
			"INVALID_STATE":          ErrCodeInvalidState,
			"UNAUTHORIZED":           ErrCodeUnauthorized,
			"FORBIDDEN":              ErrCodeForbidden,
			"CONCURRENCY_CONFLICT":   ErrCodeConcurrencyConflict,
			"PENDING_BALANCE":        ErrCodePendingBalance,
			"BED_OCCUPIED":           ErrCodeBedOccupied,
			"ALREADY_PAID":           ErrCodeAlreadyPaid,
			"INVALID_PATIENT":        ErrCodeInvalidInput,
			"INVALID_AMOUNT":         ErrCodeInvalidInput,
			"INVALID_PAYMENT_METHOD": ErrCodeInvalidInput,
			"VALIDATION_ERROR":       ErrCodeValidation,
			"BAD_REQUEST":            ErrCodeBadRequest,
			"INTERNAL_ERROR":         ErrCodeInternal,
		}
		for input, expected := range mappings {
			assert.Equal(t, expected, NormalizeErrorCode(input), "input %q", input)
		}
	})

	t.Run("already-normalized codes pass through", func(t *testing.T) {
		assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode(ErrCodeNotFound))
		assert.Equal(t, ErrCodeValidation, NormalizeErrorCode(ErrCodeValidation))
	})

	t.Run("unknown codes pass through", func(t *testing.T) {
		assert.Equal(t, "CUSTOM_ERROR", NormalizeErrorCode("CUSTOM_ERROR"))
	})
}

func TestErrorCodeRegistry(t *testing.T) {
	allCodes := []string{
		ErrCodeUnknown,
		ErrCodeInternal,
		ErrCodeValidation,
		ErrCodeValidationRequired,
		ErrCodeValidationFormat,
		ErrCodeValidationRange,
		ErrCodeValidationLength,
		ErrCodeUnauthorized,
		ErrCodeForbidden,
		ErrCodeTokenExpired,
		ErrCodeTokenInvalid,
		ErrCodeNotFound,
		ErrCodeAlreadyExists,
		ErrCodeConflict,
		ErrCodeConcurrencyConflict,
		ErrCodeInvalidState,
		ErrCodeBusinessRule,
		ErrCodePendingBalance,
		ErrCodeBedOccupied,
		ErrCodeAlreadyPaid,
		ErrCodeBadRequest,
		ErrCodeInvalidInput,
		ErrCodeInvalidJSON,
		ErrCodeRateLimited,
		ErrCodeTooManyRequests,
	}

	t.Run("every code has a status mapping", func(t *testing.T) {
		for _, code := range allCodes {
			status, ok := ErrorCodeHTTPStatus[code]
			assert.True(t, ok, "code %s missing from ErrorCodeHTTPStatus", code)
			assert.Greater(t, status, 0)
		}
	})

	t.Run("codes follow the ERR_ convention", func(t *testing.T) {
		for _, code := range allCodes {
			assert.Contains(t, code, "ERR_", "code %s", code)
		}
	})
}

func TestErrorResponseConstructors(t *testing.T) {
	t.Run("plain error", func(t *testing.T) {
		resp := NewErrorResponse(ErrCodeNotFound, "Resource not found")

		assert.False(t, resp.Success)
		assert.Nil(t, resp.Data)
		assert.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
		assert.Equal(t, "Resource not found", resp.Error.Message)
	})

	t.Run("with request id", func(t *testing.T) {
		resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Resource not found", "req-123-456")

		assert.False(t, resp.Success)
		assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
		assert.Equal(t, "req-123-456", resp.Error.RequestID)
	})

	t.Run("with details", func(t *testing.T) {
		resp := NewErrorResponseWithDetails(
			ErrCodePendingBalance,
			"Cannot discharge with unpaid balance",
			"req-42",
			map[string]any{"remaining": "550.00"},
		)

		assert.False(t, resp.Success)
		assert.Equal(t, ErrCodePendingBalance, resp.Error.Code)
		assert.Equal(t, "req-42", resp.Error.RequestID)
		assert.Equal(t, "550.00", resp.Error.Details["remaining"])
	})

	t.Run("validation details", func(t *testing.T) {
		details := []ValidationDetail{
			{Field: "patient_id", Message: "Patient ID is required"},
			{Field: "amount", Message: "Must be greater than zero"},
		}

		resp := NewValidationErrorResponse("Validation failed", "req-789", details)

		assert.False(t, resp.Success)
		assert.Equal(t, ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "Validation failed", resp.Error.Message)
		assert.Equal(t, "req-789", resp.Error.RequestID)
		assert.Len(t, resp.Error.Fields, 2)
		assert.Equal(t, "patient_id", resp.Error.Fields[0].Field)
		assert.Equal(t, "Patient ID is required", resp.Error.Fields[0].Message)
	})
}

func TestErrorResponseJSONRoundTrip(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Admission not found", "req-test-123")

	data, err := json.Marshal(resp)
	assert.NoError(t, err)

	var decoded Response
	assert.NoError(t, json.Unmarshal(data, &decoded))

	assert.False(t, decoded.Success)
	assert.Equal(t, ErrCodeNotFound, decoded.Error.Code)
	assert.Equal(t, "Admission not found", decoded.Error.Message)
	assert.Equal(t, "req-test-123", decoded.Error.RequestID)
}

func TestSuccessResponseConstructors(t *testing.T) {
	t.Run("plain success", func(t *testing.T) {
		resp := NewSuccessResponse(map[string]string{"name": "test"})

		assert.True(t, resp.Success)
		assert.NotNil(t, resp.Data)
		assert.Nil(t, resp.Error)
		assert.Nil(t, resp.Meta)
	})

	t.Run("with meta", func(t *testing.T) {
		resp := NewSuccessResponseWithMeta([]string{"item1", "item2"}, 100, 1, 10)

		assert.True(t, resp.Success)
		assert.Nil(t, resp.Error)
		assert.Equal(t, int64(100), resp.Meta.Total)
		assert.Equal(t, 1, resp.Meta.Page)
		assert.Equal(t, 10, resp.Meta.PageSize)
		assert.Equal(t, 10, resp.Meta.TotalPages)
	})

	t.Run("page arithmetic", func(t *testing.T) {
		tests := []struct {
			total         int64
			page          int
			pageSize      int
			expectedPages int
			expectedSize  int
		}{
			{100, 1, 10, 10, 10},
			{101, 1, 10, 11, 10}, // partial final page rounds up
			{0, 1, 10, 0, 10},
			{9, 1, 10, 1, 10},
			{10, 1, 10, 1, 10},
			{11, 1, 10, 2, 10},
			{100, 1, 0, 5, 20}, // invalid page size falls back to 20
			{100, 1, -1, 5, 20},
		}

		for _, tt := range tests {
			resp := NewSuccessResponseWithMeta(nil, tt.total, tt.page, tt.pageSize)
			assert.Equal(t, tt.expectedPages, resp.Meta.TotalPages)
			assert.Equal(t, tt.expectedSize, resp.Meta.PageSize)
		}
	})
}

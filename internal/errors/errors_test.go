package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewEmptyResultError("No columns with sufficient non-empty cells found"),
			want: "[EMPTY_RESULT] No columns with sufficient non-empty cells found",
		},
		{
			name: "with cause",
			err:  NewFileOpenError("Failed to load Excel file", fmt.Errorf("boom")),
			want: "[FILE_OPEN] Failed to load Excel file: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := fmt.Errorf("send: %w", NewEmailError("Failed to send email", cause))

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, ErrTypeEmail, TypeOf(err))
	assert.True(t, IsType(err, ErrTypeEmail))
	assert.False(t, IsType(err, ErrTypeConfig))
}

func TestAppError_WithContext(t *testing.T) {
	err := NewFileOpenError("open", nil).WithContext("path", "/tmp/x.xlsx")
	assert.Equal(t, "/tmp/x.xlsx", err.Context["path"])
}

func TestSeverityOf(t *testing.T) {
	assert.Equal(t, SeverityWarning, SeverityOf(NewEmptyResultError("no matches")))
	assert.Equal(t, SeverityError, SeverityOf(NewEmailError("x", nil)))
	assert.Equal(t, SeverityError, SeverityOf(fmt.Errorf("plain")))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "no matches", UserMessage(NewEmptyResultError("no matches")))
	assert.Equal(t, "open: bad", UserMessage(NewFileOpenError("open", fmt.Errorf("bad"))))
	assert.Equal(t, "plain", UserMessage(fmt.Errorf("plain")))
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantSev    Severity
	}{
		{"validation", NewAppValidationError("bad"), http.StatusBadRequest, "VALIDATION", SeverityError},
		{"not found", NewAppError(ErrTypeNotFound, "table not found", nil), http.StatusNotFound, "NOT_FOUND", SeverityError},
		{"file open", NewFileOpenError("open", nil), http.StatusUnprocessableEntity, "FILE_OPEN", SeverityError},
		{"empty result", NewEmptyResultError("none"), http.StatusUnprocessableEntity, "EMPTY_RESULT", SeverityWarning},
		{"email", NewEmailError("smtp", nil), http.StatusBadGateway, "EMAIL", SeverityError},
		{"automation", NewAutomationError("graph", nil), http.StatusBadGateway, "AUTOMATION", SeverityError},
		{"config", NewConfigError("cfg", nil), http.StatusInternalServerError, "CONFIG", SeverityError},
		{"plain", fmt.Errorf("oops"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromError(tt.err)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
			assert.Equal(t, tt.wantSev, apiErr.Severity)
		})
	}

	passthrough := New(http.StatusTeapot, "TEAPOT", "short and stout")
	assert.Same(t, passthrough, FromError(passthrough))
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrRateLimitExceeded)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", resp.Error.ErrorCode)
}

func TestRenderError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/table", nil)

	RenderError(rec, req, NewAppError(ErrTypeNotFound, "table not found", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "table not found", resp.Error.Message)
}

package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func requestWithCorrelation(id string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil)
	if id == "" {
		return req
	}
	return req.WithContext(logger.WithCorrelationID(req.Context(), id))
}

func TestWriteData(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, http.StatusOK, map[string]int{"count": 2})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"count":2}}`, rec.Body.String())
}

func TestWriteErrorCode_EchoesCorrelationID(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteErrorCode(rec, requestWithCorrelation("corr-1"), http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t,
		`{"error":{"code":"RATE_LIMITED","message":"too many requests","request_id":"corr-1"}}`,
		rec.Body.String())
}

func TestWriteErrorCode_OmitsEmptyRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteErrorCode(rec, requestWithCorrelation(""), http.StatusForbidden, "FORBIDDEN", "no")

	assert.NotContains(t, rec.Body.String(), "request_id")
	assert.NotContains(t, rec.Body.String(), `"data"`)
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"app error", apperrors.NotFound("product", "p1"), http.StatusNotFound, "NOT_FOUND", "product with id p1 not found"},
		{"wrapped app error", fmt.Errorf("add: %w", apperrors.InvalidInput("invalid product: id is required")), http.StatusBadRequest, "INVALID_INPUT", "invalid product: id is required"},
		{"sentinel not found", fmt.Errorf("slot: %w", apperrors.ErrNotFound), http.StatusNotFound, "NOT_FOUND", "resource not found"},
		{"sentinel conflict", apperrors.ErrConflict, http.StatusConflict, "CONFLICT", "resource conflict"},
		{"sentinel invalid input keeps message", fmt.Errorf("quantity: %w", apperrors.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT", "quantity: invalid input"},
		{"sentinel unavailable", fmt.Errorf("catalog: %w", apperrors.ErrServiceUnavail), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "service unavailable"},
		{"unknown", errors.New("pq: connection reset"), http.StatusInternalServerError, apperrors.CodeInternal, "an internal error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, requestWithCorrelation("corr-9"), tt.err, slog.New(slog.DiscardHandler))

			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
			assert.Equal(t, "corr-9", resp.Error.RequestID)
		})
	}
}

func TestWriteError_LogsInternalErrorsOnly(t *testing.T) {
	var buf bytes.Buffer
	fallback := slog.New(slog.NewJSONHandler(&buf, nil))

	WriteError(httptest.NewRecorder(), requestWithCorrelation(""), apperrors.ErrNotFound, fallback)
	assert.Zero(t, buf.Len())

	WriteError(httptest.NewRecorder(), requestWithCorrelation(""), errors.New("disk full"), fallback)
	assert.Contains(t, buf.String(), "disk full")
}

func TestWriteError_PrefersRequestLogger(t *testing.T) {
	var scoped, fallback bytes.Buffer
	req := requestWithCorrelation("")
	req = req.WithContext(logger.NewContext(req.Context(), slog.New(slog.NewJSONHandler(&scoped, nil))))

	WriteError(httptest.NewRecorder(), req, errors.New("boom"), slog.New(slog.NewJSONHandler(&fallback, nil)))

	assert.Contains(t, scoped.String(), "boom")
	assert.Zero(t, fallback.Len())
}

func TestWriteValidationError(t *testing.T) {
	type body struct {
		Quantity *int `json:"quantity" validate:"required"`
	}

	rec := httptest.NewRecorder()
	WriteValidationError(rec, requestWithCorrelation("corr-2"), validator.Validate(body{}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, map[string]string{"quantity": "is required"}, resp.Error.Fields)
	assert.Equal(t, "corr-2", resp.Error.RequestID)
}

func TestWriteValidationError_OtherError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteValidationError(rec, requestWithCorrelation(""), errors.New("quantity must be a number"))

	resp := decode(t, rec)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	assert.Equal(t, "quantity must be a number", resp.Error.Message)
	assert.Nil(t, resp.Error.Fields)
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid object", `{"quantity":3}`, ""},
		{"empty body", ``, "request body is required"},
		{"malformed", `{"quantity":`, "invalid request body"},
		{"oversized", `{"quantity":3,"pad":"` + strings.Repeat("x", maxBodyBytes) + `"}`, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/p1", strings.NewReader(tt.body))
			req = req.WithContext(context.Background())

			var dst struct {
				Quantity int `json:"quantity"`
			}
			err := DecodeJSON(httptest.NewRecorder(), req, &dst)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 3, dst.Quantity)
		})
	}
}

package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

// Response is the JSON envelope of every API response.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse is the error half of Response. RequestID echoes the
// correlation id of the request.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// genericMessages replace err.Error() for sentinel errors without an
// AppError message, so internals do not leak to clients.
var genericMessages = map[string]string{
	"NOT_FOUND":            "resource not found",
	"CONFLICT":             "resource conflict",
	"SERVICE_UNAVAILABLE":  "service unavailable",
	"UNAUTHORIZED":         "unauthorized",
	"FORBIDDEN":            "forbidden",
	"GONE":                 "resource no longer available",
	apperrors.CodeInternal: "an internal error occurred",
}

// WriteJSON encodes v with status. Encoding errors are dropped since the
// header is already sent.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes data in the response envelope.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Response{Data: data})
}

// WriteErrorCode writes an error envelope with an explicit code and message.
func WriteErrorCode(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteJSON(w, status, Response{Error: &ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	}})
}

// WriteError maps err to a status and code via the apperrors sentinels and
// writes the error envelope. 5xx errors are logged with the request-scoped
// logger, or fallback when none is mounted.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	status := apperrors.HTTPStatus(err)
	code := apperrors.Code(err)

	var message string
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		message = appErr.Message
	case code == "INVALID_INPUT":
		message = err.Error()
	default:
		message = genericMessages[code]
	}

	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		l := logger.FromContext(r.Context())
		if l == slog.Default() && fallback != nil {
			l = fallback
		}
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteErrorCode(w, r, status, code, message)
}

// WriteValidationError writes a 400 listing the failed fields of a
// *validator.ValidationError, or err's message for any other error.
func WriteValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *validator.ValidationError
	if !errors.As(err, &valErr) {
		WriteErrorCode(w, r, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	WriteJSON(w, http.StatusBadRequest, Response{Error: &ErrorResponse{
		Code:      "VALIDATION_ERROR",
		Message:   "request validation failed",
		Fields:    valErr.Fields(),
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	}})
}

// maxBodyBytes bounds request bodies decoded by DecodeJSON.
const maxBodyBytes = 1 << 20

// DecodeJSON decodes a JSON request body into dst. An empty, oversized or
// malformed body yields an INVALID_INPUT error.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.InvalidInput("request body is required")
		}
		return apperrors.InvalidInput("invalid request body: " + err.Error())
	}
	return nil
}

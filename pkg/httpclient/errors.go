package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const maxErrorBody = 1 << 20

// errorEnvelope is the {"error":{"code","message"}} body returned by
// storefront-style services.
type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// sentinels maps the statuses that keep their meaning across a hop.
var sentinels = map[int]struct {
	code string
	err  error
}{
	http.StatusBadRequest:         {"INVALID_INPUT", apperrors.ErrInvalidInput},
	http.StatusUnauthorized:       {"UNAUTHORIZED", apperrors.ErrUnauthorized},
	http.StatusForbidden:          {"FORBIDDEN", apperrors.ErrForbidden},
	http.StatusNotFound:           {"NOT_FOUND", apperrors.ErrNotFound},
	http.StatusConflict:           {"CONFLICT", apperrors.ErrConflict},
	http.StatusGone:               {"GONE", apperrors.ErrGone},
	http.StatusServiceUnavailable: {"SERVICE_UNAVAILABLE", apperrors.ErrServiceUnavail},
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// converts it into an error. Enveloped bodies become AppErrors keeping the
// upstream message, prefixed with service. Other 5xx stay plain errors.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", service, resp.StatusCode, err)
	}

	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		return fromEnvelope(resp.StatusCode, env.Error.Code, env.Error.Message, service)
	}
	if resp.StatusCode == http.StatusNotFound {
		return fromEnvelope(resp.StatusCode, "", "resource not found", service)
	}
	return fmt.Errorf("%s returned status %d: %s", service, resp.StatusCode, string(body))
}

func fromEnvelope(status int, code, message, service string) error {
	msg := service + ": " + message
	if s, ok := sentinels[status]; ok {
		if code == "" || status != http.StatusServiceUnavailable {
			code = s.code
		}
		return &apperrors.AppError{Code: code, Message: msg, Status: status, Err: s.err}
	}
	if status >= 500 {
		return fmt.Errorf("%s server error (%d/%s): %s", service, status, code, message)
	}
	return &apperrors.AppError{Code: code, Message: msg, Status: status}
}

package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 1 << 20

// upstreamErrorBody matches the common {"error": {...}} and
// {"message": "..."} error shapes returned by JSON APIs.
type upstreamErrorBody struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// ParseResponseError reads a non-2xx response and translates it into an
// AppError keyed on the status code. The body is consumed and closed.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", upstream, resp.StatusCode, err)
	}

	message := string(body)
	var parsed upstreamErrorBody
	if json.Unmarshal(body, &parsed) == nil {
		switch {
		case parsed.Error != nil && parsed.Error.Message != "":
			message = parsed.Error.Message
		case parsed.Message != "":
			message = parsed.Message
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return mapUpstreamError(resp.StatusCode, message, upstream)
}

func mapUpstreamError(status int, message, upstream string) error {
	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(upstream+" resource", message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(fmt.Sprintf("%s: %s", upstream, message))
	case status == http.StatusConflict:
		return apperrors.Conflict(fmt.Sprintf("%s: %s", upstream, message))
	case status == http.StatusForbidden, status == http.StatusUnauthorized:
		return apperrors.Forbidden(fmt.Sprintf("%s: %s", upstream, message))
	case status == http.StatusTooManyRequests, status == http.StatusServiceUnavailable:
		return apperrors.Unavailable(upstream, message)
	case status >= 500:
		return fmt.Errorf("%s server error (%d): %s", upstream, status, message)
	default:
		return &apperrors.AppError{
			Code:    "UPSTREAM_ERROR",
			Message: fmt.Sprintf("%s: %s", upstream, message),
			Status:  http.StatusBadGateway,
		}
	}
}

// IsSuccess reports whether status is a 2xx code.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

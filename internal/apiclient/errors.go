package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stemsi/qprep-client/internal/response"
)

// APIError is a non-2xx reply from the backend.
type APIError struct {
	Status  int
	Code    response.ErrCode
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// newAPIError understands both the enveloped error shape and the bare
// {"statusCode", "message"} shape the production backend emits.
func newAPIError(status int, payload []byte) *APIError {
	apiErr := &APIError{Status: status}

	var envelope response.ErrorResponse
	if err := json.Unmarshal(payload, &envelope); err == nil && envelope.Error != nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		apiErr.Fields = envelope.Error.Fields
		return apiErr
	}

	var bare struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(payload, &bare); err == nil {
		apiErr.Message = flattenMessage(bare.Message)
		if apiErr.Message == "" {
			apiErr.Message = bare.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// flattenMessage accepts a string or a list of strings.
func flattenMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return ""
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsForbidden reports a 403, which the front end renders as an upgrade prompt.
func IsForbidden(err error) bool { return StatusOf(err) == http.StatusForbidden }

// IsUnauthorized reports a 401; stored credentials should be dropped.
func IsUnauthorized(err error) bool { return StatusOf(err) == http.StatusUnauthorized }

// IsNotFound reports a 404.
func IsNotFound(err error) bool { return StatusOf(err) == http.StatusNotFound }

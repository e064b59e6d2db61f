package transcribe

import (
	"encoding/json"
	"fmt"
)

// StatusError is a non-2xx backend response with its optional detail text.
type StatusError struct {
	Endpoint   string `json:"endpoint"`
	StatusCode int    `json:"statusCode"`
	Detail     string `json:"detail,omitempty"`
}

// Error formats backend failures for logs.
func (e *StatusError) Error() string {
	if e == nil {
		return ""
	}
	if e.Detail == "" {
		return fmt.Sprintf("%s: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.StatusCode, e.Detail)
}

// ServiceUnavailable reports whether the backend declared itself unconfigured.
func (e *StatusError) ServiceUnavailable() bool {
	return e != nil && e.StatusCode == 503
}

// parseDetail extracts a string "detail" field from an error body verbatim.
// Validation errors carry a list there; those yield no detail.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err != nil {
		return ""
	}
	return detail
}

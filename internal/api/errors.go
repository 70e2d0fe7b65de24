package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx response from the server.
type Error struct {
	Status int
	// Detail is the body's "detail" field. Validation errors put a list
	// there; those are kept as raw JSON.
	Detail string
	// Body is the raw response body, trimmed.
	Body string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message())
}

// Message is the text shown to the user: the detail if the server sent one,
// otherwise the raw JSON body, otherwise the HTTP status text.
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Body != "" {
		return e.Body
	}
	if text := http.StatusText(e.Status); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// newError builds an Error from a failed response body.
func newError(status int, body []byte) *Error {
	apiErr := &Error{
		Status: status,
		Body:   strings.TrimSpace(string(body)),
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return apiErr
	}

	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		apiErr.Detail = detail
		return apiErr
	}
	if string(payload.Detail) != "null" {
		apiErr.Detail = string(payload.Detail)
	}
	return apiErr
}

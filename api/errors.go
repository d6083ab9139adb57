package api

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrSessionExpired is returned when a 401 could not be recovered by the
	// refresh protocol. The session has been (or is being) torn down.
	ErrSessionExpired = errors.New("session expired")

	// ErrCartConflict is returned for a warehouse-mismatch 409: the cart is
	// bound to a fulfilment location unreachable from the current context.
	ErrCartConflict = errors.New("cart conflict: location changed")
)

const genericErrorMessage = "An unexpected error occurred"

// Error carries a non-2xx API response: HTTP status, a best-effort human
// message, and the raw parsed body for programmatic inspection.
type Error struct {
	Status  int
	Message string
	Data    any
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// newError builds an Error from a parsed response body, extracting the first
// of detail, error, or non_field_errors[0] as the human message.
func newError(status int, parsed any) *Error {
	return &Error{
		Status:  status,
		Message: errorMessage(parsed),
		Data:    parsed,
	}
}

func errorMessage(parsed any) string {
	m, ok := parsed.(map[string]any)
	if !ok {
		return genericErrorMessage
	}
	if detail, ok := m["detail"].(string); ok && detail != "" {
		return detail
	}
	if raw, ok := m["error"]; ok && raw != nil {
		if s, ok := raw.(string); ok {
			if s != "" {
				return s
			}
		} else if data, err := json.Marshal(raw); err == nil {
			return string(data)
		}
	}
	if nfe, ok := m["non_field_errors"].([]any); ok && len(nfe) > 0 {
		if s, ok := nfe[0].(string); ok && s != "" {
			return s
		}
	}
	return genericErrorMessage
}

package pestapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingToken is returned before any request is built when no token is present.
	ErrMissingToken = errors.New("No authentication token found. Please log in again.")

	// ErrExpiredToken is returned when a JWT token is already past its exp claim.
	ErrExpiredToken = errors.New("Your session has expired. Please log in again.")
)

const (
	msgNetwork    = "Network error. Please check your connection and try again."
	msgUnexpected = "Unexpected response from server. Please try again."
	msgGeneric    = "Something went wrong. Please try again."
)

// APIError is a non-2xx response from the marketplace API.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NetworkError wraps transport failures (timeouts, refused connections, DNS).
type NetworkError struct {
	Op      string
	Timeout bool
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("pestapi %s timeout: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("pestapi %s network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// SchemaError reports a 2xx body that does not have the expected shape.
type SchemaError struct {
	Op     string
	Issues []string
	Err    error
}

func (e *SchemaError) Error() string {
	if len(e.Issues) > 0 {
		return fmt.Sprintf("pestapi %s unexpected response: %s", e.Op, strings.Join(e.Issues, "; "))
	}
	return fmt.Sprintf("pestapi %s unexpected response: %v", e.Op, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// UserMessage turns any client error into text suitable for a banner or alert.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrMissingToken) || errors.Is(err, ErrExpiredToken) {
		return err.Error()
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return msgNetwork
	}
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return msgUnexpected
	}
	return msgGeneric
}

// IsAuthError reports whether err was produced by the local credential check.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrMissingToken) || errors.Is(err, ErrExpiredToken)
}

// messageFromBody extracts {message} or {error} from an error body.
func messageFromBody(body []byte, fallback string) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, raw := range []json.RawMessage{payload.Message, payload.Error} {
			if msg := rawString(raw); msg != "" {
				return msg
			}
		}
	}
	if fallback == "" {
		return msgGeneric
	}
	return fallback
}

// rawString accepts a JSON string or an object carrying a message field.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}

package share

import (
	"fmt"
	"strings"
)

// MissingConfigError is reported when a credential or endpoint is not configured.
type MissingConfigError struct {
	Provider string
	Fields   []string
}

func (e MissingConfigError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s credentials not configured", e.Provider)
	}
	return fmt.Sprintf("%s credentials not configured (missing %s)", e.Provider, strings.Join(e.Fields, ", "))
}

// TransportError wraps a network failure or an unsuccessful HTTP status.
type TransportError struct {
	Provider string
	Status   int
	Err      error
}

func (e TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s request failed: status %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e TransportError) Unwrap() error { return e.Err }

// MalformedResponseError is reported when a response body has an unexpected shape.
type MalformedResponseError struct {
	Provider string
	Body     string
	Err      error
}

func (e MalformedResponseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s response is invalid: %s", e.Provider, e.Body)
	}
	return fmt.Sprintf("%s response is invalid: %v: %s", e.Provider, e.Err, e.Body)
}

func (e MalformedResponseError) Unwrap() error { return e.Err }

// ValidationError captures provider-specific validation issues.
type ValidationError struct {
	Provider string
	Reason   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Provider, e.Reason)
}

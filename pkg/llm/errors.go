package llm

import "fmt"

// StatusError is a non-2xx answer from a backend, normalised across providers.
type StatusError struct {
	Backend    string
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %v", e.Backend, e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// TransportError means the backend could not produce a reply: retries were
// exhausted or the failure was not retryable.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend request failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SchemaValidationError means a reply arrived but was not valid JSON or did
// not satisfy the schema. Raw holds the reply exactly as received.
type SchemaValidationError struct {
	Schema string
	Raw    string
	Err    error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("response does not satisfy schema %q: %v", e.Schema, e.Err)
}

func (e *SchemaValidationError) Unwrap() error { return e.Err }

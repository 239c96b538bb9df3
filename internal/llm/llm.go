package llm

import "fmt"

// APIError is returned when a provider answers with a non-2xx status.
// The body is kept verbatim for diagnostics; provider error payloads
// differ too much to parse uniformly.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("llm provider returned %d: %s", e.Status, e.Body)
}

package teams

import (
	"fmt"
)

const defaultAPIMessage = "unknown error"

// APIError is returned when the upstream answers with a non-zero code.
type APIError struct {
	Code    int
	Message string
	Cycle   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("teams API error [%d] for cycle %s: %s", e.Code, e.Cycle, e.Message)
}

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	StatusCode int
	Body       string
	Cycle      string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("teams API returned HTTP %d for cycle %s", e.StatusCode, e.Cycle)
}

// Unauthorized reports whether the upstream rejected the credentials.
func (e *StatusError) Unauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

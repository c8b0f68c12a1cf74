package analysis

import "fmt"

// InputError rejects a payload that is not analyzable video content.
// It is raised before any network activity and always surfaced.
type InputError struct {
	Err error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid upload: %v", e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// ServiceError represents an answered-but-negative outcome from the
// analysis service: a non-2xx response, or a 2xx payload whose analysis
// text carries the upstream error marker. It is surfaced to the caller
// rather than masked by fallback, because the service did respond.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("analysis service error: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable returns true for server errors (5xx). Client errors (4xx)
// and embedded error markers are considered permanent.
func (e *ServiceError) IsRetryable() bool {
	return e.StatusCode >= 500
}

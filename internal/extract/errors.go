// Package extract implements the adaptive rate-limited extraction engine:
// it walks paginated listing search results, reacts to throttling and
// transient failures, and parses listing cards into typed records.
package extract

import "fmt"

// ValidationError reports a request that fails its enumerated constraints.
// It is fatal and raised before any network I/O.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// FetchError represents a failed page fetch. It is logged and the page is
// skipped; it never aborts a run.
type FetchError struct {
	URL     string
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

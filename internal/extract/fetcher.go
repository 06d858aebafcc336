package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout is the per-request HTTP timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the stable client identity sent with every request.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/101.0.4951.67 Safari/537.36"

// OutcomeKind classifies a single fetch attempt.
type OutcomeKind int

const (
	// OutcomeSuccess: 200, body available.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeRateLimited: 429, the caller must back off and retry the page.
	OutcomeRateLimited
	// OutcomeHTTPError: any other status; the page is skipped.
	OutcomeHTTPError
	// OutcomeTransportError: connection or timeout failure; the page is skipped.
	OutcomeTransportError
)

// Outcome is the classified result of one fetch. Body is set only for
// OutcomeSuccess, StatusCode for any response that arrived, Err for
// transport failures.
type Outcome struct {
	Kind       OutcomeKind
	Body       string
	StatusCode int
	Err        error
}

// Fetcher performs exactly one network round trip per call and classifies
// the result. It never retries; retry policy belongs to the pipeline.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher returns a fetcher with the given timeout (DefaultTimeout when
// zero) and the default client identity.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: DefaultUserAgent,
	}
}

// Fetch issues one GET and classifies the outcome.
func (f *Fetcher) Fetch(ctx context.Context, url string) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Outcome{
			Kind: OutcomeTransportError,
			Err:  &FetchError{URL: url, Message: "failed to create request", Cause: err},
		}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return Outcome{
			Kind: OutcomeTransportError,
			Err:  &FetchError{URL: url, Message: "HTTP request failed", Cause: err},
		}
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return Outcome{
				Kind:       OutcomeTransportError,
				StatusCode: resp.StatusCode,
				Err:        &FetchError{URL: url, Message: "failed to read response body", Cause: err},
			}
		}
		return Outcome{Kind: OutcomeSuccess, Body: string(body), StatusCode: resp.StatusCode}
	case http.StatusTooManyRequests:
		return Outcome{Kind: OutcomeRateLimited, StatusCode: resp.StatusCode}
	default:
		return Outcome{
			Kind:       OutcomeHTTPError,
			StatusCode: resp.StatusCode,
			Err:        &FetchError{URL: url, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)},
		}
	}
}

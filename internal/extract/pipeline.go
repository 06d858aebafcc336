package extract

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultBaseURL is the listing site root.
const DefaultBaseURL = "https://www.rumah123.com"

// MaxPageRetries caps same-page retries under sustained throttling so a
// permanently blocked run cannot hang forever; a page that is still rate
// limited after this many retries is skipped like a transient failure.
const MaxPageRetries = 25

// PageFetcher fetches one URL and classifies the outcome.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) Outcome
}

// Pipeline drives the page loop: wait, fetch, feed the outcome back to the
// rate limiter, parse. One page is in flight at a time; concurrent fetches
// would defeat the rate-limiting contract.
type Pipeline struct {
	baseURL string
	fetcher PageFetcher
	limiter *RateLimiter
}

// NewPipeline wires a pipeline. Nil fetcher or limiter fall back to the
// defaults; an empty base URL falls back to DefaultBaseURL.
func NewPipeline(baseURL string, fetcher PageFetcher, limiter *RateLimiter) *Pipeline {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if fetcher == nil {
		fetcher = NewFetcher(DefaultTimeout)
	}
	if limiter == nil {
		limiter = NewRateLimiter()
	}
	return &Pipeline{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: fetcher,
		limiter: limiter,
	}
}

// BuildURL renders the deterministic search URL for one page.
func (p *Pipeline) BuildURL(adsType AdsType, region string, propertyType PropertyType, page int) string {
	return fmt.Sprintf("%s/%s/%s/%s/?sort=posted-desc&page=%d", p.baseURL, adsType, region, propertyType, page)
}

// Run walks pages 1..NumPages. A 429 retries the same page after the
// limiter's backoff; other failures skip the page; a page with zero listings
// ends the run. Cancellation at any suspension point returns the records
// accumulated so far with reason cancelled, never an error.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result := &Result{Reason: StopExhaustedPages}
	page := 1
	retries := 0

	for page <= req.NumPages {
		if err := sleepCtx(ctx, p.limiter.NextDelay()); err != nil {
			return cancelled(result), nil
		}

		url := p.BuildURL(req.AdsType, req.Region, req.PropertyType, page)
		outcome := p.fetcher.Fetch(ctx, url)
		if ctx.Err() != nil {
			return cancelled(result), nil
		}

		switch outcome.Kind {
		case OutcomeSuccess:
			p.limiter.OnSuccess()
			records := p.parsePage(outcome.Body, req)
			result.PagesFetched++
			if len(records) == 0 {
				log.Printf("no listings found on page %d, ending extraction", page)
				result.StoppedEarly = true
				result.Reason = StopEmptyPage
				return result, nil
			}
			result.Records = append(result.Records, records...)
			page++
			retries = 0

		case OutcomeRateLimited:
			backoff := p.limiter.OnRateLimited()
			retries++
			if retries > MaxPageRetries {
				wait := p.limiter.OnTransientError()
				log.Printf("page %d still rate limited after %d retries, skipping", page, MaxPageRetries)
				if err := sleepCtx(ctx, wait); err != nil {
					return cancelled(result), nil
				}
				page++
				retries = 0
				continue
			}
			log.Printf("rate limited on page %d, backing off for %s", page, backoff.Round(time.Millisecond))
			if err := sleepCtx(ctx, backoff); err != nil {
				return cancelled(result), nil
			}
			// retry the same page

		case OutcomeHTTPError:
			wait := p.limiter.OnTransientError()
			log.Printf("page %d returned status %d, skipping", page, outcome.StatusCode)
			if err := sleepCtx(ctx, wait); err != nil {
				return cancelled(result), nil
			}
			page++
			retries = 0

		case OutcomeTransportError:
			wait := p.limiter.OnTransientError()
			log.Printf("request error on page %d: %v, skipping", page, outcome.Err)
			if err := sleepCtx(ctx, wait); err != nil {
				return cancelled(result), nil
			}
			page++
			retries = 0
		}
	}

	return result, nil
}

// parsePage parses every listing card in a page body. Cancellation is never
// checked here: a received body is always parsed in full, so no partial
// record is ever emitted.
func (p *Pipeline) parsePage(body string, req Request) []ListingRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		log.Printf("failed to parse page body: %v", err)
		return nil
	}

	var records []ListingRecord
	doc.Find(listingCardSelector).Each(func(_ int, card *goquery.Selection) {
		record := ParseListingCard(card, req.AdminAreas)
		record.AdsType = req.AdsType
		record.PropertyType = req.PropertyType
		records = append(records, record)
	})
	return records
}

func cancelled(result *Result) *Result {
	result.StoppedEarly = true
	result.Reason = StopCancelled
	return result
}

// sleepCtx waits for d or until the context is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selector schema for one listing card. The markup is externally controlled
// and inconsistent across listings, so every lookup tolerates absence.
const (
	listingCardSelector = "div.card-featured__middle-section"
	linkSelector        = "a:not(.quick-label-badge)"
	priceSelector       = "div.card-featured__middle-section__price"
	badgeSelector       = "div.card-featured__middle-section__header-badge"
	attributeSelector   = "span.attribute-text"
	sizeSelector        = "div.attribute-info"
)

// listingLinkPrefix is the canonical prefix prepended to relative listing
// targets.
const listingLinkPrefix = "rumah123.com"

var (
	lowerUpperBoundary = regexp.MustCompile(`([a-z])([A-Z])`)
	acronymBoundary    = regexp.MustCompile(`([A-Z]{2,})([A-Z][a-z])`)
	punctBoundary      = regexp.MustCompile(`[^\w\s]+([A-Za-z])`)
	separatorRun       = regexp.MustCompile(`\s*,\s*`)
)

// TokenizeBadgeText splits a run-together badge blob into tokens by inserting
// boundaries (lower->Upper transitions, acronym edges, punctuation before a
// letter), collapsing them into a single ", " delimiter and splitting on it.
// The behavior is pinned by fixture tests; change the rules only together
// with them.
func TokenizeBadgeText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	text = lowerUpperBoundary.ReplaceAllString(text, "$1, $2")
	text = acronymBoundary.ReplaceAllString(text, "$1, $2")
	text = punctBoundary.ReplaceAllString(text, ", $1")
	text = separatorRun.ReplaceAllString(text, ", ")
	text = strings.Trim(text, ", ")
	if text == "" {
		return nil
	}
	return strings.Split(text, ", ")
}

// badgeFeatures tokenizes the badge text and drops the first token, which
// carries the property-type label already known from the request.
func badgeFeatures(text string) []string {
	tokens := TokenizeBadgeText(text)
	if len(tokens) <= 1 {
		return []string{}
	}
	return tokens[1:]
}

// ParseListingCard extracts a record from one listing card fragment. It is
// total: a missing sub-element yields a nil field, never an error.
func ParseListingCard(card *goquery.Selection, adminAreas []string) ListingRecord {
	record := ListingRecord{
		AdditionalFeatures: []string{},
	}

	if href, ok := card.Find(linkSelector).First().Attr("href"); ok {
		link := listingLinkPrefix + href
		record.Link = &link
	}

	if name := trimmedText(card.Find("h2").First()); name != "" {
		record.Name = &name
	}

	if price := trimmedText(card.Find(priceSelector).Find("strong").First()); price != "" {
		record.PriceRaw = &price
	}

	record.Location = matchLocation(card, adminAreas)

	sizes := card.Find(sizeSelector)
	record.LotSizeRaw = nthText(sizes, 0)
	record.BuildingSizeRaw = nthText(sizes, 1)

	attributes := card.Find(attributeSelector)
	record.BedroomsRaw = nthText(attributes, 0)
	record.BathroomsRaw = nthText(attributes, 1)
	record.CarportsRaw = nthText(attributes, 2)

	if badge := card.Find(badgeSelector).First(); badge.Length() > 0 {
		record.AdditionalFeatures = badgeFeatures(badge.Text())
	}

	return record
}

// matchLocation returns the first span text that contains any admin area
// name, case-insensitively, or the empty string.
func matchLocation(card *goquery.Selection, adminAreas []string) string {
	location := ""
	card.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		text := strings.TrimSpace(span.Text())
		if text == "" {
			return true
		}
		lower := strings.ToLower(text)
		for _, admin := range adminAreas {
			if admin != "" && strings.Contains(lower, strings.ToLower(admin)) {
				location = text
				return false
			}
		}
		return true
	})
	return location
}

func trimmedText(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}

// nthText returns the trimmed text of the nth element of a selection, or nil
// when the selection is too short.
func nthText(sel *goquery.Selection, n int) *string {
	if n >= sel.Length() {
		return nil
	}
	text := strings.TrimSpace(sel.Eq(n).Text())
	return &text
}

// Package transform cleans raw listing records before loading: it drops
// records without links, deduplicates, and coerces locale-formatted text
// fields into numbers.
package transform

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/aditya/property-etl/internal/extract"
)

// CleanRecord is a listing record after cleaning. Numeric fields are nil
// when the source text could not be coerced.
type CleanRecord struct {
	Link               string
	Name               *string
	Price              *int64
	Location           string
	LotSize            *int64
	BuildingSize       *int64
	Bedrooms           *int64
	Bathrooms          *int64
	Carports           *int64
	AdditionalFeatures []string
	AdsType            extract.AdsType
	PropertyType       extract.PropertyType
}

var digitRun = regexp.MustCompile(`\d+`)

// Indonesian magnitude words found in listing prices.
var priceMultipliers = []struct {
	word string
	mult float64
}{
	{"triliun", 1_000_000_000_000},
	{"miliar", 1_000_000_000},
	{"juta", 1_000_000},
	{"ribu", 1_000},
}

// Clean converts raw records into clean ones: records with a nil link are
// dropped, duplicates (by link) keep their first occurrence, and text fields
// are coerced to numbers. Input order is preserved.
func Clean(records []extract.ListingRecord) []CleanRecord {
	seen := make(map[string]struct{}, len(records))
	cleaned := make([]CleanRecord, 0, len(records))

	for _, r := range records {
		if r.Link == nil {
			continue
		}
		link := *r.Link
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}

		cleaned = append(cleaned, CleanRecord{
			Link:               link,
			Name:               r.Name,
			Price:              parsePricePtr(r.PriceRaw),
			Location:           r.Location,
			LotSize:            leadingNumber(r.LotSizeRaw),
			BuildingSize:       leadingNumber(r.BuildingSizeRaw),
			Bedrooms:           coerceInt(r.BedroomsRaw),
			Bathrooms:          coerceInt(r.BathroomsRaw),
			Carports:           coerceInt(r.CarportsRaw),
			AdditionalFeatures: r.AdditionalFeatures,
			AdsType:            r.AdsType,
			PropertyType:       r.PropertyType,
		})
	}
	return cleaned
}

// ParsePrice converts source-locale price text ("Rp 1,5 Miliar") into a
// numeric amount. The decimal comma becomes a dot and magnitude words
// multiply the leading number. Unparseable text yields nil.
func ParsePrice(raw string) *int64 {
	price := strings.ToLower(strings.TrimSpace(raw))
	price = strings.TrimPrefix(price, "rp ")
	price = strings.ReplaceAll(price, ",", ".")
	price = strings.TrimSpace(price)
	if price == "" {
		return nil
	}

	mult := 1.0
	for _, m := range priceMultipliers {
		if strings.HasSuffix(price, m.word) {
			mult = m.mult
			price = strings.TrimSpace(strings.TrimSuffix(price, m.word))
			break
		}
	}

	value, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return nil
	}
	amount := int64(math.Round(value * mult))
	return &amount
}

func parsePricePtr(raw *string) *int64 {
	if raw == nil {
		return nil
	}
	return ParsePrice(*raw)
}

// leadingNumber extracts the first run of digits from a size field such as
// "120 m²".
func leadingNumber(raw *string) *int64 {
	if raw == nil {
		return nil
	}
	digits := digitRun.FindString(*raw)
	if digits == "" {
		return nil
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// coerceInt parses a numeric-looking field; anything else yields nil.
func coerceInt(raw *string) *int64 {
	if raw == nil {
		return nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(*raw), 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

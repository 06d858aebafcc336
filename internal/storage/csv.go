// Package storage writes intermediate CSV artifacts for ETL runs.
package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aditya/property-etl/internal/extract"
	"github.com/aditya/property-etl/internal/transform"
)

var rawHeader = []string{
	"link", "name", "price", "location", "lot_size", "building_size",
	"bedrooms", "bathrooms", "carports", "additional_features",
	"ads_type", "property_type",
}

// CSVPath builds the dated artifact path `{dir}/{name}_{YYYYMMDD}.csv`.
func CSVPath(dir, name string, date time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", name, date.Format("20060102")))
}

// SaveRawCSV writes extracted records to `{dir}/{name}_{YYYYMMDD}.csv`,
// creating the directory if needed, and returns the written path. Nil
// fields become empty cells.
func SaveRawCSV(dir, name string, date time.Time, records []extract.ListingRecord) (string, error) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			deref(r.Link),
			deref(r.Name),
			deref(r.PriceRaw),
			r.Location,
			deref(r.LotSizeRaw),
			deref(r.BuildingSizeRaw),
			deref(r.BedroomsRaw),
			deref(r.BathroomsRaw),
			deref(r.CarportsRaw),
			strings.Join(r.AdditionalFeatures, ", "),
			string(r.AdsType),
			string(r.PropertyType),
		})
	}
	return writeCSV(CSVPath(dir, name, date), rows)
}

// SaveCleanCSV writes cleaned records to `{dir}/{name}_{YYYYMMDD}.csv`,
// creating the directory if needed, and returns the written path.
func SaveCleanCSV(dir, name string, date time.Time, records []transform.CleanRecord) (string, error) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Link,
			deref(r.Name),
			formatInt(r.Price),
			r.Location,
			formatInt(r.LotSize),
			formatInt(r.BuildingSize),
			formatInt(r.Bedrooms),
			formatInt(r.Bathrooms),
			formatInt(r.Carports),
			strings.Join(r.AdditionalFeatures, ", "),
			string(r.AdsType),
			string(r.PropertyType),
		})
	}
	return writeCSV(CSVPath(dir, name, date), rows)
}

// Remove deletes an artifact file. A file that is already gone is not an
// error, so cleanup can run unconditionally.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

func writeCSV(path string, rows [][]string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(rawHeader); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return path, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatInt(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}

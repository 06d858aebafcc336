package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aditya/property-etl/internal/extract"
	"github.com/aditya/property-etl/internal/transform"
)

var testDate = time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVPath(t *testing.T) {
	path := CSVPath("/tmp/raw", "jakarta-selatan", testDate)
	assert.Equal(t, filepath.Join("/tmp/raw", "jakarta-selatan_20260826.csv"), path)
}

func TestSaveRawCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "raw")
	link := "rumah123.com/properti/hos1/"
	name := "Rumah Mewah"
	price := "Rp 1,5 Miliar"

	records := []extract.ListingRecord{
		{
			Link:               &link,
			Name:               &name,
			PriceRaw:           &price,
			Location:           "Jakarta Selatan",
			AdditionalFeatures: []string{"KPR", "Baru"},
			AdsType:            extract.AdsTypeSale,
			PropertyType:       extract.PropertyTypeHouse,
		},
		{}, // all-nil record becomes empty cells
	}

	path, err := SaveRawCSV(dir, "jakarta-selatan", testDate, records)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "jakarta-selatan_20260826.csv"), path)

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "link", rows[0][0])
	assert.Equal(t, link, rows[1][0])
	assert.Equal(t, "Rp 1,5 Miliar", rows[1][2])
	assert.Equal(t, "KPR, Baru", rows[1][9])
	assert.Equal(t, "sale", rows[1][10])
	assert.Equal(t, "", rows[2][0])
}

func TestSaveCleanCSV(t *testing.T) {
	dir := t.TempDir()
	price := int64(1_500_000_000)
	bedrooms := int64(3)

	records := []transform.CleanRecord{{
		Link:         "rumah123.com/properti/hos1/",
		Price:        &price,
		Bedrooms:     &bedrooms,
		Location:     "Jakarta Selatan",
		AdsType:      extract.AdsTypeSale,
		PropertyType: extract.PropertyTypeHouse,
	}}

	path, err := SaveCleanCSV(dir, "jakarta-selatan", testDate, records)
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "1500000000", rows[1][2])
	assert.Equal(t, "3", rows[1][6])
	assert.Equal(t, "", rows[1][4]) // nil lot size stays empty
}

func TestSaveRawCSV_EmptyRecordsStillWritesHeader(t *testing.T) {
	path, err := SaveRawCSV(t.TempDir(), "empty", testDate, nil)
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, rawHeader, rows[0])
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact.csv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	require.NoError(t, Remove(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Removing again must not fail.
	assert.NoError(t, Remove(path))
}

package load

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aditya/property-etl/internal/transform"
)

func TestTableSpecValidate(t *testing.T) {
	valid := TableSpec{
		StagingTable: "listings_staging",
		MainTable:    "listings",
		UniqueKey:    "link",
		BatchSize:    500,
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*TableSpec)
		message string
	}{
		{"missing staging table", func(s *TableSpec) { s.StagingTable = "" }, "staging table must not be empty"},
		{"missing main table", func(s *TableSpec) { s.MainTable = "" }, "main table must not be empty"},
		{"missing unique key", func(s *TableSpec) { s.UniqueKey = "" }, "unique key must not be empty"},
		{"zero batch size", func(s *TableSpec) { s.BatchSize = 0 }, "batch size must be a positive integer"},
		{"negative batch size", func(s *TableSpec) { s.BatchSize = -1 }, "batch size must be a positive integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid
			tt.mutate(&spec)
			err := spec.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestLoad_EmptyInputIsNoOp(t *testing.T) {
	spec := TableSpec{StagingTable: "s", MainTable: "m", UniqueKey: "link", BatchSize: 10}

	// A nil pool proves no database work happens for empty input.
	report, err := Load(context.Background(), nil, nil, spec)
	require.NoError(t, err)
	assert.Equal(t, &Report{}, report)
}

func TestLoad_RejectsInvalidSpecBeforeTouchingDatabase(t *testing.T) {
	records := []transform.CleanRecord{{Link: "rumah123.com/a"}}
	_, err := Load(context.Background(), nil, records, TableSpec{BatchSize: 10})
	require.Error(t, err)
	assert.Equal(t, "staging table must not be empty", err.Error())
}

func TestInsertSQL(t *testing.T) {
	stmt := insertSQL("listings_staging")
	assert.Equal(t,
		"INSERT INTO listings_staging (link, name, price, location, lot_size, "+
			"building_size, bedrooms, bathrooms, carports, additional_features, "+
			"ads_type, property_type) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)",
		stmt)
}

func TestMergeSQL(t *testing.T) {
	spec := TableSpec{
		StagingTable: "listings_staging",
		MainTable:    "listings",
		UniqueKey:    "link",
		BatchSize:    500,
	}
	stmt := mergeSQL(spec)

	assert.Contains(t, stmt, "INSERT INTO listings (")
	assert.Contains(t, stmt, "FROM listings_staging")
	assert.Contains(t, stmt, "ON CONFLICT (link) DO UPDATE SET")
	assert.Contains(t, stmt, "RETURNING xmax = 0")
	assert.Contains(t, stmt, "name = EXCLUDED.name")
	// The conflict key itself must not be reassigned.
	assert.NotContains(t, stmt, "link = EXCLUDED.link")
}

func TestChunkRecords(t *testing.T) {
	records := make([]transform.CleanRecord, 7)

	chunks := chunkRecords(records, 3)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 3)
	assert.Len(t, chunks[1], 3)
	assert.Len(t, chunks[2], 1)

	// A batch size larger than the input yields a single chunk.
	chunks = chunkRecords(records, 100)
	require.Len(t, chunks, 1)
	assert.Len(t, chunks[0], 7)
}

func TestRecordArgsMatchesColumnOrder(t *testing.T) {
	name := "Rumah Mewah"
	price := int64(1_500_000_000)
	r := transform.CleanRecord{
		Link:               "rumah123.com/properti/hos1/",
		Name:               &name,
		Price:              &price,
		Location:           "Jakarta Selatan",
		AdditionalFeatures: []string{"KPR", "Baru"},
		AdsType:            "sale",
		PropertyType:       "house",
	}

	args := recordArgs(r)
	require.Len(t, args, len(listingColumns))
	assert.Equal(t, r.Link, args[0])
	assert.Equal(t, &name, args[1])
	assert.Equal(t, &price, args[2])
	assert.Equal(t, "Jakarta Selatan", args[3])
	assert.Equal(t, []string{"KPR", "Baru"}, args[9])
	assert.Equal(t, "sale", args[10])
	assert.Equal(t, "house", args[11])
}

// Package load writes cleaned listing records into PostgreSQL through a
// staging table and merges them into the main table in one transaction.
package load

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aditya/property-etl/internal/transform"
)

// listingColumns is the shared column set of the staging and main tables.
var listingColumns = []string{
	"link",
	"name",
	"price",
	"location",
	"lot_size",
	"building_size",
	"bedrooms",
	"bathrooms",
	"carports",
	"additional_features",
	"ads_type",
	"property_type",
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// TableSpec names the tables involved in a load. Identifiers come from
// trusted configuration, not user input.
type TableSpec struct {
	StagingTable string
	MainTable    string
	UniqueKey    string
	BatchSize    int
}

// Validate checks that the spec names every table and has a usable batch size.
func (s TableSpec) Validate() error {
	if s.StagingTable == "" {
		return fmt.Errorf("staging table must not be empty")
	}
	if s.MainTable == "" {
		return fmt.Errorf("main table must not be empty")
	}
	if s.UniqueKey == "" {
		return fmt.Errorf("unique key must not be empty")
	}
	if s.BatchSize <= 0 {
		return fmt.Errorf("batch size must be a positive integer")
	}
	return nil
}

// Report summarizes a load: how many records were newly inserted into the
// main table and how many updated existing rows.
type Report struct {
	Inserted int
	Updated  int
}

// Load runs the whole load in a single transaction: truncate the staging
// table, insert records in batches, then merge staging into main. Conflicts
// on the unique key update the existing row. Any failure rolls the whole
// load back. An empty input is a no-op.
func Load(ctx context.Context, pool *pgxpool.Pool, records []transform.CleanRecord, spec TableSpec) (*Report, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Report{}, nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+spec.StagingTable); err != nil {
		return nil, fmt.Errorf("failed to truncate %s: %w", spec.StagingTable, err)
	}

	insertStmt := insertSQL(spec.StagingTable)
	for _, chunk := range chunkRecords(records, spec.BatchSize) {
		if err := sendBatch(ctx, tx, insertStmt, chunk); err != nil {
			return nil, err
		}
	}

	report, err := merge(ctx, tx, spec)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit load: %w", err)
	}
	return report, nil
}

func sendBatch(ctx context.Context, tx pgx.Tx, stmt string, chunk []transform.CleanRecord) error {
	batch := &pgx.Batch{}
	for _, r := range chunk {
		batch.Queue(stmt, recordArgs(r)...)
	}

	br := tx.SendBatch(ctx, batch)
	for range chunk {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert into staging: %w", err)
		}
	}
	return br.Close()
}

// merge moves staging rows into the main table. `xmax = 0` is true only for
// rows the insert created, which is how inserted and updated are told apart.
func merge(ctx context.Context, tx pgx.Tx, spec TableSpec) (*Report, error) {
	rows, err := tx.Query(ctx, mergeSQL(spec))
	if err != nil {
		return nil, fmt.Errorf("failed to merge into %s: %w", spec.MainTable, err)
	}
	defer rows.Close()

	report := &Report{}
	for rows.Next() {
		var inserted bool
		if err := rows.Scan(&inserted); err != nil {
			return nil, fmt.Errorf("failed to scan merge result: %w", err)
		}
		if inserted {
			report.Inserted++
		} else {
			report.Updated++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read merge results: %w", err)
	}
	return report, nil
}

func insertSQL(table string) string {
	placeholders := make([]string, len(listingColumns))
	for i := range listingColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(listingColumns, ", "),
		strings.Join(placeholders, ", "))
}

func mergeSQL(spec TableSpec) string {
	assignments := make([]string, 0, len(listingColumns)-1)
	for _, col := range listingColumns {
		if col == spec.UniqueKey {
			continue
		}
		assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}

	cols := strings.Join(listingColumns, ", ")
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (%s) DO UPDATE SET %s RETURNING xmax = 0",
		spec.MainTable, cols, cols, spec.StagingTable, spec.UniqueKey,
		strings.Join(assignments, ", "))
}

func recordArgs(r transform.CleanRecord) []any {
	return []any{
		r.Link,
		r.Name,
		r.Price,
		r.Location,
		r.LotSize,
		r.BuildingSize,
		r.Bedrooms,
		r.Bathrooms,
		r.Carports,
		r.AdditionalFeatures,
		string(r.AdsType),
		string(r.PropertyType),
	}
}

func chunkRecords(records []transform.CleanRecord, size int) [][]transform.CleanRecord {
	chunks := make([][]transform.CleanRecord, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, records[start:end])
	}
	return chunks
}

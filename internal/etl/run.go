// Package etl provides the high-level orchestration for the property ETL process.
package etl

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/aditya/property-etl/internal/config"
	"github.com/aditya/property-etl/internal/extract"
	"github.com/aditya/property-etl/internal/load"
	"github.com/aditya/property-etl/internal/observability"
	"github.com/aditya/property-etl/internal/storage"
	"github.com/aditya/property-etl/internal/transform"
)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	AdsType      string
	PropertyType string
	NumPages     int
	BaseURL      string
	StagingTable string
	MainTable    string
	UniqueKey    string
	BatchSize    int
	RawDir       string
	ProcessedDir string
	Verbose      bool

	// KeepArtifacts skips CSV cleanup so the files can be inspected.
	KeepArtifacts bool

	// NewPipeline builds the extraction engine for one region. Regions run
	// concurrently and the rate limiter is stateful, so each region gets
	// its own. When nil a default pipeline is built from BaseURL.
	NewPipeline func() *extract.Pipeline

	// Pool is the database connection. When nil, loading is skipped and
	// the processed CSV is the final artifact.
	Pool *pgxpool.Pool
}

// RegionReport summarizes one region's run.
type RegionReport struct {
	RunID      uuid.UUID
	Region     string
	Extracted  int
	Cleaned    int
	LoadReport *load.Report
}

// artifactName mirrors the historical CSV naming so downstream consumers
// keep working: data_{region}_{propertyType}_{adsType}.
func artifactName(region config.Region, opts RunOptions) string {
	return fmt.Sprintf("data_%s_%s_%s", region.Name, opts.PropertyType, opts.AdsType)
}

// RunRegion executes the full pipeline for one region: extract, save the
// raw CSV, transform, save the processed CSV, load into PostgreSQL, then
// remove both CSVs. Cleanup runs whether or not the run succeeded.
func RunRegion(ctx context.Context, region config.Region, opts RunOptions) (report *RegionReport, err error) {
	runID := uuid.New()
	printer := observability.NewPrinter(os.Stdout)
	logf := func(format string, args ...any) {
		log.Printf("[%s %s] "+format, append([]any{region.Name, shortID(runID)}, args...)...)
	}

	var pipeline *extract.Pipeline
	if opts.NewPipeline != nil {
		pipeline = opts.NewPipeline()
	} else {
		pipeline = extract.NewPipeline(opts.BaseURL, nil, nil)
	}

	name := artifactName(region, opts)
	now := time.Now()
	var rawPath, processedPath string
	defer func() {
		if opts.KeepArtifacts {
			return
		}
		for _, path := range []string{rawPath, processedPath} {
			if path == "" {
				continue
			}
			if rmErr := storage.Remove(path); rmErr != nil {
				logf("cleanup failed: %v", rmErr)
			}
		}
	}()

	logf("extracting property data")
	result, err := pipeline.Run(ctx, extract.Request{
		AdsType:      extract.AdsType(opts.AdsType),
		Region:       region.ID,
		PropertyType: extract.PropertyType(opts.PropertyType),
		NumPages:     opts.NumPages,
		AdminAreas:   region.AdminAreas,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction failed for %s: %w", region.Name, err)
	}
	if opts.Verbose {
		printer.PrintExtractionResult(region.Name, result)
	}

	rawPath, err = storage.SaveRawCSV(opts.RawDir, name, now, result.Records)
	if err != nil {
		return nil, fmt.Errorf("failed to save raw data for %s: %w", region.Name, err)
	}
	logf("raw data saved to %s", rawPath)

	logf("transforming property data")
	cleaned := transform.Clean(result.Records)
	if opts.Verbose {
		printer.PrintTransformSummary(region.Name, len(result.Records), len(cleaned))
	}

	processedPath, err = storage.SaveCleanCSV(opts.ProcessedDir, name, now, cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to save processed data for %s: %w", region.Name, err)
	}
	logf("processed data saved to %s", processedPath)

	report = &RegionReport{
		RunID:     runID,
		Region:    region.Name,
		Extracted: len(result.Records),
		Cleaned:   len(cleaned),
	}

	if opts.Pool == nil {
		logf("no database configured, skipping load")
		return report, nil
	}

	logf("loading data into %s", opts.MainTable)
	loadReport, err := load.Load(ctx, opts.Pool, cleaned, load.TableSpec{
		StagingTable: opts.StagingTable,
		MainTable:    opts.MainTable,
		UniqueKey:    opts.UniqueKey,
		BatchSize:    opts.BatchSize,
	})
	if err != nil {
		return nil, fmt.Errorf("load failed for %s: %w", region.Name, err)
	}
	if opts.Verbose {
		printer.PrintLoadReport(region.Name, loadReport)
	}
	logf("loaded %d new rows, updated %d", loadReport.Inserted, loadReport.Updated)

	report.LoadReport = loadReport
	return report, nil
}

// RunAll fans the configured regions out concurrently. Each region runs its
// own sequential pipeline; the first failure cancels the rest.
func RunAll(ctx context.Context, regions []config.Region, opts RunOptions) ([]*RegionReport, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("no regions configured")
	}

	reports := make([]*RegionReport, len(regions))
	g, gCtx := errgroup.WithContext(ctx)

	for i, region := range regions {
		i, region := i, region
		g.Go(func() error {
			report, err := RunRegion(gCtx, region, opts)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/aditya/property-etl/internal/extract"
	"github.com/aditya/property-etl/internal/load"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintExtractionResult outputs a human-readable summary of an extraction run.
func (p *Printer) PrintExtractionResult(region string, result *extract.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Region:        %s\n", region))
	sb.WriteString(fmt.Sprintf("Pages fetched: %d\n", result.PagesFetched))
	sb.WriteString(fmt.Sprintf("Records:       %d\n", len(result.Records)))
	sb.WriteString(fmt.Sprintf("Stop reason:   %s\n", result.Reason))
	if result.StoppedEarly {
		sb.WriteString("Stopped before the requested page count\n")
	}

	if len(result.Records) > 0 {
		sb.WriteString("\nSample listings:\n")
		count := min(len(result.Records), maxItemsToShow)
		for i := 0; i < count; i++ {
			r := result.Records[i]
			name := "(unnamed)"
			if r.Name != nil {
				name = *r.Name
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", name))
		}
		if len(result.Records) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Records)-maxItemsToShow))
		}
	}

	p.printBox("EXTRACTION", sb.String())
}

// PrintTransformSummary outputs the record counts before and after cleaning.
func (p *Printer) PrintTransformSummary(region string, rawCount, cleanCount int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Region:  %s\n", region))
	sb.WriteString(fmt.Sprintf("Raw:     %d records\n", rawCount))
	sb.WriteString(fmt.Sprintf("Clean:   %d records\n", cleanCount))
	if dropped := rawCount - cleanCount; dropped > 0 {
		sb.WriteString(fmt.Sprintf("Dropped: %d (missing link or duplicate)\n", dropped))
	}

	p.printBox("TRANSFORM", sb.String())
}

// PrintLoadReport outputs how the merge into the main table went.
func (p *Printer) PrintLoadReport(region string, report *load.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Region:   %s\n", region))
	sb.WriteString(fmt.Sprintf("Inserted: %d rows\n", report.Inserted))
	sb.WriteString(fmt.Sprintf("Updated:  %d rows\n", report.Updated))

	p.printBox("LOAD", sb.String())
}

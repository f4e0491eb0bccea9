package source

import (
	"fmt"

	"github.com/theirongolddev/fehbrank/internal/model"
)

// Format is a supported dataset file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// DiscoveredFile represents a dataset file found during scanning.
type DiscoveredFile struct {
	Path   string
	Format Format
}

// RowError describes a problem with one dataset row or cell.
// Row is 1-based and counts the header row.
type RowError struct {
	File   string
	Row    int
	Column string
	Err    error
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s row %d column %s: %v", e.File, e.Row, e.Column, e.Err)
	}
	return fmt.Sprintf("%s row %d: %v", e.File, e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// ParseResult holds the output of parsing a single dataset file.
// Skipped rows produced no plan; warnings flag cells that were dropped
// while the rest of the row was kept.
type ParseResult struct {
	File     DiscoveredFile
	Plans    []model.PlanRecord
	Skipped  []RowError
	Warnings []RowError
	Err      error
}

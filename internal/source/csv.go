package source

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

// ReadCSV parses a plan dataset in CSV form. The first non-blank row is
// the header.
func ReadCSV(r io.Reader, file string) ParseResult {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow ragged rows
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return ParseResult{Err: eris.Wrapf(err, "csv: read %s", file)}
	}
	return recordsToPlans(file, records)
}

// recordsToPlans locates the header row and converts the remaining rows.
func recordsToPlans(file string, records [][]string) ParseResult {
	for i, rec := range records {
		if isBlankRow(rec) {
			continue
		}
		return rowsToPlans(file, rec, records[i+1:], i+2)
	}
	return ParseResult{}
}

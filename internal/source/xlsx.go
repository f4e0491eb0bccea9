package source

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// PlansSheet is the worksheet name used by the FEHB calculator workbook.
const PlansSheet = "Plans"

// ReadXLSX parses a plan workbook. The "Plans" sheet is used when present,
// otherwise the first sheet.
func ReadXLSX(path string) ParseResult {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return ParseResult{Err: eris.Wrap(err, "xlsx: open file")}
	}
	return readWorkbook(f, path)
}

// readXLSXBytes parses a workbook held in memory.
func readXLSXBytes(data []byte, name string) ParseResult {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return ParseResult{Err: eris.Wrap(err, "xlsx: open binary")}
	}
	return readWorkbook(f, name)
}

func readWorkbook(f *xlsx.File, name string) ParseResult {
	sheet, err := plansSheet(f)
	if err != nil {
		return ParseResult{Err: err}
	}

	records := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		records = append(records, rowToStrings(row))
	}
	return recordsToPlans(name, records)
}

func plansSheet(f *xlsx.File) (*xlsx.Sheet, error) {
	if sheet, ok := f.Sheet[PlansSheet]; ok {
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no sheets")
	}
	return f.Sheets[0], nil
}

func rowToStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

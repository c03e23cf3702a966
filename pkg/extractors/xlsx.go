package extractors

import (
	"fmt"

	"etl-extract/internal/logging"
	"etl-extract/pkg/extract"

	"github.com/xuri/excelize/v2"
)

var _ extract.Extractor[string] = (*XLSXExtractor)(nil)

// XLSXExtractor reads one worksheet of an Excel workbook. The first row is
// the header and follows the same rules as a delimited file: short rows are
// padded with Null, long rows truncated, empty cells are Null. Rows with no
// cells at all are skipped. Cell values are the formatted strings Excel
// displays.
//
// The sheet is chosen by SheetName, else SheetIndex (0-based), else the
// workbook's active sheet.
type XLSXExtractor struct {
	SheetName  string
	SheetIndex *int
}

// XLSX returns an extractor for the given sheet preferences.
func XLSX(sheetName string, sheetIndex *int) *XLSXExtractor {
	return &XLSXExtractor{SheetName: sheetName, SheetIndex: sheetIndex}
}

// Extract reads the selected sheet of the workbook at path.
func (xe *XLSXExtractor) Extract(path string) ([]extract.Record, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}
	logging.Logf(logging.Debug, "XLSXExtractor reading file: %s (SheetName: '%s', SheetIndex: %v)", path, xe.SheetName, xe.SheetIndex)

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, extract.NewIOError(path, "open", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Logf(logging.Error, "XLSXExtractor failed to close file '%s': %v", path, err)
		}
	}()

	sheet, err := xe.selectSheet(f)
	if err != nil {
		return nil, extract.NewIOError(path, "sheet", err)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, extract.NewIOError(path, "parse", fmt.Errorf("sheet '%s': %w", sheet, err))
	}

	// GetRows yields leading empty rows as zero-length slices.
	for len(rows) > 0 && len(rows[0]) == 0 {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, extract.NewIOError(path, "header", fmt.Errorf("sheet '%s': %w", sheet, extract.ErrNoHeader))
	}
	header, err := extract.NewHeader(rows[0])
	if err != nil {
		return nil, extract.NewIOError(path, "header", fmt.Errorf("sheet '%s': %w", sheet, err))
	}

	records := make([]extract.Record, 0, len(rows)-1)
	values := make([]extract.Value, header.Len())
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		for i := range values {
			values[i] = extract.Null()
			if i < len(row) && row[i] != "" {
				values[i] = extract.Text(row[i])
			}
		}
		records = append(records, header.Record(values))
	}

	logging.Logf(logging.Debug, "XLSXExtractor loaded %d records from sheet '%s' of %s", len(records), sheet, path)
	return records, nil
}

// selectSheet resolves the sheet preferences against the workbook.
func (xe *XLSXExtractor) selectSheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook contains no sheets")
	}

	switch {
	case xe.SheetName != "":
		for _, name := range sheets {
			if name == xe.SheetName {
				logging.Logf(logging.Debug, "XLSXExtractor: Using specified sheet name '%s'", name)
				return name, nil
			}
		}
		return "", fmt.Errorf("specified sheet name '%s' not found", xe.SheetName)
	case xe.SheetIndex != nil:
		idx := *xe.SheetIndex
		if idx < 0 || idx >= len(sheets) {
			return "", fmt.Errorf("specified sheet index %d is out of bounds (0 to %d)", idx, len(sheets)-1)
		}
		logging.Logf(logging.Debug, "XLSXExtractor: Using specified sheet index %d ('%s')", idx, sheets[idx])
		return sheets[idx], nil
	default:
		active := f.GetActiveSheetIndex()
		if name := f.GetSheetName(active); name != "" {
			logging.Logf(logging.Debug, "XLSXExtractor: Using active sheet '%s' (index %d) as default", name, active)
			return name, nil
		}
		logging.Logf(logging.Debug, "XLSXExtractor: Using first sheet '%s' as default", sheets[0])
		return sheets[0], nil
	}
}

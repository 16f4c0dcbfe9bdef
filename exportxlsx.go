package echogrid

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readXLSXTable parses a single-sheet workbook export. The analysis tool
// writes the same header and rows as the CSV export, one sheet per file.
func (f *exportFile) readXLSXTable() (*table, error) {
	var wb *excelize.File

	if f.compression != CompressionNone {
		// excelize needs random access, so read compressed files into memory
		reader, closer, err := f.openReader()
		if err != nil {
			return nil, err
		}
		defer closer()

		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, err
		}
		wb, err = excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		wb, err = excelize.OpenFile(f.path)
		if err != nil {
			return nil, err
		}
	}
	defer func() {
		_ = wb.Close() // Ignore close error
	}()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets in %s", ErrMissingHeader, f.path)
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("echogrid: failed to read sheet %s of %s: %w", sheets[0], f.path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingHeader, f.path)
	}
	if len(rows) == 1 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, f.path)
	}

	return newTable(f.path, parseHeaderFields(rows[0]), strings.Join(rows[0], ","), toRecords(rows[1:])), nil
}

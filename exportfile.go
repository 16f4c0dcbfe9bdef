package echogrid

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Export file extensions.
const (
	extCSV  = ".csv"
	extXLSX = ".xlsx"
)

// utf8BOM is the byte-order mark some exports prepend to the header line.
const utf8BOM = "\ufeff"

// exportFile represents one (worksheet, channel, source-kind) export on disk.
type exportFile struct {
	path        string
	compression CompressionType
}

// newExportFile creates a new exportFile.
func newExportFile(path string) *exportFile {
	return &exportFile{
		path:        path,
		compression: detectCompression(path),
	}
}

// isXLSX returns true if the export is a single-sheet workbook rather
// than a CSV.
func (f *exportFile) isXLSX() bool {
	base := strings.TrimSuffix(strings.ToLower(f.path), f.compression.Extension())
	return strings.HasSuffix(base, extXLSX)
}

// resolveExport locates the export file named by the template expansion,
// probing compressed and workbook variants of the CSV name. Returns the
// empty string when no variant exists.
func resolveExport(path string) string {
	compExts := []string{extGZ, extBZ2, extXZ, extZSTD}
	candidates := []string{path}
	for _, ext := range compExts {
		candidates = append(candidates, path+ext)
	}
	if strings.HasSuffix(strings.ToLower(path), extCSV) {
		xlsx := path[:len(path)-len(extCSV)] + extXLSX
		candidates = append(candidates, xlsx)
		for _, ext := range compExts {
			candidates = append(candidates, xlsx+ext)
		}
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

// openReader opens the file and returns a reader that handles compression.
func (f *exportFile) openReader() (io.Reader, func() error, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, nil, err
	}

	reader, closeComp, err := f.compression.newCompressionReader(file)
	if err != nil {
		_ = file.Close() // Ignore close error during error handling
		return nil, nil, err
	}
	closer := func() error {
		_ = closeComp() // Ignore decompressor close error in cleanup
		return file.Close()
	}
	return reader, closer, nil
}

// readTable parses the export into a table. The first line is the header;
// it may be byte-order-marked and may quote field names.
func (f *exportFile) readTable() (*table, error) {
	if f.isXLSX() {
		return f.readXLSXTable()
	}

	reader, closer, err := f.openReader()
	if err != nil {
		return nil, err
	}
	defer closer()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	content = bytes.TrimPrefix(content, []byte(utf8BOM))

	csvReader := csv.NewReader(bytes.NewReader(content))
	csvReader.FieldsPerRecord = -1 // short rows are handled during decode
	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("echogrid: failed to parse %s: %w", f.path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingHeader, f.path)
	}
	if len(rows) == 1 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, f.path)
	}

	signature, _, _ := strings.Cut(string(content), "\n")
	signature = strings.TrimRight(signature, "\r")

	return newTable(f.path, parseHeaderFields(rows[0]), signature, toRecords(rows[1:])), nil
}

// toRecords converts raw CSV rows to records.
func toRecords(rows [][]string) []record {
	records := make([]record, 0, len(rows))
	for _, row := range rows {
		records = append(records, newRecord(row))
	}
	return records
}

// parseHeaderFields normalizes header field names.
func parseHeaderFields(fields []string) header {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.TrimSpace(strings.TrimPrefix(f, utf8BOM)))
	}
	return newHeader(out)
}

package echogrid

// header is the parsed column-name line of one export table.
type header []string

// newHeader create new header.
func newHeader(h []string) header {
	return header(h)
}

// equal compare header.
func (h header) equal(h2 header) bool {
	if len(h) != len(h2) {
		return false
	}
	for i, v := range h {
		if v != h2[i] {
			return false
		}
	}
	return true
}

// record is one raw data row of an export table.
type record []string

// newRecord create new record.
func newRecord(r []string) record {
	return record(r)
}

// table holds one export file's contents before decoding.
type table struct {
	// name is the path the table was read from.
	name string
	// header is the column-name line.
	header header
	// signature is the raw header line used for change detection.
	signature string
	// records is the data rows.
	records []record
}

// newTable create new table.
func newTable(name string, header header, signature string, records []record) *table {
	return &table{
		name:      name,
		header:    header,
		signature: signature,
		records:   records,
	}
}

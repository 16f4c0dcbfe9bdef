package echogrid

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// noDataDB is the in-band sentinel the analysis application writes for
// decibel cells it could not resolve. A raw value of exactly 0 means the
// same thing and is mapped onto this sentinel before range checking.
const noDataDB = 9999

// maxValidDB is the largest decibel value treated as a real observation.
const maxValidDB = 999

// decodeDB converts a raw decibel field to linear scale. Zero and
// sentinel values decode to NaN, the grid's no-data marker.
func decodeDB(v float64) float64 {
	if v == 0 {
		v = noDataDB
	}
	if v > maxValidDB || math.IsNaN(v) {
		return math.NaN()
	}
	return math.Pow(10, v/10)
}

// decodeDBLevel applies the sentinel handling of decodeDB but keeps the
// value in decibels. Used for the noise and signal-to-noise exports,
// which the grid carries as levels rather than linear backscatter.
func decodeDBLevel(v float64) float64 {
	if v == 0 {
		v = noDataDB
	}
	if v > maxValidDB || math.IsNaN(v) {
		return math.NaN()
	}
	return v
}

// sourceMeta is the originating file name and analysis-tool version the
// Clean and Raw exports carry on their first data row.
type sourceMeta struct {
	fileName string
	version  string
}

// cleanRow is one decoded row of the filtered Sv export.
type cleanRow struct {
	interval int // one-based
	layer    int
	ts       time.Time
	lat, lon float64
	height   float64
	depth    float64
	// layMin/layMax are the explicit layer bounds when exported,
	// NaN otherwise.
	layMin, layMax float64
	sv             float64 // linear
	sd, skew, kurt float64
}

// rawRow is one decoded row of the unfiltered reference export.
type rawRow struct {
	interval       int
	layer          int
	sv             float64 // linear
	samples        int
	sd, skew, kurt float64
}

// rejectRow is one decoded row of the sample-rejection export.
type rejectRow struct {
	interval int
	layer    int
	samples  int
}

// valueRow is one decoded row of a single-value layer-resolved export
// (signal-to-noise, motion correction).
type valueRow struct {
	interval int
	layer    int
	value    float64
}

// noiseRow is one decoded row of the background-noise export, resolved
// per interval only.
type noiseRow struct {
	interval int
	value    float64
}

// parseFloat parses a numeric field; empty or malformed fields are NaN.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// parseCount parses a sample-count field; empty or malformed fields are 0.
func parseCount(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// parseKey parses the interval and layer fields. Rows whose key fields
// are non-numeric are repeated-header or sentinel artifacts; ok is false
// for those. Intervals are zero-based in source data and normalized to
// one-based here. Layer 0 rows are parser artifacts and are dropped.
func parseKey(cm *columnMap, row record) (interval, layer int, ok bool) {
	iv, err := strconv.Atoi(strings.TrimSpace(cm.field(row, colInterval)))
	if err != nil {
		return 0, 0, false
	}
	layer = 0
	if cm.has(colLayer) {
		layer, err = strconv.Atoi(strings.TrimSpace(cm.field(row, colLayer)))
		if err != nil || layer == 0 {
			return 0, 0, false
		}
	}
	return iv + 1, layer, true
}

// Timestamp layouts the analysis application has been observed to write.
var exportTimeLayouts = []string{
	"20060102 15:04:05.0000",
	"20060102 15:04:05",
	"20060102 15:04",
}

// parseTimestamp combines the Date_M and Time_M fields.
func parseTimestamp(date, clock string) time.Time {
	s := strings.TrimSpace(date) + " " + strings.TrimSpace(clock)
	for _, layout := range exportTimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

// decodeClean decodes the filtered Sv export. The originating file name
// and tool version come from the first data row only.
func decodeClean(tbl *table, cm *columnMap, extended bool) ([]cleanRow, sourceMeta) {
	var meta sourceMeta
	if len(tbl.records) > 0 {
		meta.fileName = strings.TrimSpace(cm.field(tbl.records[0], colEVFilename))
		meta.version = strings.TrimSpace(cm.field(tbl.records[0], colProgramVersion))
	}

	rows := make([]cleanRow, 0, len(tbl.records))
	for _, rec := range tbl.records {
		interval, layer, ok := parseKey(cm, rec)
		if !ok {
			continue
		}
		r := cleanRow{
			interval: interval,
			layer:    layer,
			ts:       parseTimestamp(cm.field(rec, colDateM), cm.field(rec, colTimeM)),
			lat:      parseFloat(cm.field(rec, colLatM)),
			lon:      parseFloat(cm.field(rec, colLonM)),
			height:   parseFloat(cm.field(rec, colHeightMean)),
			depth:    parseFloat(cm.field(rec, colDepthMean)),
			layMin:   math.NaN(),
			layMax:   math.NaN(),
			sv:       decodeDB(parseFloat(cm.field(rec, colSvMean))),
		}
		if cm.has(colLayerDepthMin) && cm.has(colLayerDepthMax) {
			r.layMin = parseFloat(cm.field(rec, colLayerDepthMin))
			r.layMax = parseFloat(cm.field(rec, colLayerDepthMax))
		}
		if extended {
			r.sd = parseFloat(cm.field(rec, colStandardDeviation))
			r.skew = parseFloat(cm.field(rec, colSkewness))
			r.kurt = parseFloat(cm.field(rec, colKurtosis))
		}
		rows = append(rows, r)
	}
	return rows, meta
}

// decodeRaw decodes the unfiltered reference export.
func decodeRaw(tbl *table, cm *columnMap, extended bool) ([]rawRow, sourceMeta) {
	var meta sourceMeta
	if len(tbl.records) > 0 {
		meta.fileName = strings.TrimSpace(cm.field(tbl.records[0], colEVFilename))
		meta.version = strings.TrimSpace(cm.field(tbl.records[0], colProgramVersion))
	}

	rows := make([]rawRow, 0, len(tbl.records))
	for _, rec := range tbl.records {
		interval, layer, ok := parseKey(cm, rec)
		if !ok {
			continue
		}
		r := rawRow{
			interval: interval,
			layer:    layer,
			sv:       decodeDB(parseFloat(cm.field(rec, colSvMean))),
			samples:  parseCount(cm.field(rec, colSampleCount)),
		}
		if extended {
			r.sd = parseFloat(cm.field(rec, colStandardDeviation))
			r.skew = parseFloat(cm.field(rec, colSkewness))
			r.kurt = parseFloat(cm.field(rec, colKurtosis))
		}
		rows = append(rows, r)
	}
	return rows, meta
}

// decodeReject decodes the sample-rejection export.
func decodeReject(tbl *table, cm *columnMap) []rejectRow {
	rows := make([]rejectRow, 0, len(tbl.records))
	for _, rec := range tbl.records {
		interval, layer, ok := parseKey(cm, rec)
		if !ok {
			continue
		}
		rows = append(rows, rejectRow{
			interval: interval,
			layer:    layer,
			samples:  parseCount(cm.field(rec, colSampleCount)),
		})
	}
	return rows
}

// decodeValues decodes a single-value layer-resolved export. The column
// name selects the payload field.
func decodeValues(tbl *table, cm *columnMap, column string, db bool) []valueRow {
	rows := make([]valueRow, 0, len(tbl.records))
	for _, rec := range tbl.records {
		interval, layer, ok := parseKey(cm, rec)
		if !ok {
			continue
		}
		v := parseFloat(cm.field(rec, column))
		if db {
			v = decodeDBLevel(v)
		}
		rows = append(rows, valueRow{interval: interval, layer: layer, value: v})
	}
	return rows
}

// decodeNoise decodes the background-noise export. The export is not
// layer-resolved; the first row seen per interval wins.
func decodeNoise(tbl *table, cm *columnMap) []noiseRow {
	seen := make(map[int]bool)
	rows := make([]noiseRow, 0, len(tbl.records))
	for _, rec := range tbl.records {
		iv, err := strconv.Atoi(strings.TrimSpace(cm.field(rec, colInterval)))
		if err != nil {
			continue
		}
		interval := iv + 1
		if seen[interval] {
			continue
		}
		seen[interval] = true
		rows = append(rows, noiseRow{
			interval: interval,
			value:    decodeDBLevel(parseFloat(cm.field(rec, colNoiseSv))),
		})
	}
	return rows
}

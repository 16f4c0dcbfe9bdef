package echogrid

import "strings"

// Logical column names as the analysis application writes them.
const (
	colInterval          = "Interval"
	colLayer             = "Layer"
	colSvMean            = "Sv_mean"
	colHeightMean        = "Height_mean"
	colDepthMean         = "Depth_mean"
	colLayerDepthMin     = "Layer_depth_min"
	colLayerDepthMax     = "Layer_depth_max"
	colLatM              = "Lat_M"
	colLonM              = "Lon_M"
	colDateM             = "Date_M"
	colTimeM             = "Time_M"
	colProgramVersion    = "Program_version"
	colEVFilename        = "EV_filename"
	colStandardDeviation = "Standard_deviation"
	colSkewness          = "Skewness"
	colKurtosis          = "Kurtosis"
	colSampleCount       = "Sample_count"
	colSignalNoise       = "Signal_noise"
	colNoiseSv           = "Noise_Sv"
	colMotionCorrection  = "Motion_correction"
)

// requiredColumns returns the columns that must be present for a source
// kind. Extended mode additionally requires the higher-moment statistics
// of both Sv exports.
func requiredColumns(kind SourceKind, extended bool) []string {
	var cols []string
	switch kind {
	case SourceClean:
		cols = []string{
			colInterval, colLayer, colSvMean, colHeightMean, colDepthMean,
			colLatM, colLonM, colDateM, colTimeM,
			colProgramVersion, colEVFilename,
		}
	case SourceRaw:
		cols = []string{colInterval, colLayer, colSvMean, colSampleCount,
			colProgramVersion, colEVFilename}
	case SourceRejectCount:
		cols = []string{colInterval, colLayer, colSampleCount}
	case SourceSignalNoise:
		cols = []string{colInterval, colLayer, colSignalNoise}
	case SourceBackground:
		cols = []string{colInterval, colNoiseSv}
	case SourceMotionCorrection:
		cols = []string{colInterval, colLayer, colMotionCorrection}
	}
	if extended && (kind == SourceClean || kind == SourceRaw) {
		cols = append(cols, colStandardDeviation, colSkewness, colKurtosis)
	}
	return cols
}

// optionalColumns returns columns used when present but never required.
func optionalColumns(kind SourceKind) []string {
	switch kind {
	case SourceClean:
		return []string{colLayerDepthMin, colLayerDepthMax}
	case SourceBackground:
		return []string{colLayer}
	default:
		return nil
	}
}

// columnMap is the result of parsing one export header: named-column
// positions plus a skip-and-keep scan plan for the decoder.
type columnMap struct {
	kind      SourceKind
	signature string
	// pos maps logical column name to physical position.
	pos map[string]int
	// keep marks the physical positions the decoder parses. Everything
	// else is skipped.
	keep []bool
}

// mapColumns builds the column map for one export header. A missing
// mandatory column is fatal and names the offending file and column.
func mapColumns(file string, kind SourceKind, hdr header, signature string, extended bool) (*columnMap, error) {
	byName := make(map[string]int, len(hdr))
	for i, name := range hdr {
		byName[strings.ToLower(name)] = i
	}

	cm := &columnMap{
		kind:      kind,
		signature: signature,
		pos:       make(map[string]int),
		keep:      make([]bool, len(hdr)),
	}

	for _, name := range requiredColumns(kind, extended) {
		i, ok := byName[strings.ToLower(name)]
		if !ok {
			return nil, &MissingColumnError{File: file, Column: name}
		}
		cm.pos[name] = i
		cm.keep[i] = true
	}
	for _, name := range optionalColumns(kind) {
		if i, ok := byName[strings.ToLower(name)]; ok {
			cm.pos[name] = i
			cm.keep[i] = true
		}
	}
	return cm, nil
}

// has reports whether an optional column was present in the header.
func (cm *columnMap) has(name string) bool {
	_, ok := cm.pos[name]
	return ok
}

// field returns the raw field for a mapped column, or the empty string
// when the row is too short.
func (cm *columnMap) field(row record, name string) string {
	i, ok := cm.pos[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

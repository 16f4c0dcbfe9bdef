package echogrid

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// Merger is the echo-integration merge engine. It owns the accumulated
// SurveyGrid for the duration of a run: one worksheet is fully processed
// (all channels, all sources) before the next worksheet's stitching step
// examines the accumulated state. The engine is synchronous and fails
// fast on malformed input.
//
// Per worksheet the engine moves through OpenHeader, DecodeRows,
// JoinChannel (once per channel), GrowGrid and StitchIntoAccumulation;
// Finalize is the terminal step and runs exactly once.
type Merger struct {
	cfg    Config
	logger *zap.Logger

	grid        *SurveyGrid
	warnings    []Warning
	headerCache [sourceKindCount]*columnMap
	report      Report
	done        bool
}

// Option configures a Merger.
type Option func(*Merger)

// WithLogger emits warnings and progress through the given logger in
// addition to collecting them on the merger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Merger) {
		m.logger = logger
	}
}

// NewMerger creates a merge engine for the given configuration.
func NewMerger(cfg Config, opts ...Option) (*Merger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Merger{
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	m.report.WarningCounts = make(map[WarningCategory]int)
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// warn records a recoverable condition and keeps going.
func (m *Merger) warn(w Warning) {
	m.warnings = append(m.warnings, w)
	m.report.WarningCounts[w.Category]++
	m.logger.Warn(w.Message,
		zap.String("category", w.Category.String()),
		zap.String("file", w.File),
		zap.String("channel", w.Channel),
	)
}

// Warnings returns every warning collected so far, in emission order.
func (m *Merger) Warnings() []Warning {
	return append([]Warning(nil), m.warnings...)
}

// ProcessWorksheet ingests one worksheet's export set from dir: all six
// sources of every configured channel, joined and stitched onto the
// accumulated timeline. Worksheets must be processed in survey order.
func (m *Merger) ProcessWorksheet(dir, worksheet string) error {
	if m.done {
		return ErrFinalized
	}

	fg := newSurveyGrid(m.cfg)
	var ix intervalIndex
	haveExtent := false

	for ci, ch := range m.cfg.Channels {
		tables, cleanPath, err := m.loadChannel(dir, worksheet, ch)
		if err != nil {
			return err
		}
		m.report.RowsDecoded += len(tables.clean)

		if !haveExtent {
			// The first channel with data defines the worksheet's
			// TIME extent; later channels may only grow it.
			ix, haveExtent = newIntervalIndex(tables.clean)
			if !haveExtent {
				continue
			}
			fg.growDim(DimTime, ix.len())
		}

		ident := tables.meta.fileName
		if ident == "" {
			ident = worksheet
		}
		fileIdx := fg.internFile(ident)
		verIdx := fg.internVersion(tables.meta.version)

		if err := m.mergeChannel(fg, &ix, ci, tables, fileIdx, verIdx, cleanPath); err != nil {
			return err
		}
		m.report.ChannelsProcessed++
	}

	if haveExtent {
		fillIntervals(fg, ix)
	}
	m.report.FilesProcessed++
	m.logger.Info("worksheet merged",
		zap.String("worksheet", worksheet),
		zap.Int("intervals", len(fg.times)),
		zap.Int("layers", len(fg.depths)),
	)
	return m.stitch(fg, worksheet)
}

// loadChannel reads, maps and decodes the six export tables of one
// channel. The Clean export's path is returned for warning attribution.
func (m *Merger) loadChannel(dir, worksheet string, ch ChannelConfig) (*channelTables, string, error) {
	tables := &channelTables{}
	var cleanPath string
	var cleanSig, rawSig string

	for _, kind := range sourceKinds {
		name := m.cfg.exportName(worksheet, ch, kind)
		path := resolveExport(filepath.Join(dir, name))
		if path == "" {
			if kind.mandatory() {
				return nil, "", fmt.Errorf("%w: %s", ErrMissingFile, filepath.Join(dir, name))
			}
			continue
		}

		tbl, err := newExportFile(path).readTable()
		if err != nil {
			return nil, "", err
		}

		cm, err := m.mapHeader(kind, tbl, ch.Name)
		if err != nil {
			return nil, "", err
		}

		switch kind {
		case SourceClean:
			cleanPath = path
			cleanSig = tbl.signature
			tables.clean, tables.meta = decodeClean(tbl, cm, m.cfg.Extended)
		case SourceRaw:
			rawSig = tbl.signature
			var rawMeta sourceMeta
			tables.raw, rawMeta = decodeRaw(tbl, cm, m.cfg.Extended)
			if tables.meta.version == "" {
				tables.meta.version = rawMeta.version
			}
		case SourceRejectCount:
			tables.reject = decodeReject(tbl, cm)
		case SourceSignalNoise:
			tables.snr = decodeValues(tbl, cm, colSignalNoise, true)
		case SourceBackground:
			tables.noise = decodeNoise(tbl, cm)
		case SourceMotionCorrection:
			tables.motion = decodeValues(tbl, cm, colMotionCorrection, false)
		}
	}

	if len(tables.clean) == 0 {
		return nil, "", fmt.Errorf("%w: %s contains no decodable rows", ErrEmptyFile, cleanPath)
	}
	if cleanSig != rawSig {
		m.warn(Warning{
			Category: WarnHeaderMismatch,
			File:     cleanPath,
			Channel:  ch.Name,
			Message:  "clean and raw exports disagree on header layout",
		})
	}
	return tables, cleanPath, nil
}

// mapHeader returns the column map for an export, reusing the cached map
// when the header signature is unchanged from the previous worksheet.
func (m *Merger) mapHeader(kind SourceKind, tbl *table, channel string) (*columnMap, error) {
	if cached := m.headerCache[kind]; cached != nil {
		if cached.signature == tbl.signature {
			return cached, nil
		}
		m.warn(Warning{
			Category: WarnHeaderMismatch,
			File:     tbl.name,
			Channel:  channel,
			Message:  fmt.Sprintf("%s export header changed from previous worksheet", kind),
		})
	}
	cm, err := mapColumns(tbl.name, kind, tbl.header, tbl.signature, m.cfg.Extended)
	if err != nil {
		return nil, err
	}
	m.headerCache[kind] = cm
	return cm, nil
}

// Finalize runs the finalization pass exactly once and returns the grid,
// now read-only: depth pruning, dimension collapse, quality flagging and
// bounds computation.
func (m *Merger) Finalize() (*SurveyGrid, error) {
	if m.done {
		return nil, ErrFinalized
	}
	if m.grid == nil || len(m.grid.times) == 0 {
		return nil, ErrNoPositionData
	}
	if err := finalizeGrid(m.grid, m.cfg, &m.report); err != nil {
		return nil, err
	}
	m.done = true
	m.logger.Info("grid finalized",
		zap.Int("intervals", len(m.grid.times)),
		zap.Int("layers", len(m.grid.depths)),
		zap.Int("cells_written", m.report.CellsWritten),
		zap.Int("cells_dropped", m.report.CellsDropped),
	)
	return m.grid, nil
}

// Report returns the ingest statistics collected so far. MeanSv is only
// populated after Finalize.
func (m *Merger) Report() Report {
	rep := m.report
	rep.WarningCounts = make(map[WarningCategory]int, len(m.report.WarningCounts))
	for k, v := range m.report.WarningCounts {
		rep.WarningCounts[k] = v
	}
	return rep
}

package echogrid

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
)

// OutputFormat represents the grid dump file format.
type OutputFormat int

const (
	// OutputFormatCSV represents CSV output format
	OutputFormatCSV OutputFormat = iota
	// OutputFormatTSV represents TSV output format
	OutputFormatTSV
	// OutputFormatParquet represents Parquet output format
	OutputFormatParquet
)

// String returns the string representation of OutputFormat.
func (f OutputFormat) String() string {
	switch f {
	case OutputFormatTSV:
		return "tsv"
	case OutputFormatParquet:
		return "parquet"
	default:
		return "csv"
	}
}

// Extension returns the file extension for the format.
func (f OutputFormat) Extension() string {
	switch f {
	case OutputFormatTSV:
		return ".tsv"
	case OutputFormatParquet:
		return ".parquet"
	default:
		return ".csv"
	}
}

// DumpOptions represents options for dumping a finalized grid.
type DumpOptions struct {
	format      OutputFormat
	compression CompressionType
}

// NewDumpOptions creates new DumpOptions with default values (CSV format,
// no compression).
func NewDumpOptions() DumpOptions {
	return DumpOptions{
		format:      OutputFormatCSV,
		compression: CompressionNone,
	}
}

// WithFormat returns a copy of the options with the given output format.
func (o DumpOptions) WithFormat(format OutputFormat) DumpOptions {
	o.format = format
	return o
}

// WithCompression returns a copy of the options with the given compression.
func (o DumpOptions) WithCompression(compression CompressionType) DumpOptions {
	o.compression = compression
	return o
}

// FileExtension returns the combined format and compression extension.
func (o DumpOptions) FileExtension() string {
	return o.format.Extension() + o.compression.Extension()
}

// dumpCol kinds.
type colKind int

const (
	colKindString colKind = iota
	colKindInt
	colKindFloat
)

type dumpCol struct {
	name string
	kind colKind
}

// dumpFrame is one long-form output table of the grid dump.
type dumpFrame struct {
	name string
	cols []dumpCol
	rows [][]any
}

// DumpGrid writes a finalized grid as long-form tables in outputDir:
// cells, position and noise. This is an auxiliary interchange dump; the
// self-describing scientific output format is produced by the downstream
// writer, not here.
func DumpGrid(g *SurveyGrid, outputDir string, opts ...DumpOptions) error {
	if !g.Finalized() {
		return ErrNotFinalized
	}
	options := NewDumpOptions()
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.format == OutputFormatParquet && options.compression != CompressionNone {
		return errors.New("echogrid: parquet output does not support external compression")
	}
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return fmt.Errorf("echogrid: failed to create output directory: %w", err)
	}

	for _, frame := range buildDumpFrames(g) {
		path := filepath.Join(outputDir, frame.name+options.FileExtension())
		if err := writeFrame(frame, path, options); err != nil {
			return err
		}
	}
	return nil
}

// buildDumpFrames flattens the grid into its long-form tables. Cells
// never populated by any source are omitted.
func buildDumpFrames(g *SurveyGrid) []*dumpFrame {
	cells := &dumpFrame{
		name: "cells",
		cols: []dumpCol{
			{"time", colKindString}, {"interval", colKindInt},
			{"depth", colKindFloat}, {"channel", colKindString},
			{"sv", colKindFloat}, {"sv_unfiltered", colKindFloat},
			{"percent_good", colKindFloat}, {"signal_to_noise", colKindFloat},
			{"motion_correction", colKindFloat}, {"quality", colKindInt},
		},
	}
	position := &dumpFrame{
		name: "position",
		cols: []dumpCol{
			{"time", colKindString}, {"interval", colKindInt},
			{"latitude", colKindFloat}, {"longitude", colKindFloat},
		},
	}
	noise := &dumpFrame{
		name: "noise",
		cols: []dumpCol{
			{"time", colKindString}, {"interval", colKindInt},
			{"channel", colKindString}, {"background_noise", colKindFloat},
		},
	}

	channels := len(g.Channels())
	if g.ChannelAttr() != nil {
		channels = 1
	}

	for t, ts := range g.Times() {
		interval := int64(g.Intervals()[t])
		stamp := timestampText(ts)

		lat := g.At(VarLatitude, t)
		lon := g.At(VarLongitude, t)
		if !math.IsNaN(lat) || !math.IsNaN(lon) {
			position.rows = append(position.rows, []any{stamp, interval, lat, lon})
		}

		for c := 0; c < channels; c++ {
			if v := g.CellValue(VarBackgroundNoise, t, 0, c); !math.IsNaN(v) {
				noise.rows = append(noise.rows, []any{stamp, interval, g.ChannelName(c), v})
			}
			for d := range g.Depths() {
				sv := g.CellValue(VarSv, t, d, c)
				pg := g.CellValue(VarPercentGood, t, d, c)
				if math.IsNaN(sv) && math.IsNaN(pg) {
					continue
				}
				cells.rows = append(cells.rows, []any{
					stamp, interval, g.Depths()[d], g.ChannelName(c),
					sv,
					g.CellValue(VarSvUnfiltered, t, d, c),
					pg,
					g.CellValue(VarSignalNoise, t, d, c),
					g.CellValue(VarMotionCorrection, t, d, c),
					int64(g.CellValue(VarQualityFlag, t, d, c)),
				})
			}
		}
	}
	return []*dumpFrame{cells, position, noise}
}

// writeFrame writes one frame in the requested format.
func writeFrame(frame *dumpFrame, path string, options DumpOptions) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("echogrid: failed to create %s: %w", path, err)
	}
	defer out.Close()

	if options.format == OutputFormatParquet {
		return writeFrameParquet(frame, out)
	}

	writer, closeComp, err := options.compression.newCompressionWriter(out)
	if err != nil {
		return err
	}

	csvWriter := csv.NewWriter(writer)
	if options.format == OutputFormatTSV {
		csvWriter.Comma = '\t'
	}

	headerRow := make([]string, len(frame.cols))
	for i, c := range frame.cols {
		headerRow[i] = c.name
	}
	if err := csvWriter.Write(headerRow); err != nil {
		return err
	}
	row := make([]string, len(frame.cols))
	for _, values := range frame.rows {
		for i, v := range values {
			row[i] = formatDumpValue(v)
		}
		if err := csvWriter.Write(row); err != nil {
			return err
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return err
	}
	return closeComp()
}

// formatDumpValue renders one dump value; no-data becomes an empty field.
func formatDumpValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		if math.IsNaN(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// writeFrameParquet writes one frame through the Arrow Parquet writer.
// No-data cells become Parquet nulls.
func writeFrameParquet(frame *dumpFrame, out *os.File) error {
	fields := make([]arrow.Field, len(frame.cols))
	for i, c := range frame.cols {
		var typ arrow.DataType
		switch c.kind {
		case colKindInt:
			typ = arrow.PrimitiveTypes.Int64
		case colKindFloat:
			typ = arrow.PrimitiveTypes.Float64
		default:
			typ = arrow.BinaryTypes.String
		}
		fields[i] = arrow.Field{Name: c.name, Type: typ, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	for _, values := range frame.rows {
		for i, v := range values {
			switch frame.cols[i].kind {
			case colKindInt:
				builder.Field(i).(*array.Int64Builder).Append(v.(int64))
			case colKindFloat:
				f := v.(float64)
				if math.IsNaN(f) {
					builder.Field(i).AppendNull()
				} else {
					builder.Field(i).(*array.Float64Builder).Append(f)
				}
			default:
				builder.Field(i).(*array.StringBuilder).Append(v.(string))
			}
		}
	}

	rec := builder.NewRecord()
	defer rec.Release()
	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	rows := int64(len(frame.rows))
	if rows == 0 {
		rows = 1
	}
	return pqarrow.WriteTable(tbl, out, rows, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
}

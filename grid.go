package echogrid

import (
	"math"
	"time"
)

// Dim identifies a SurveyGrid dimension a variable can vary over.
type Dim int

const (
	// DimTime is the survey-interval timeline, strictly increasing.
	DimTime Dim = iota
	// DimDepth is the layer-midpoint depth axis, increasing.
	DimDepth
	// DimChannel is the set of frequency channels, fixed at
	// configuration time.
	DimChannel
)

// Grid variable names.
const (
	VarLatitude         = "latitude"
	VarLongitude        = "longitude"
	VarMeanHeight       = "mean_height"
	VarMeanDepth        = "mean_depth"
	VarSv               = "Sv"
	VarSvUnfiltered     = "Sv_unfiltered"
	VarPercentGood      = "Sv_percent_good"
	VarSvSD             = "Sv_sd"
	VarSvSkew           = "Sv_skew"
	VarSvKurt           = "Sv_kurt"
	VarSvUnfilteredSD   = "Sv_unfiltered_sd"
	VarSvUnfilteredSkew = "Sv_unfiltered_skew"
	VarSvUnfilteredKurt = "Sv_unfiltered_kurt"
	VarSignalNoise      = "signal_to_noise"
	VarBackgroundNoise  = "background_noise"
	VarMotionCorrection = "motion_correction_factor"
	VarQualityFlag      = "quality_flag"
)

// Quality flag values, following the convention that 0 means no quality
// control has been performed yet and 1 means the cell passed.
const (
	FlagNotQualityControlled = 0
	FlagGood                 = 1
)

// Variable is one named array of the grid. Its data is laid out
// row-major over its declared dimensions, DimTime slowest.
type Variable struct {
	Name string
	Dims []Dim
	// Data holds the array. Treat as read-only outside this package.
	Data []float64
}

// hasDim reports whether the variable varies over d.
func (v *Variable) hasDim(d Dim) bool {
	for _, dim := range v.Dims {
		if dim == d {
			return true
		}
	}
	return false
}

// SurveyGrid is the assembled output: three dimensions and a set of
// variables whose shapes always equal the cross-product of their declared
// dimensions' current lengths. It is exclusively owned and mutated by the
// merge engine during a run and handed read-only to consumers after
// finalization.
type SurveyGrid struct {
	times     []time.Time
	intervals []int // original absolute interval per TIME position
	depths    []float64
	channels  []ChannelConfig

	sourceFiles    []string
	sourceVersions []string
	fileIndex      []int // per TIME position
	versionIndex   []int

	vars  map[string]*Variable
	order []string

	finalized   bool
	channelAttr *ChannelConfig
	versionAttr string
	bounds      *Bounds
}

// newSurveyGrid creates an empty grid with the variable set the
// configuration calls for.
func newSurveyGrid(cfg Config) *SurveyGrid {
	g := &SurveyGrid{
		channels: append([]ChannelConfig(nil), cfg.Channels...),
		vars:     make(map[string]*Variable),
	}

	timeDims := []Dim{DimTime}
	cellDims := []Dim{DimTime, DimDepth, DimChannel}
	chanDims := []Dim{DimTime, DimChannel}

	g.addVar(VarLatitude, timeDims)
	g.addVar(VarLongitude, timeDims)
	g.addVar(VarMeanHeight, cellDims)
	g.addVar(VarMeanDepth, cellDims)
	g.addVar(VarSv, cellDims)
	g.addVar(VarSvUnfiltered, cellDims)
	g.addVar(VarPercentGood, cellDims)
	if cfg.Extended {
		g.addVar(VarSvSD, cellDims)
		g.addVar(VarSvSkew, cellDims)
		g.addVar(VarSvKurt, cellDims)
		g.addVar(VarSvUnfilteredSD, cellDims)
		g.addVar(VarSvUnfilteredSkew, cellDims)
		g.addVar(VarSvUnfilteredKurt, cellDims)
	}
	g.addVar(VarSignalNoise, cellDims)
	g.addVar(VarBackgroundNoise, chanDims)
	g.addVar(VarMotionCorrection, cellDims)
	return g
}

// addVar registers a variable. Dimensions start empty except DimChannel.
func (g *SurveyGrid) addVar(name string, dims []Dim) {
	v := &Variable{Name: name, Dims: append([]Dim(nil), dims...)}
	v.Data = newNaNSlice(sizeOf(g.shapeOf(v.Dims)))
	g.vars[name] = v
	g.order = append(g.order, name)
}

// dimLen returns the current length of a dimension.
func (g *SurveyGrid) dimLen(d Dim) int {
	switch d {
	case DimTime:
		return len(g.times)
	case DimDepth:
		return len(g.depths)
	case DimChannel:
		return len(g.channels)
	default:
		return 0
	}
}

// shapeOf returns the current lengths of the given dimensions.
func (g *SurveyGrid) shapeOf(dims []Dim) []int {
	shape := make([]int, len(dims))
	for i, d := range dims {
		shape[i] = g.dimLen(d)
	}
	return shape
}

func sizeOf(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

// newNaNSlice allocates a slice filled with the no-data sentinel. Zero is
// a legitimate observation and never marks an empty cell.
func newNaNSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// resizeVar returns a copy of data laid out for newShape, preserving every
// cell at its old indices and filling new cells with the no-data sentinel.
// Pure: the input slice is never modified.
func resizeVar(data []float64, oldShape, newShape []int) []float64 {
	out := newNaNSlice(sizeOf(newShape))
	if len(data) == 0 {
		return out
	}
	idx := make([]int, len(oldShape))
	for src := range data {
		dst := 0
		for d, v := range idx {
			dst = dst*newShape[d] + v
		}
		out[dst] = data[src]
		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < oldShape[d] {
				break
			}
			idx[d] = 0
		}
	}
	return out
}

// growDim grows one dimension of every dependent variable to length n.
// Growth is strictly append-only; previously written cells keep their
// values and positions.
func (g *SurveyGrid) growDim(d Dim, n int) {
	if n <= g.dimLen(d) {
		return
	}
	oldShapes := make(map[string][]int, len(g.vars))
	for name, v := range g.vars {
		oldShapes[name] = g.shapeOf(v.Dims)
	}

	switch d {
	case DimTime:
		for len(g.times) < n {
			g.times = append(g.times, time.Time{})
			g.intervals = append(g.intervals, 0)
			g.fileIndex = append(g.fileIndex, -1)
			g.versionIndex = append(g.versionIndex, -1)
		}
	case DimDepth:
		for len(g.depths) < n {
			g.depths = append(g.depths, math.NaN())
		}
	case DimChannel:
		// the channel set is fixed at configuration time
		return
	}

	for name, v := range g.vars {
		if !v.hasDim(d) {
			continue
		}
		v.Data = resizeVar(v.Data, oldShapes[name], g.shapeOf(v.Dims))
	}
}

// flatIndex computes the row-major offset of idx within shape.
func flatIndex(shape, idx []int) int {
	off := 0
	for d, s := range shape {
		off = off*s + idx[d]
	}
	return off
}

// at returns one cell of a variable.
func (g *SurveyGrid) at(name string, idx ...int) float64 {
	v := g.vars[name]
	return v.Data[flatIndex(g.shapeOf(v.Dims), idx)]
}

// set writes one cell of a variable.
func (g *SurveyGrid) set(name string, value float64, idx ...int) {
	v := g.vars[name]
	v.Data[flatIndex(g.shapeOf(v.Dims), idx)] = value
}

// setDepth assigns a layer midpoint. Once assigned it never changes.
func (g *SurveyGrid) setDepth(layer int, midpoint float64) {
	if layer < len(g.depths) && math.IsNaN(g.depths[layer]) && !math.IsNaN(midpoint) {
		g.depths[layer] = midpoint
	}
}

// internFile returns the stable index of a worksheet identifier, adding
// it in insertion order when unseen.
func (g *SurveyGrid) internFile(file string) int {
	for i, f := range g.sourceFiles {
		if f == file {
			return i
		}
	}
	g.sourceFiles = append(g.sourceFiles, file)
	return len(g.sourceFiles) - 1
}

// internVersion returns the stable index of an analysis-tool version
// string, adding it when unseen.
func (g *SurveyGrid) internVersion(version string) int {
	for i, v := range g.sourceVersions {
		if v == version {
			return i
		}
	}
	g.sourceVersions = append(g.sourceVersions, version)
	return len(g.sourceVersions) - 1
}

// Times returns the timeline. Treat as read-only.
func (g *SurveyGrid) Times() []time.Time { return g.times }

// Intervals returns the original absolute interval per TIME position.
// Treat as read-only.
func (g *SurveyGrid) Intervals() []int { return g.intervals }

// Depths returns the layer-midpoint depth axis. Treat as read-only.
func (g *SurveyGrid) Depths() []float64 { return g.depths }

// Channels returns the channel set. Treat as read-only.
func (g *SurveyGrid) Channels() []ChannelConfig { return g.channels }

// SourceFiles returns the originating worksheet identifiers in insertion
// order. Treat as read-only.
func (g *SurveyGrid) SourceFiles() []string { return g.sourceFiles }

// SourceVersions returns the analysis-tool version strings observed.
// Treat as read-only.
func (g *SurveyGrid) SourceVersions() []string { return g.sourceVersions }

// Variables returns the variable names in declaration order.
func (g *SurveyGrid) Variables() []string {
	return append([]string(nil), g.order...)
}

// Var returns a variable by name.
func (g *SurveyGrid) Var(name string) (*Variable, bool) {
	v, ok := g.vars[name]
	return v, ok
}

// At returns one cell of a variable, indexed over its declared dimensions.
func (g *SurveyGrid) At(name string, idx ...int) float64 {
	return g.at(name, idx...)
}

// CellValue returns a measurement variable at (time, depth, channel)
// regardless of which of those dimensions the variable declares or which
// were collapsed during finalization. Unknown names return NaN.
func (g *SurveyGrid) CellValue(name string, t, d, c int) float64 {
	v, ok := g.vars[name]
	if !ok {
		return math.NaN()
	}
	idx := make([]int, 0, len(v.Dims))
	for _, dim := range v.Dims {
		switch dim {
		case DimTime:
			idx = append(idx, t)
		case DimDepth:
			idx = append(idx, d)
		case DimChannel:
			idx = append(idx, c)
		}
	}
	return g.at(name, idx...)
}

// ChannelName returns the channel identifier at index i, honoring a
// collapsed CHANNEL dimension.
func (g *SurveyGrid) ChannelName(i int) string {
	if g.channelAttr != nil {
		return g.channelAttr.Name
	}
	return g.channels[i].Name
}

// Finalized reports whether the finalization pass has run.
func (g *SurveyGrid) Finalized() bool { return g.finalized }

// ChannelAttr returns the scalar channel attribute set when the CHANNEL
// dimension was collapsed, or nil.
func (g *SurveyGrid) ChannelAttr() *ChannelConfig { return g.channelAttr }

// VersionAttr returns the scalar tool-version attribute set when the
// version dimension was collapsed, or the empty string.
func (g *SurveyGrid) VersionAttr() string { return g.versionAttr }

// Bounds returns the spatial and temporal extents computed during
// finalization, or nil before it.
func (g *SurveyGrid) Bounds() *Bounds { return g.bounds }

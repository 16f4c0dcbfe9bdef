package echogrid

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// datelineSpan is the longitude span beyond which a naive min/max bounding
// box is assumed to straddle the date line.
const datelineSpan = 350.0

// Bounds is the spatial and temporal coverage of a finalized grid.
type Bounds struct {
	TimeStart time.Time
	TimeEnd   time.Time
	DepthMin  float64
	DepthMax  float64
	North     float64
	South     float64
	East      float64
	West      float64
}

// finalizeGrid runs the post-accumulation pass: depth pruning, dimension
// simplification, quality flagging and bounds computation. The grid is
// read-only afterwards.
func finalizeGrid(g *SurveyGrid, cfg Config, rep *Report) error {
	pruneDepths(g)
	assignQualityFlags(g, cfg.AcceptGood)

	if len(g.sourceVersions) == 1 {
		g.versionAttr = g.sourceVersions[0]
	}
	if cfg.SingleChannelOutput && len(g.channels) == 1 {
		collapseChannel(g)
	}

	bounds, err := computeBounds(g)
	if err != nil {
		return err
	}
	g.bounds = bounds
	rep.MeanSv = meanLinearSv(g)
	g.finalized = true
	return nil
}

// pruneDepths drops every DEPTH index whose midpoint no source ever
// resolved, together with all variable slices at that index.
func pruneDepths(g *SurveyGrid) {
	kept := make([]int, 0, len(g.depths))
	for i, d := range g.depths {
		if !math.IsNaN(d) {
			kept = append(kept, i)
		}
	}
	if len(kept) == len(g.depths) {
		return
	}

	for _, name := range g.order {
		v := g.vars[name]
		depthAxis := -1
		for i, d := range v.Dims {
			if d == DimDepth {
				depthAxis = i
			}
		}
		if depthAxis < 0 {
			continue
		}
		v.Data = filterAxis(v.Data, g.shapeOf(v.Dims), depthAxis, kept)
	}

	depths := make([]float64, len(kept))
	for i, old := range kept {
		depths[i] = g.depths[old]
	}
	g.depths = depths
}

// filterAxis returns a copy of data keeping only the given indices along
// one axis. Pure: the input slice is never modified.
func filterAxis(data []float64, shape []int, axis int, kept []int) []float64 {
	newShape := append([]int(nil), shape...)
	newShape[axis] = len(kept)

	newIdx := make([]int, shape[axis])
	for i := range newIdx {
		newIdx[i] = -1
	}
	for n, old := range kept {
		newIdx[old] = n
	}

	out := make([]float64, sizeOf(newShape))
	idx := make([]int, len(shape))
	for src := range data {
		if n := newIdx[idx[axis]]; n >= 0 {
			dst := 0
			for d, v := range idx {
				if d == axis {
					v = n
				}
				dst = dst*newShape[d] + v
			}
			out[dst] = data[src]
		}
		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < shape[d] {
				break
			}
			idx[d] = 0
		}
	}
	return out
}

// assignQualityFlags adds the quality_flag variable: a cell is good when
// its linear Sv is below 1 and its percent-good exceeds the accept
// threshold; everything else is not yet quality-controlled.
func assignQualityFlags(g *SurveyGrid, acceptGood int) {
	sv := g.vars[VarSv]
	pg := g.vars[VarPercentGood]

	g.addVar(VarQualityFlag, sv.Dims)
	flags := g.vars[VarQualityFlag]
	for i := range flags.Data {
		if sv.Data[i] < 1 && pg.Data[i] > float64(acceptGood) {
			flags.Data[i] = FlagGood
		} else {
			flags.Data[i] = FlagNotQualityControlled
		}
	}
}

// collapseChannel demotes the CHANNEL dimension to scalar attributes.
// The dimension has length one, so the arrays keep their layout.
func collapseChannel(g *SurveyGrid) {
	ch := g.channels[0]
	g.channelAttr = &ch
	for _, name := range g.order {
		v := g.vars[name]
		dims := v.Dims[:0]
		for _, d := range v.Dims {
			if d != DimChannel {
				dims = append(dims, d)
			}
		}
		v.Dims = dims
	}
}

// computeBounds derives time coverage, the depth range and the position
// bounding box. Longitudes spanning both sides of the date line by more
// than ~350 degrees use the positive and negative subsets for the east
// and west limits instead of the naive min/max.
func computeBounds(g *SurveyGrid) (*Bounds, error) {
	var lats, lons []float64
	lat := g.vars[VarLatitude]
	lon := g.vars[VarLongitude]
	for i := range lat.Data {
		if !math.IsNaN(lat.Data[i]) {
			lats = append(lats, lat.Data[i])
		}
		if !math.IsNaN(lon.Data[i]) {
			lons = append(lons, lon.Data[i])
		}
	}
	if len(lats) == 0 || len(lons) == 0 {
		return nil, ErrNoPositionData
	}

	b := &Bounds{
		North: floats.Max(lats),
		South: floats.Min(lats),
	}

	east, west := floats.Max(lons), floats.Min(lons)
	if east-west > datelineSpan {
		var pos, neg []float64
		for _, l := range lons {
			if l >= 0 {
				pos = append(pos, l)
			} else {
				neg = append(neg, l)
			}
		}
		if len(pos) > 0 && len(neg) > 0 {
			east, west = floats.Max(pos), floats.Min(neg)
		}
	}
	b.East, b.West = east, west

	for _, ts := range g.times {
		if ts.IsZero() {
			continue
		}
		if b.TimeStart.IsZero() || ts.Before(b.TimeStart) {
			b.TimeStart = ts
		}
		if ts.After(b.TimeEnd) {
			b.TimeEnd = ts
		}
	}

	if len(g.depths) > 0 {
		b.DepthMin = floats.Min(g.depths)
		b.DepthMax = floats.Max(g.depths)
	}
	return b, nil
}

// meanLinearSv summarizes the filtered backscatter for the ingest report.
func meanLinearSv(g *SurveyGrid) float64 {
	var vals []float64
	for _, v := range g.vars[VarSv].Data {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return math.NaN()
	}
	return stat.Mean(vals, nil)
}

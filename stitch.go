package echogrid

import (
	"fmt"
	"math"
)

// stitch splices a worksheet's freshly merged timeline onto the
// accumulated grid. The first accumulated position whose original
// absolute interval is >= the worksheet's first interval marks the splice
// point: everything from there on is discarded and replaced, so later
// worksheets win their overlap window and the timeline stays strictly
// increasing with one retained value per absolute interval.
func (m *Merger) stitch(fg *SurveyGrid, file string) error {
	if len(fg.times) == 0 {
		return nil
	}
	if m.grid == nil || len(m.grid.times) == 0 {
		m.grid = fg
		return nil
	}

	acc := m.grid
	newFirst := fg.intervals[0]
	newLast := fg.intervals[len(fg.intervals)-1]
	accFirst := acc.intervals[0]
	accLast := acc.intervals[len(acc.intervals)-1]

	// A worksheet ending before the accumulated timeline even starts is
	// not an overlap; the source worksheet order is broken.
	if newLast < accFirst {
		return &IntervalOrderError{
			File:       file,
			AccumFirst: accFirst,
			AccumLast:  accLast,
			NewFirst:   newFirst,
			NewLast:    newLast,
		}
	}

	splice := len(acc.intervals)
	for p, iv := range acc.intervals {
		if iv >= newFirst {
			splice = p
			break
		}
	}
	if splice == len(acc.intervals) && newFirst > accLast+1 {
		m.warn(Warning{
			Category: WarnIntervalGap,
			File:     file,
			Message:  fmt.Sprintf("interval gap: accumulated timeline ends at %d, worksheet starts at %d", accLast, newFirst),
		})
	}

	acc.truncateTime(splice)
	acc.appendGrid(fg)
	return nil
}

// truncateTime discards timeline positions p onward from every
// time-varying array.
func (g *SurveyGrid) truncateTime(p int) {
	if p >= len(g.times) {
		return
	}
	for _, name := range g.order {
		v := g.vars[name]
		if !v.hasDim(DimTime) {
			continue
		}
		row := sizeOf(g.shapeOf(v.Dims)[1:])
		v.Data = v.Data[:p*row]
	}
	g.times = g.times[:p]
	g.intervals = g.intervals[:p]
	g.fileIndex = g.fileIndex[:p]
	g.versionIndex = g.versionIndex[:p]
}

// appendGrid appends another grid's timeline to this one. Both grids were
// built from the same configuration, so their channel sets match; depth
// extents are harmonized append-only before the copy.
func (g *SurveyGrid) appendGrid(o *SurveyGrid) {
	depths := len(g.depths)
	if len(o.depths) > depths {
		depths = len(o.depths)
	}
	g.growDim(DimDepth, depths)
	o.growDim(DimDepth, depths)
	for i, d := range o.depths {
		if !math.IsNaN(d) {
			g.setDepth(i, d)
		}
	}

	fileMap := make([]int, len(o.sourceFiles))
	for i, f := range o.sourceFiles {
		fileMap[i] = g.internFile(f)
	}
	versionMap := make([]int, len(o.sourceVersions))
	for i, v := range o.sourceVersions {
		versionMap[i] = g.internVersion(v)
	}

	for t := range o.times {
		g.times = append(g.times, o.times[t])
		g.intervals = append(g.intervals, o.intervals[t])
		fi, vi := -1, -1
		if o.fileIndex[t] >= 0 {
			fi = fileMap[o.fileIndex[t]]
		}
		if o.versionIndex[t] >= 0 {
			vi = versionMap[o.versionIndex[t]]
		}
		g.fileIndex = append(g.fileIndex, fi)
		g.versionIndex = append(g.versionIndex, vi)
	}

	for _, name := range g.order {
		v := g.vars[name]
		if !v.hasDim(DimTime) {
			continue
		}
		v.Data = append(v.Data, o.vars[name].Data...)
	}
}

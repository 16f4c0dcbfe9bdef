package echogrid

// intervalIndex maps a worksheet's observed absolute interval range onto
// dense one-based positions of the worksheet's local timeline. Built
// fresh per file from the first channel's Clean rows; later channels of
// the same file may only extend the range upward.
type intervalIndex struct {
	min, max int
}

// newIntervalIndex builds the index table from the driving Clean rows.
// ok is false when the channel decoded no usable rows.
func newIntervalIndex(rows []cleanRow) (ix intervalIndex, ok bool) {
	if len(rows) == 0 {
		return intervalIndex{}, false
	}
	ix.min, ix.max = rows[0].interval, rows[0].interval
	for _, r := range rows[1:] {
		if r.interval < ix.min {
			ix.min = r.interval
		}
		if r.interval > ix.max {
			ix.max = r.interval
		}
	}
	return ix, true
}

// len returns the dense timeline length the range covers.
func (ix intervalIndex) len() int {
	return ix.max - ix.min + 1
}

// pos returns the zero-based timeline position of an absolute interval.
func (ix intervalIndex) pos(interval int) int {
	return interval - ix.min
}

// contains reports whether the interval lies inside the allocated range.
func (ix intervalIndex) contains(interval int) bool {
	return interval >= ix.min && interval <= ix.max
}

// extendTo grows the range (and the file grid's TIME dimension) so that
// interval fits. Growth is append-only: intervals below the range the
// first channel established cannot be placed and report ok == false.
func (ix *intervalIndex) extendTo(g *SurveyGrid, interval int) (ok bool) {
	if interval < ix.min {
		return false
	}
	if interval > ix.max {
		ix.max = interval
		g.growDim(DimTime, ix.len())
	}
	return true
}

package echogrid

import (
	"fmt"
	"math"
	"sort"
)

// channelTables holds the six decoded row tables of one channel of one
// worksheet, consumed exactly once by the join.
type channelTables struct {
	clean  []cleanRow
	raw    []rawRow
	reject []rejectRow
	snr    []valueRow
	noise  []noiseRow
	motion []valueRow
	meta   sourceMeta
}

// keyLess orders (interval, layer) join keys.
func keyLess(i1, l1, i2, l2 int) bool {
	if i1 != i2 {
		return i1 < i2
	}
	return l1 < l2
}

// sortTables stable-sorts every table by (interval, layer) ascending.
// Stability preserves original row order on duplicate keys.
func (t *channelTables) sortTables() {
	sort.SliceStable(t.clean, func(a, b int) bool {
		return keyLess(t.clean[a].interval, t.clean[a].layer, t.clean[b].interval, t.clean[b].layer)
	})
	sort.SliceStable(t.raw, func(a, b int) bool {
		return keyLess(t.raw[a].interval, t.raw[a].layer, t.raw[b].interval, t.raw[b].layer)
	})
	sort.SliceStable(t.reject, func(a, b int) bool {
		return keyLess(t.reject[a].interval, t.reject[a].layer, t.reject[b].interval, t.reject[b].layer)
	})
	sort.SliceStable(t.snr, func(a, b int) bool {
		return keyLess(t.snr[a].interval, t.snr[a].layer, t.snr[b].interval, t.snr[b].layer)
	})
	sort.SliceStable(t.motion, func(a, b int) bool {
		return keyLess(t.motion[a].interval, t.motion[a].layer, t.motion[b].interval, t.motion[b].layer)
	})
	sort.SliceStable(t.noise, func(a, b int) bool {
		return t.noise[a].interval < t.noise[b].interval
	})
}

// layerMidpoint resolves the depth of a layer. Explicit bounds win;
// otherwise the conventional center of a 10 m layer is synthesized.
// TODO: confirm the synthesized convention against the survey metadata
// standard before treating it as more than a fallback.
func layerMidpoint(c cleanRow) float64 {
	if !math.IsNaN(c.layMin) && !math.IsNaN(c.layMax) {
		return (c.layMin + c.layMax) / 2
	}
	return float64(c.layer)*10 - 5
}

// mergeChannel drives the six-way sort-merge join for one channel and
// writes the surviving cells into the file grid. Each table is scanned at
// most once: all cursors advance monotonically.
func (m *Merger) mergeChannel(g *SurveyGrid, ix *intervalIndex, ch int, src *channelTables, fileIdx, verIdx int, file string) error {
	src.sortTables()

	chName := m.cfg.Channels[ch].Name
	maxDepth := m.cfg.Channels[ch].MaxDepth

	var iRaw, iRej, iSnr, iNoise, iMot int
	for _, c := range src.clean {
		if !ix.extendTo(g, c.interval) {
			return fmt.Errorf("%w: file %s channel %s: interval %d precedes the extent established by the first channel (%d)",
				ErrIntervalOrder, file, chName, c.interval, ix.min)
		}
		g.growDim(DimDepth, c.layer)
		t := ix.pos(c.interval)
		d := c.layer - 1

		// Raw reference signal. Missing keys default sample count and
		// unfiltered Sv to zero.
		for iRaw < len(src.raw) && keyLess(src.raw[iRaw].interval, src.raw[iRaw].layer, c.interval, c.layer) {
			iRaw++
		}
		rawSamples := 0
		rawSv := 0.0
		rawSD, rawSkew, rawKurt := math.NaN(), math.NaN(), math.NaN()
		if iRaw < len(src.raw) && src.raw[iRaw].interval == c.interval && src.raw[iRaw].layer == c.layer {
			// A matched row carries its decoded value through unchanged;
			// a sentinel Sv stays no-data. The zero default is reserved
			// for keys absent from the raw export.
			r := src.raw[iRaw]
			rawSamples, rawSv = r.samples, r.sv
			rawSD, rawSkew, rawKurt = r.sd, r.skew, r.kurt
		} else {
			m.warn(Warning{
				Category: WarnMissingRawData,
				File:     file,
				Channel:  chName,
				Message:  fmt.Sprintf("interval %d layer %d missing from raw export", c.interval, c.layer),
			})
		}

		// Rejection counts. Missing keys default to zero.
		for iRej < len(src.reject) && keyLess(src.reject[iRej].interval, src.reject[iRej].layer, c.interval, c.layer) {
			iRej++
		}
		rejSamples := 0
		if iRej < len(src.reject) && src.reject[iRej].interval == c.interval && src.reject[iRej].layer == c.layer {
			rejSamples = src.reject[iRej].samples
		} else {
			m.warn(Warning{
				Category: WarnMissingRejectData,
				File:     file,
				Channel:  chName,
				Message:  fmt.Sprintf("interval %d layer %d missing from rejection export", c.interval, c.layer),
			})
		}

		// Optional sources. Missing keys stay no-data.
		for iSnr < len(src.snr) && keyLess(src.snr[iSnr].interval, src.snr[iSnr].layer, c.interval, c.layer) {
			iSnr++
		}
		snr := math.NaN()
		if iSnr < len(src.snr) && src.snr[iSnr].interval == c.interval && src.snr[iSnr].layer == c.layer {
			snr = src.snr[iSnr].value
		}

		for iMot < len(src.motion) && keyLess(src.motion[iMot].interval, src.motion[iMot].layer, c.interval, c.layer) {
			iMot++
		}
		motion := math.NaN()
		if iMot < len(src.motion) && src.motion[iMot].interval == c.interval && src.motion[iMot].layer == c.layer {
			motion = src.motion[iMot].value
		}

		// Background noise is interval-resolved, written once per
		// (interval, channel) regardless of layer.
		for iNoise < len(src.noise) && src.noise[iNoise].interval < c.interval {
			iNoise++
		}
		if iNoise < len(src.noise) && src.noise[iNoise].interval == c.interval {
			g.set(VarBackgroundNoise, src.noise[iNoise].value, t, ch)
		}

		// Timeline metadata and position belong to the interval, not the
		// cell, and are recorded even when the cell itself is dropped.
		g.times[t] = c.ts
		g.intervals[t] = c.interval
		g.fileIndex[t] = fileIdx
		g.versionIndex[t] = verIdx
		if !math.IsNaN(c.lat) {
			g.set(VarLatitude, c.lat, t)
		}
		if !math.IsNaN(c.lon) {
			g.set(VarLongitude, c.lon, t)
		}

		percentGood := 0
		if rawSamples > 0 {
			percentGood = 100 * rejSamples / rawSamples
		}

		midpoint := layerMidpoint(c)
		if percentGood < m.cfg.MinGood || midpoint > maxDepth {
			m.report.CellsDropped++
			continue
		}

		g.setDepth(d, midpoint)
		g.set(VarMeanHeight, c.height, t, d, ch)
		g.set(VarMeanDepth, c.depth, t, d, ch)
		g.set(VarSv, c.sv, t, d, ch)
		g.set(VarSvUnfiltered, rawSv, t, d, ch)
		g.set(VarPercentGood, float64(percentGood), t, d, ch)
		g.set(VarSignalNoise, snr, t, d, ch)
		g.set(VarMotionCorrection, motion, t, d, ch)
		if m.cfg.Extended {
			g.set(VarSvSD, c.sd, t, d, ch)
			g.set(VarSvSkew, c.skew, t, d, ch)
			g.set(VarSvKurt, c.kurt, t, d, ch)
			g.set(VarSvUnfilteredSD, rawSD, t, d, ch)
			g.set(VarSvUnfilteredSkew, rawSkew, t, d, ch)
			g.set(VarSvUnfilteredKurt, rawKurt, t, d, ch)
		}
		m.report.CellsWritten++
	}
	return nil
}

// fillIntervals stamps the absolute interval number of every timeline
// position the allocator covers, including positions no source reported.
func fillIntervals(g *SurveyGrid, ix intervalIndex) {
	for t := range g.intervals {
		g.intervals[t] = ix.min + t
	}
}

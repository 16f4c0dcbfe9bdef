package echogrid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneDepthsDropsUnresolvedLayers(t *testing.T) {
	t.Parallel()

	g := newSurveyGrid(testGridConfig())
	g.growDim(DimTime, 2)
	g.growDim(DimDepth, 3)

	// only layers at indices 0 and 2 ever resolved a midpoint
	g.setDepth(0, 5)
	g.setDepth(2, 25)
	g.set(VarSv, 1e-6, 0, 0, 0)
	g.set(VarSv, 2e-6, 0, 2, 0)
	g.set(VarSv, 3e-6, 1, 2, 1)

	pruneDepths(g)

	if want := []float64{5, 25}; len(g.depths) != 2 || g.depths[0] != want[0] || g.depths[1] != want[1] {
		t.Fatalf("depths = %v, want %v", g.depths, want)
	}
	if got := g.at(VarSv, 0, 1, 0); got != 2e-6 {
		t.Errorf("layer 25 cell = %g after pruning, want 2e-6", got)
	}
	if got := g.at(VarSv, 1, 1, 1); got != 3e-6 {
		t.Errorf("layer 25 cell on second channel = %g, want 3e-6", got)
	}
}

func TestAssignQualityFlags(t *testing.T) {
	t.Parallel()

	g := newSurveyGrid(testGridConfig())
	g.growDim(DimTime, 1)
	g.growDim(DimDepth, 3)

	g.set(VarSv, 1e-6, 0, 0, 0)
	g.set(VarPercentGood, 80, 0, 0, 0) // good
	g.set(VarSv, 1e-6, 0, 1, 0)
	g.set(VarPercentGood, 45, 0, 1, 0) // percent-good too low

	assignQualityFlags(g, 50)

	if got := g.at(VarQualityFlag, 0, 0, 0); got != FlagGood {
		t.Errorf("flag for accepted cell = %g, want %d", got, FlagGood)
	}
	if got := g.at(VarQualityFlag, 0, 1, 0); got != FlagNotQualityControlled {
		t.Errorf("flag for low percent-good cell = %g", got)
	}
	// never-populated cell stays not-quality-controlled
	if got := g.at(VarQualityFlag, 0, 2, 0); got != FlagNotQualityControlled {
		t.Errorf("flag for empty cell = %g", got)
	}
}

func TestComputeBoundsDateline(t *testing.T) {
	t.Parallel()

	g := newSurveyGrid(testGridConfig())
	g.growDim(DimTime, 4)
	for i, pos := range [][2]float64{
		{-42.0, 179.5},
		{-42.1, -179.8},
		{-42.2, 179.9},
		{-42.3, -179.6},
	} {
		g.set(VarLatitude, pos[0], i)
		g.set(VarLongitude, pos[1], i)
	}

	b, err := computeBounds(g)
	require.NoError(t, err)

	assert.Equal(t, 179.9, b.East)
	assert.Equal(t, -179.8, b.West)
	assert.Equal(t, -42.0, b.North)
	assert.Equal(t, -42.3, b.South)
}

func TestComputeBoundsNoPositions(t *testing.T) {
	t.Parallel()

	g := newSurveyGrid(testGridConfig())
	g.growDim(DimTime, 2)

	_, err := computeBounds(g)
	assert.ErrorIs(t, err, ErrNoPositionData)
}

func TestFinalizeCollapsesSingleChannelAndVersion(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeWorksheet(t, dir, "W", "38kHz", simpleWorksheet(0, 1, 1, "-60", "s.ev"))

	cfg := testConfig()
	cfg.SingleChannelOutput = true
	m, err := NewMerger(cfg)
	require.NoError(t, err)
	require.NoError(t, m.ProcessWorksheet(dir, "W"))

	grid, err := m.Finalize()
	require.NoError(t, err)

	require.NotNil(t, grid.ChannelAttr())
	assert.Equal(t, "38kHz", grid.ChannelAttr().Name)
	assert.Equal(t, "13.0.378", grid.VersionAttr())

	sv, ok := grid.Var(VarSv)
	require.True(t, ok)
	assert.NotContains(t, sv.Dims, DimChannel)
	// data is untouched by the collapse and still addressable
	assert.InDelta(t, 1e-6, grid.CellValue(VarSv, 0, 0, 0), 1e-18)
}

func TestFinalizeKeepsChannelDimension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeWorksheet(t, dir, "W", "38kHz", simpleWorksheet(0, 1, 1, "-60", "s.ev"))

	// SingleChannelOutput off: the channel dimension stays even at length 1
	m, err := NewMerger(testConfig())
	require.NoError(t, err)
	require.NoError(t, m.ProcessWorksheet(dir, "W"))
	grid, err := m.Finalize()
	require.NoError(t, err)

	assert.Nil(t, grid.ChannelAttr())
	sv, ok := grid.Var(VarSv)
	require.True(t, ok)
	assert.Contains(t, sv.Dims, DimChannel)
}

func TestFinalizeBoundsAndMeanSv(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeWorksheet(t, dir, "W", "38kHz", simpleWorksheet(0, 1, 2, "-60", "s.ev"))

	m, err := NewMerger(testConfig())
	require.NoError(t, err)
	require.NoError(t, m.ProcessWorksheet(dir, "W"))
	grid, err := m.Finalize()
	require.NoError(t, err)

	b := grid.Bounds()
	require.NotNil(t, b)
	assert.Equal(t, -42.1, b.North)
	assert.Equal(t, -42.1, b.South)
	assert.Equal(t, 148.3, b.East)
	assert.Equal(t, 5.0, b.DepthMin)
	assert.Equal(t, 15.0, b.DepthMax)
	assert.False(t, b.TimeStart.IsZero())
	assert.False(t, b.TimeEnd.Before(b.TimeStart))

	assert.InDelta(t, 1e-6, m.Report().MeanSv, 1e-18)
	assert.False(t, math.IsNaN(m.Report().MeanSv))
}

func TestFinalizeWithoutPositionsFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	d := wsData{
		clean:  []string{"0,1,-60,9.5,5.0,0,10,,,20240301,00:00:05.0000,13.0.378,s.ev,100"},
		raw:    []string{"0,1,-55,9.5,5.0,0,10,,,20240301,00:00:05.0000,13.0.378,s.ev,100"},
		reject: []string{"0,1,80"},
	}
	writeWorksheet(t, dir, "W", "38kHz", d)

	m, err := NewMerger(testConfig())
	require.NoError(t, err)
	require.NoError(t, m.ProcessWorksheet(dir, "W"))

	_, err = m.Finalize()
	assert.ErrorIs(t, err, ErrNoPositionData)
}

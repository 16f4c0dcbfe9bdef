package echogrid

import (
	"math"
	"testing"
)

func testGridConfig() Config {
	return Config{
		Channels: []ChannelConfig{
			{Name: "38kHz", Frequency: 38, MaxDepth: 1200},
			{Name: "120kHz", Frequency: 120, MaxDepth: 250},
		},
		AcceptGood: 50,
	}
}

func TestResizeVar(t *testing.T) {
	t.Parallel()

	t.Run("Preserves cells at their old indices", func(t *testing.T) {
		t.Parallel()

		// 2x2 grid, values 1..4
		data := []float64{1, 2, 3, 4}
		out := resizeVar(data, []int{2, 2}, []int{3, 3})

		if out[0] != 1 || out[1] != 2 || out[3] != 3 || out[4] != 4 {
			t.Errorf("cells moved during resize: %v", out)
		}
		for _, i := range []int{2, 5, 6, 7, 8} {
			if !math.IsNaN(out[i]) {
				t.Errorf("new cell %d not NaN: %g", i, out[i])
			}
		}
	})

	t.Run("Input slice is never modified", func(t *testing.T) {
		t.Parallel()

		data := []float64{1, 2, 3, 4}
		_ = resizeVar(data, []int{2, 2}, []int{4, 4})
		for i, v := range []float64{1, 2, 3, 4} {
			if data[i] != v {
				t.Fatalf("input modified at %d: %g", i, data[i])
			}
		}
	})
}

func TestGrowDimAppendOnly(t *testing.T) {
	t.Parallel()

	g := newSurveyGrid(testGridConfig())
	g.growDim(DimTime, 2)
	g.growDim(DimDepth, 2)

	g.set(VarSv, 1e-6, 1, 1, 0)
	g.set(VarBackgroundNoise, -125, 1, 1)
	g.set(VarLatitude, -42.0, 1)

	g.growDim(DimTime, 5)
	g.growDim(DimDepth, 4)

	if got := g.at(VarSv, 1, 1, 0); got != 1e-6 {
		t.Errorf("Sv cell changed after growth: %g", got)
	}
	if got := g.at(VarBackgroundNoise, 1, 1); got != -125 {
		t.Errorf("background cell changed after growth: %g", got)
	}
	if got := g.at(VarLatitude, 1); got != -42.0 {
		t.Errorf("latitude changed after growth: %g", got)
	}
	if !math.IsNaN(g.at(VarSv, 4, 3, 1)) {
		t.Error("new cell must default to the no-data sentinel")
	}
}

func TestSetDepthNeverChanges(t *testing.T) {
	t.Parallel()

	g := newSurveyGrid(testGridConfig())
	g.growDim(DimDepth, 2)

	g.setDepth(0, 5)
	g.setDepth(0, 99)
	if g.depths[0] != 5 {
		t.Errorf("assigned depth changed: %g", g.depths[0])
	}
}

func TestFilterAxis(t *testing.T) {
	t.Parallel()

	// 2x3: rows [1 2 3] [4 5 6], keep axis-1 indices 0 and 2
	data := []float64{1, 2, 3, 4, 5, 6}
	out := filterAxis(data, []int{2, 3}, 1, []int{0, 2})

	want := []float64{1, 3, 4, 6}
	if len(out) != len(want) {
		t.Fatalf("expected %d cells, got %d", len(want), len(out))
	}
	for i, v := range want {
		if out[i] != v {
			t.Errorf("cell %d: expected %g, got %g", i, v, out[i])
		}
	}
}

func TestInternSources(t *testing.T) {
	t.Parallel()

	g := newSurveyGrid(testGridConfig())
	a := g.internFile("a.ev")
	b := g.internFile("b.ev")
	if g.internFile("a.ev") != a || a == b {
		t.Error("file interning must be stable and in insertion order")
	}
	v := g.internVersion("13.0")
	if g.internVersion("13.0") != v {
		t.Error("version interning must be stable")
	}
}

func TestCellValueAfterChannelCollapse(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Channels:            []ChannelConfig{{Name: "38kHz", Frequency: 38, MaxDepth: 1200}},
		SingleChannelOutput: true,
	}
	g := newSurveyGrid(cfg)
	g.growDim(DimTime, 1)
	g.growDim(DimDepth, 1)
	g.set(VarSv, 2e-7, 0, 0, 0)

	collapseChannel(g)

	if g.ChannelAttr() == nil || g.ChannelAttr().Name != "38kHz" {
		t.Fatal("expected scalar channel attribute after collapse")
	}
	if got := g.CellValue(VarSv, 0, 0, 0); got != 2e-7 {
		t.Errorf("CellValue must keep working after collapse, got %g", got)
	}
	if g.ChannelName(0) != "38kHz" {
		t.Errorf("unexpected channel name: %s", g.ChannelName(0))
	}
}

package echogrid

import "testing"

func TestNewIntervalIndex(t *testing.T) {
	t.Parallel()

	rows := []cleanRow{
		{interval: 7}, {interval: 3}, {interval: 5}, {interval: 3},
	}
	ix, ok := newIntervalIndex(rows)
	if !ok {
		t.Fatal("expected ok for non-empty rows")
	}
	if ix.min != 3 || ix.max != 7 {
		t.Fatalf("range = [%d,%d], want [3,7]", ix.min, ix.max)
	}
	if ix.len() != 5 {
		t.Errorf("len = %d, want 5", ix.len())
	}
	if ix.pos(3) != 0 || ix.pos(7) != 4 {
		t.Errorf("pos(3)=%d pos(7)=%d, want 0 and 4", ix.pos(3), ix.pos(7))
	}
	if ix.contains(2) || !ix.contains(5) || ix.contains(8) {
		t.Error("contains misreports the range")
	}

	if _, ok := newIntervalIndex(nil); ok {
		t.Error("expected ok=false for empty rows")
	}
}

func TestIntervalIndexExtendTo(t *testing.T) {
	t.Parallel()

	g := newSurveyGrid(testGridConfig())
	ix, _ := newIntervalIndex([]cleanRow{{interval: 3}, {interval: 5}})
	g.growDim(DimTime, ix.len())

	if !ix.extendTo(g, 9) {
		t.Fatal("upward extension must succeed")
	}
	if ix.max != 9 || ix.len() != 7 {
		t.Errorf("range = [%d,%d], want [3,9]", ix.min, ix.max)
	}
	if got := len(g.Times()); got != 7 {
		t.Errorf("TIME length = %d after extension, want 7", got)
	}

	// below the established start: rejected, range untouched
	if ix.extendTo(g, 1) {
		t.Error("downward extension must be rejected")
	}
	if ix.min != 3 {
		t.Errorf("min changed to %d after rejected extension", ix.min)
	}
}

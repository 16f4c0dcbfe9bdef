package echogrid

import (
	"math"
	"testing"
	"time"
)

func TestDecodeDB(t *testing.T) {
	t.Parallel()

	t.Run("Converts decibel to linear", func(t *testing.T) {
		t.Parallel()

		got := decodeDB(-60)
		want := 1e-6
		if math.Abs(got-want) > 1e-18 {
			t.Errorf("expected %g, got %g", want, got)
		}
	})

	t.Run("Zero is the no-data sentinel", func(t *testing.T) {
		t.Parallel()

		if !math.IsNaN(decodeDB(0)) {
			t.Errorf("expected NaN for raw 0, got %g", decodeDB(0))
		}
	})

	t.Run("Values above 999 are no-data", func(t *testing.T) {
		t.Parallel()

		if !math.IsNaN(decodeDB(1000)) {
			t.Errorf("expected NaN for raw 1000, got %g", decodeDB(1000))
		}
		if !math.IsNaN(decodeDB(9999)) {
			t.Errorf("expected NaN for raw 9999, got %g", decodeDB(9999))
		}
	})

	t.Run("Boundary value 999 is valid", func(t *testing.T) {
		t.Parallel()

		if math.IsNaN(decodeDB(999)) {
			t.Error("expected 999 dB to decode to a number")
		}
	})
}

func TestDecodeDBLevel(t *testing.T) {
	t.Parallel()

	if !math.IsNaN(decodeDBLevel(0)) {
		t.Error("expected NaN for raw 0")
	}
	if !math.IsNaN(decodeDBLevel(9999)) {
		t.Error("expected NaN for sentinel 9999")
	}
	if got := decodeDBLevel(-125); got != -125 {
		t.Errorf("expected level to stay in dB, got %g", got)
	}
}

func TestParseKey(t *testing.T) {
	t.Parallel()

	cm, err := mapColumns("t.csv", SourceSignalNoise, newHeader([]string{"Interval", "Layer", "Signal_noise"}), "", false)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("Intervals are normalized to one-based", func(t *testing.T) {
		t.Parallel()

		interval, layer, ok := parseKey(cm, newRecord([]string{"0", "1", "20"}))
		if !ok || interval != 1 || layer != 1 {
			t.Errorf("expected (1, 1, true), got (%d, %d, %v)", interval, layer, ok)
		}
	})

	t.Run("Layer zero rows are parser artifacts", func(t *testing.T) {
		t.Parallel()

		if _, _, ok := parseKey(cm, newRecord([]string{"3", "0", "20"})); ok {
			t.Error("expected layer 0 row to be dropped")
		}
	})

	t.Run("Non-numeric key fields mark sentinel rows", func(t *testing.T) {
		t.Parallel()

		if _, _, ok := parseKey(cm, newRecord([]string{"Interval", "Layer", "Signal_noise"})); ok {
			t.Error("expected repeated header row to be dropped")
		}
	})
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	got := parseTimestamp("20240301", "00:00:05.0000")
	want := time.Date(2024, 3, 1, 0, 0, 5, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if !parseTimestamp("garbage", "nope").IsZero() {
		t.Error("expected zero time for malformed fields")
	}
}

func TestDecodeClean(t *testing.T) {
	t.Parallel()

	hdr := newHeader([]string{
		"Interval", "Layer", "Sv_mean", "Height_mean", "Depth_mean",
		"Lat_M", "Lon_M", "Date_M", "Time_M", "Program_version", "EV_filename",
	})
	cm, err := mapColumns("clean.csv", SourceClean, hdr, "", false)
	if err != nil {
		t.Fatal(err)
	}

	tbl := newTable("clean.csv", hdr, "", []record{
		newRecord([]string{"0", "1", "-60", "9.5", "5.2", "-42.1", "148.3", "20240301", "00:00:05.0000", "13.0.378", "survey1.ev"}),
		newRecord([]string{"0", "2", "-70", "9.5", "15.2", "-42.1", "148.3", "20240301", "00:00:05.0000", "13.0.378", "survey1.ev"}),
	})

	rows, meta := decodeClean(tbl, cm, false)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if meta.fileName != "survey1.ev" || meta.version != "13.0.378" {
		t.Errorf("unexpected meta: %+v", meta)
	}
	if rows[0].interval != 1 {
		t.Errorf("expected one-based interval 1, got %d", rows[0].interval)
	}
	if math.Abs(rows[0].sv-1e-6) > 1e-18 {
		t.Errorf("expected linear Sv 1e-6, got %g", rows[0].sv)
	}
	if !math.IsNaN(rows[0].layMin) {
		t.Error("expected NaN layer bounds when columns absent")
	}
}

func TestDecodeNoiseDeduplicatesIntervals(t *testing.T) {
	t.Parallel()

	hdr := newHeader([]string{"Interval", "Noise_Sv"})
	cm, err := mapColumns("noise.csv", SourceBackground, hdr, "", false)
	if err != nil {
		t.Fatal(err)
	}
	tbl := newTable("noise.csv", hdr, "", []record{
		newRecord([]string{"0", "-125"}),
		newRecord([]string{"0", "-120"}),
		newRecord([]string{"1", "-124"}),
	})

	rows := decodeNoise(tbl, cm)
	if len(rows) != 2 {
		t.Fatalf("expected 2 deduplicated rows, got %d", len(rows))
	}
	if rows[0].value != -125 {
		t.Errorf("expected first row per interval to win, got %g", rows[0].value)
	}
}

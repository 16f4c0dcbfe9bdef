// Package echogrid assembles echosounder echo-integration exports into one
// continuous, gap-aware survey grid.
//
// An acoustic-analysis application exports each survey worksheet as a set of
// per-channel CSV tables: the filtered (cleaned) signal, the raw reference
// signal, sample-rejection counts, signal-to-noise ratio, background noise,
// and a motion-correction factor. echogrid ingests those tables one worksheet
// at a time, joins them by (interval, layer) key, and accumulates the result
// into a three-dimensional grid (time x depth layer x channel) with linear
// backscatter units, quality flags, and spatial/temporal extents.
//
// # Basic Usage
//
//	cfg, err := echogrid.LoadConfig("survey.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m, err := echogrid.NewMerger(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, ws := range []string{"Transit1", "Transit2"} {
//	    if err := m.ProcessWorksheet("exports", ws); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	grid, err := m.Finalize()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The finalized grid is read-only and is handed to a downstream writer, or
// inspected ad hoc through an in-memory SQLite database:
//
//	db, err := echogrid.OpenGridDB(ctx, grid)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	rows, err := db.QueryContext(ctx, "SELECT channel, AVG(sv) FROM cells GROUP BY channel")
//
// # Input Files
//
// Export files are resolved per channel and source kind from the naming
// templates in the configuration, e.g. "{worksheet}_{channel}_Sv.csv".
// Compressed exports (.gz, .bz2, .xz, .zst) and single-sheet .xlsx exports
// are detected and read transparently.
//
// # Semantics
//
// Worksheets represent contiguous, possibly overlapping segments of one
// survey. Later worksheets win in the overlap window, so the assembled TIME
// axis is strictly increasing with exactly one retained value per absolute
// interval. Decibel fields are converted to linear scale on decode; a cell
// never observed by any source holds NaN, never zero.
//
// Malformed input fails fast with an error naming the offending file or
// column. Recoverable conditions (header drift, keys missing from the raw or
// rejection tables, interval gaps between worksheets) are collected as
// warnings and processing continues with documented defaults.
package echogrid

package echogrid

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite" // in-memory engine for ad-hoc grid queries
)

// sqliteDriverName is the database/sql driver name modernc.org/sqlite
// registers.
const sqliteDriverName = "sqlite"

// OpenGridDB loads a finalized grid into an in-memory SQLite database for
// ad-hoc quality-control queries. Three tables are created:
//
//   - cells:    one row per populated (time, depth, channel) cell
//   - position: one row per timeline interval with a fix
//   - noise:    one row per (time, channel) background-noise value
//
// No-data cells are represented as NULL. The database is independent of
// the grid; closing it releases all resources.
func OpenGridDB(ctx context.Context, g *SurveyGrid) (*sql.DB, error) {
	if !g.Finalized() {
		return nil, ErrNotFinalized
	}

	db, err := sql.Open(sqliteDriverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("echogrid: failed to open in-memory database: %w", err)
	}
	if err := loadGridDB(ctx, db, g); err != nil {
		_ = db.Close() // Ignore close error during error handling
		return nil, err
	}
	return db, nil
}

const gridSchema = `
CREATE TABLE cells (
	time TEXT,
	interval INTEGER,
	depth REAL,
	channel TEXT,
	sv REAL,
	sv_unfiltered REAL,
	percent_good REAL,
	signal_to_noise REAL,
	motion_correction REAL,
	quality INTEGER
);
CREATE TABLE position (
	time TEXT,
	interval INTEGER,
	latitude REAL,
	longitude REAL
);
CREATE TABLE noise (
	time TEXT,
	interval INTEGER,
	channel TEXT,
	background_noise REAL
);
`

func loadGridDB(ctx context.Context, db *sql.DB, g *SurveyGrid) error {
	if _, err := db.ExecContext(ctx, gridSchema); err != nil {
		return fmt.Errorf("echogrid: failed to create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("echogrid: failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	cellStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO cells VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer cellStmt.Close()
	posStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO position VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer posStmt.Close()
	noiseStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO noise VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer noiseStmt.Close()

	channels := len(g.Channels())
	if g.ChannelAttr() != nil {
		channels = 1
	}

	for t, ts := range g.Times() {
		interval := g.Intervals()[t]
		stamp := timestampText(ts)

		lat := g.At(VarLatitude, t)
		lon := g.At(VarLongitude, t)
		if !math.IsNaN(lat) || !math.IsNaN(lon) {
			if _, err := posStmt.ExecContext(ctx, stamp, interval, nullable(lat), nullable(lon)); err != nil {
				return err
			}
		}

		for c := 0; c < channels; c++ {
			noise := g.CellValue(VarBackgroundNoise, t, 0, c)
			if !math.IsNaN(noise) {
				if _, err := noiseStmt.ExecContext(ctx, stamp, interval, g.ChannelName(c), noise); err != nil {
					return err
				}
			}

			for d := range g.Depths() {
				sv := g.CellValue(VarSv, t, d, c)
				pg := g.CellValue(VarPercentGood, t, d, c)
				if math.IsNaN(sv) && math.IsNaN(pg) {
					continue // never populated
				}
				_, err := cellStmt.ExecContext(ctx,
					stamp,
					interval,
					g.Depths()[d],
					g.ChannelName(c),
					nullable(sv),
					nullable(g.CellValue(VarSvUnfiltered, t, d, c)),
					nullable(pg),
					nullable(g.CellValue(VarSignalNoise, t, d, c)),
					nullable(g.CellValue(VarMotionCorrection, t, d, c)),
					int(g.CellValue(VarQualityFlag, t, d, c)),
				)
				if err != nil {
					return err
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("echogrid: failed to commit grid load: %w", err)
	}
	return nil
}

// nullable maps the no-data sentinel onto SQL NULL.
func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

// timestampText formats a timeline entry, empty for intervals without an
// observed timestamp.
func timestampText(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

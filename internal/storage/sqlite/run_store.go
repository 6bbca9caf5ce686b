// Package sqlite persists boxcar filter runs and their retained gates to a
// SQLite database, keyed by run id so a batch can be inspected or
// reprocessed later.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/shibaji7/uah/internal/fitacf"
	"github.com/shibaji7/uah/internal/timeutil"
)

// Run is one persisted filter invocation and the configuration that
// produced it.
type Run struct {
	RunID       string  `json:"run_id"`
	Radar       string  `json:"radar"`
	Thresh      float64 `json:"thresh"`
	Pth         float64 `json:"pth"`
	PbndLow     float64 `json:"pbnd_low"`
	PbndHigh    float64 `json:"pbnd_high"`
	GflgVariant int     `json:"gflg_variant"`
	ScanCount   int     `json:"scan_count"`
	CreatedAt   int64   `json:"created_at"`
}

// GateRow is one retained range cell of a filtered scan.
type GateRow struct {
	RunID     string  `json:"run_id"`
	ScanIndex int     `json:"scan_index"`
	Bmnum     int     `json:"bmnum"`
	BeamTime  int64   `json:"beam_time"` // unix nanoseconds
	Gate      int     `json:"gate"`
	V         float64 `json:"v"`
	WL        float64 `json:"w_l"`
	PL        float64 `json:"p_l"`
	VMAD      float64 `json:"v_mad"`
	Gflg      int     `json:"gflg"`
	GflgConv  int     `json:"gflg_conv"`
	GflgKDE   int     `json:"gflg_kde"`
}

// RunStore provides persistence for filter runs and their gates.
type RunStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*RunStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &RunStore{db: db, clock: timeutil.RealClock{}}, nil
}

// NewRunStore wraps an existing database handle; the schema must already
// exist or be created by the caller.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db, clock: timeutil.RealClock{}}
}

// Close closes the underlying database.
func (s *RunStore) Close() error {
	return s.db.Close()
}

const schema = `
	CREATE TABLE IF NOT EXISTS medfilt_runs (
		run_id         TEXT PRIMARY KEY,
		radar          TEXT,
		thresh         REAL,
		pth            REAL,
		pbnd_low       REAL,
		pbnd_high      REAL,
		gflg_variant   INTEGER,
		scan_count     INTEGER,
		created_at     BIGINT
	);
	CREATE TABLE IF NOT EXISTS medfilt_gates (
		run_id         TEXT,
		scan_index     INTEGER,
		bmnum          INTEGER,
		beam_time      BIGINT,
		gate           INTEGER,
		v              REAL,
		w_l            REAL,
		p_l            REAL,
		v_mad          REAL,
		gflg           INTEGER,
		gflg_conv      INTEGER,
		gflg_kde       INTEGER,
		FOREIGN KEY(run_id) REFERENCES medfilt_runs(run_id)
	);
	CREATE INDEX IF NOT EXISTS idx_medfilt_gates_run ON medfilt_gates(run_id, scan_index);
`

// InsertRun persists a run record. An empty RunID is replaced with a fresh
// UUID; a zero CreatedAt with the current time.
func (s *RunStore) InsertRun(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = s.clock.Now().UnixNano()
	}
	return s.retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO medfilt_runs (
				run_id, radar, thresh, pth, pbnd_low, pbnd_high,
				gflg_variant, scan_count, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.Radar, run.Thresh, run.Pth, run.PbndLow, run.PbndHigh,
			run.GflgVariant, run.ScanCount, run.CreatedAt,
		)
		return err
	})
}

// InsertScan persists every retained gate of a filtered scan under the
// given run and window index, in one transaction.
func (s *RunStore) InsertScan(runID string, scanIndex int, scan *fitacf.Scan) error {
	return s.retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		stmt, err := tx.Prepare(`
			INSERT INTO medfilt_gates (
				run_id, scan_index, bmnum, beam_time, gate,
				v, w_l, p_l, v_mad, gflg, gflg_conv, gflg_kde
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			tx.Rollback()
			return err
		}
		defer stmt.Close()
		for _, b := range scan.Beams {
			for i, gate := range b.SList {
				_, err := stmt.Exec(
					runID, scanIndex, b.Bmnum, b.Time.UnixNano(), gate,
					b.V[i], b.WL[i], b.PL[i], floatOrZero(b.VMAD, i),
					b.Gflg[i], intOrZero(b.GflgConv, i), intOrZero(b.GflgKDE, i),
				)
				if err != nil {
					tx.Rollback()
					return err
				}
			}
		}
		return tx.Commit()
	})
}

// ListRuns returns all runs, newest first.
func (s *RunStore) ListRuns() ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT run_id, radar, thresh, pth, pbnd_low, pbnd_high,
		       gflg_variant, scan_count, created_at
		FROM medfilt_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []*Run
	for rows.Next() {
		r := &Run{}
		if err := rows.Scan(&r.RunID, &r.Radar, &r.Thresh, &r.Pth, &r.PbndLow,
			&r.PbndHigh, &r.GflgVariant, &r.ScanCount, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GatesForRun returns a run's gates ordered by (scan index, beam, gate).
func (s *RunStore) GatesForRun(runID string) ([]*GateRow, error) {
	rows, err := s.db.Query(`
		SELECT run_id, scan_index, bmnum, beam_time, gate,
		       v, w_l, p_l, v_mad, gflg, gflg_conv, gflg_kde
		FROM medfilt_gates WHERE run_id = ?
		ORDER BY scan_index, bmnum, gate`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var gates []*GateRow
	for rows.Next() {
		g := &GateRow{}
		if err := rows.Scan(&g.RunID, &g.ScanIndex, &g.Bmnum, &g.BeamTime, &g.Gate,
			&g.V, &g.WL, &g.PL, &g.VMAD, &g.Gflg, &g.GflgConv, &g.GflgKDE); err != nil {
			return nil, err
		}
		gates = append(gates, g)
	}
	return gates, rows.Err()
}

func floatOrZero(xs []float64, i int) float64 {
	if i >= len(xs) {
		return 0
	}
	return xs[i]
}

func intOrZero(xs []int, i int) int {
	if i >= len(xs) {
		return 0
	}
	return xs[i]
}

// retryOnBusy retries a write a few times when SQLite reports the database
// locked by a concurrent writer. Non-busy errors return immediately.
func (s *RunStore) retryOnBusy(fn func() error) error {
	const maxAttempts = 5
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !isBusyError(err) {
			return err
		}
		s.clock.Sleep(time.Duration(attempt+1) * 50 * time.Millisecond)
	}
	return err
}

func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

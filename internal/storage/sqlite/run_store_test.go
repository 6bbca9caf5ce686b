package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shibaji7/uah/internal/fitacf"
	"github.com/shibaji7/uah/internal/timeutil"
)

func openTestStore(t *testing.T) *RunStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "medfilt.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func filteredScan(t *testing.T) *fitacf.Scan {
	t.Helper()
	b := &fitacf.Beam{
		Bmnum: 6, Time: time.Date(2015, 3, 17, 3, 2, 0, 0, time.UTC),
		Freq: 12000, SkyNoise: 8, NRang: 75,
		SList:    []int{20, 31},
		V:        []float64{42.5, -12},
		WL:       []float64{30, 80},
		PL:       []float64{12, 10},
		Gflg:     []int{1, 0},
		VMAD:     []float64{1.5, 3},
		GflgConv: []int{1, 2},
		GflgKDE:  []int{1, 0},
	}
	s := fitacf.NewScan("normal")
	s.Beams = []*fitacf.Beam{b}
	s.UpdateTime()
	return s
}

func TestInsertRunGeneratesID(t *testing.T) {
	store := openTestStore(t)
	run := &Run{Radar: "sas", Thresh: 0.4, Pth: 0.25, PbndLow: 0.2, PbndHigh: 0.8, GflgVariant: -1, ScanCount: 3}
	require.NoError(t, store.InsertRun(run))
	assert.NotEmpty(t, run.RunID)
	assert.NotZero(t, run.CreatedAt)

	runs, err := store.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "sas", runs[0].Radar)
	assert.Equal(t, 0.4, runs[0].Thresh)
	assert.Equal(t, -1, runs[0].GflgVariant)
}

func TestListRunsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	old := &Run{Radar: "sas", CreatedAt: 100}
	newer := &Run{Radar: "bks", CreatedAt: 200}
	require.NoError(t, store.InsertRun(old))
	require.NoError(t, store.InsertRun(newer))

	runs, err := store.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "bks", runs[0].Radar)
	assert.Equal(t, "sas", runs[1].Radar)
}

func TestInsertScanAndGatesRoundTrip(t *testing.T) {
	store := openTestStore(t)
	run := &Run{Radar: "sas"}
	require.NoError(t, store.InsertRun(run))

	scan := filteredScan(t)
	require.NoError(t, store.InsertScan(run.RunID, 0, scan))
	require.NoError(t, store.InsertScan(run.RunID, 1, scan))

	gates, err := store.GatesForRun(run.RunID)
	require.NoError(t, err)
	require.Len(t, gates, 4)

	g := gates[0]
	assert.Equal(t, 0, g.ScanIndex)
	assert.Equal(t, 6, g.Bmnum)
	assert.Equal(t, 20, g.Gate)
	assert.Equal(t, 42.5, g.V)
	assert.Equal(t, 1.5, g.VMAD)
	assert.Equal(t, 1, g.GflgConv)
	assert.Equal(t, scan.Beams[0].Time.UnixNano(), g.BeamTime)

	// second scan's gates follow in scan-index order
	assert.Equal(t, 1, gates[2].ScanIndex)
}

func TestGatesForUnknownRun(t *testing.T) {
	store := openTestStore(t)
	gates, err := store.GatesForRun("nope")
	require.NoError(t, err)
	assert.Empty(t, gates)
}

func TestRetryOnBusy(t *testing.T) {
	t.Run("busy then success", func(t *testing.T) {
		store := openTestStore(t)
		clock := timeutil.NewMockClock(time.Unix(0, 0))
		store.clock = clock
		calls := 0
		err := store.retryOnBusy(func() error {
			calls++
			if calls < 3 {
				return errors.New("database is locked (5) (SQLITE_BUSY)")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
		// linear backoff: 50ms after the first failure, 100ms after the second
		assert.Equal(t, []time.Duration{50 * time.Millisecond, 100 * time.Millisecond}, clock.Sleeps())
	})

	t.Run("non-busy error returns immediately", func(t *testing.T) {
		store := openTestStore(t)
		clock := timeutil.NewMockClock(time.Unix(0, 0))
		store.clock = clock
		calls := 0
		wantErr := errors.New("constraint failed")
		err := store.retryOnBusy(func() error {
			calls++
			return wantErr
		})
		assert.ErrorIs(t, err, wantErr)
		assert.Equal(t, 1, calls)
		assert.Empty(t, clock.Sleeps())
	})

	t.Run("persistent busy gives up", func(t *testing.T) {
		store := openTestStore(t)
		store.clock = timeutil.NewMockClock(time.Unix(0, 0))
		calls := 0
		err := store.retryOnBusy(func() error {
			calls++
			return errors.New("SQLITE_BUSY")
		})
		assert.Error(t, err)
		assert.Equal(t, 5, calls)
	})
}

func TestInsertRunStampsCreatedAtFromClock(t *testing.T) {
	store := openTestStore(t)
	at := time.Date(2026, 7, 4, 10, 30, 0, 0, time.UTC)
	store.clock = timeutil.NewMockClock(at)

	run := &Run{Radar: "bks", Thresh: 0.4}
	require.NoError(t, store.InsertRun(run))
	assert.Equal(t, at.UnixNano(), run.CreatedAt)
}

func TestIsBusyError(t *testing.T) {
	assert.False(t, isBusyError(nil))
	assert.True(t, isBusyError(errors.New("database is locked")))
	assert.True(t, isBusyError(errors.New("SQLITE_BUSY")))
	assert.False(t, isBusyError(errors.New("no such table")))
}

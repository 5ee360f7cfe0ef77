package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AraDetector/internal/domain/models"
	domrepo "AraDetector/internal/domain/repository"
	"AraDetector/pkg/sqldb"
)

func newSQLiteStore(t *testing.T) *SQLResultStore {
	t.Helper()
	db, err := sqldb.Open(context.Background(), sqldb.Config{Driver: sqldb.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	s := NewSQLResultStore(db, 0, nil)
	require.NoError(t, s.Init(context.Background()))
	require.NoError(t, s.Init(context.Background()), "init is idempotent")
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLResultStoreRoundTrip(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	in := sampleResult("BBCA", "2025-03-03", 100, models.AlertCritical)
	in.Sources = map[string]string{"profile": "timeout"}
	require.NoError(t, s.Upsert(ctx, []models.ScoreResult{in}))

	got, err := s.Query(ctx, domrepo.ResultFilter{Date: "2025-03-03"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, in.Instrument, got[0].Instrument)
	assert.Equal(t, in.EvaluationDate, got[0].EvaluationDate)
	assert.Equal(t, in.CompositeScore, got[0].CompositeScore)
	assert.Equal(t, in.AlertLevel, got[0].AlertLevel)
	assert.True(t, got[0].OfferThin)
	assert.True(t, got[0].AccumulationBelowPrice)
	assert.InDelta(t, 13.64, got[0].DistanceToLimitPct, 1e-9)
	assert.Equal(t, in.Signals, got[0].Signals)
	assert.Equal(t, in.Sources, got[0].Sources)
	assert.True(t, in.EvaluatedAt.Equal(got[0].EvaluatedAt))
}

func TestSQLResultStoreUpsertReplacesSameDay(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, []models.ScoreResult{sampleResult("BBCA", "2025-03-03", 40, models.AlertMedium)}))
	require.NoError(t, s.Upsert(ctx, []models.ScoreResult{sampleResult("BBCA", "2025-03-03", 80, models.AlertCritical)}))
	require.NoError(t, s.Upsert(ctx, []models.ScoreResult{sampleResult("BBCA", "2025-03-04", 10, models.AlertLow)}))

	got, err := s.Query(ctx, domrepo.ResultFilter{Date: "2025-03-03"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 80, got[0].CompositeScore)

	all, err := s.Query(ctx, domrepo.ResultFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSQLResultStoreFilters(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	date := "2025-03-03"
	require.NoError(t, s.Upsert(ctx, []models.ScoreResult{
		sampleResult("AAAA", date, 20, models.AlertLow),
		sampleResult("BBBB", date, 60, models.AlertHigh),
		sampleResult("CCCC", date, 90, models.AlertCritical),
		sampleResult("DDDD", date, 60, models.AlertHigh),
	}))

	got, err := s.Query(ctx, domrepo.ResultFilter{Date: date})
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"CCCC", "BBBB", "DDDD", "AAAA"}, instruments(got))

	got, err = s.Query(ctx, domrepo.ResultFilter{Date: date, MinScore: 50})
	require.NoError(t, err)
	assert.Equal(t, []string{"CCCC", "BBBB", "DDDD"}, instruments(got))

	got, err = s.Query(ctx, domrepo.ResultFilter{Date: date, AlertLevel: models.AlertHigh})
	require.NoError(t, err)
	assert.Equal(t, []string{"BBBB", "DDDD"}, instruments(got))

	got, err = s.Query(ctx, domrepo.ResultFilter{Date: date, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"CCCC"}, instruments(got))
}

func TestSQLResultStoreEmpty(t *testing.T) {
	s := newSQLiteStore(t)
	require.NoError(t, s.Upsert(context.Background(), nil))
	got, err := s.Query(context.Background(), domrepo.ResultFilter{Date: "2025-01-01"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, s.Health(context.Background()))
}

func TestSQLResultStoreUnknownSectorIsEmpty(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	in := sampleResult("GOTO", "2025-03-03", 35, models.AlertMedium)
	in.Sector = ""
	require.NoError(t, s.Upsert(ctx, []models.ScoreResult{in}))
	got, err := s.Query(ctx, domrepo.ResultFilter{Date: "2025-03-03"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "", got[0].Sector)

	_, err = s.db.ExecContext(ctx, `INSERT INTO `+resultsTable+
		` (scan_date, instrument, score, alert_level, scanned_at) VALUES (?, ?, ?, ?, ?)`,
		"2025-03-04", "BUKA", 0, "LOW", "2025-03-04T09:00:00Z")
	require.NoError(t, err)
	var sector string
	require.NoError(t, s.db.GetContext(ctx, &sector,
		`SELECT sector FROM `+resultsTable+` WHERE instrument = ?`, "BUKA"))
	assert.Equal(t, "", sector, "column default matches the engine's unknown sector")
}

func TestUpsertStatementCoversEveryColumn(t *testing.T) {
	q := upsertStatement()
	assert.Contains(t, q, "ON CONFLICT (scan_date, instrument) DO UPDATE SET sector = EXCLUDED.sector")
	assert.Contains(t, q, "scanned_at = EXCLUDED.scanned_at")
	assert.NotContains(t, q, "instrument = EXCLUDED")
}

func instruments(rs []models.ScoreResult) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Instrument
	}
	return out
}

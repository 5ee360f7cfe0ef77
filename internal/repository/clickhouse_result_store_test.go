package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AraDetector/internal/domain/models"
	domrepo "AraDetector/internal/domain/repository"
	pkgch "AraDetector/pkg/clickhouse"
)

func newMockCHStore(t *testing.T) (*CHResultStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewCHResultStore(pkgch.NewFromDB(db), nil), mock
}

func TestCHResultStoreInit(t *testing.T) {
	s, mock := newMockCHStore(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS ara_detector_results")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Init(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCHResultStoreUpsertSingleStatement(t *testing.T) {
	s, mock := newMockCHStore(t)
	a := sampleResult("AAAA", "2025-03-03", 80, models.AlertCritical)
	b := sampleResult("BBBB", "2025-03-03", 40, models.AlertMedium)

	rowA, err := toRow(a)
	require.NoError(t, err)
	rowB, err := toRow(b)
	require.NoError(t, err)
	args := make([]driver.Value, 0, 2*len(resultColumns))
	for _, v := range append(rowA.args(), rowB.args()...) {
		args = append(args, v)
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ara_detector_results (scan_date, instrument,")).
		WithArgs(args...).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, s.Upsert(context.Background(), []models.ScoreResult{a, b}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCHResultStoreUpsertError(t *testing.T) {
	s, mock := newMockCHStore(t)
	mock.ExpectExec("INSERT INTO ara_detector_results").WillReturnError(errors.New("too many parts"))

	err := s.Upsert(context.Background(), []models.ScoreResult{sampleResult("AAAA", "2025-03-03", 80, models.AlertCritical)})
	assert.ErrorContains(t, err, "too many parts")
}

func TestCHResultStoreQueryUsesFinal(t *testing.T) {
	s, mock := newMockCHStore(t)
	in := sampleResult("AAAA", "2025-03-03", 80, models.AlertCritical)
	row, err := toRow(in)
	require.NoError(t, err)
	values := make([]driver.Value, 0, len(resultColumns))
	for _, v := range row.args() {
		values = append(values, v)
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM ara_detector_results FINAL WHERE scan_date = ? AND score >= ? AND alert_level = ? ORDER BY score DESC")).
		WithArgs("2025-03-03", 50, "CRITICAL", 200).
		WillReturnRows(sqlmock.NewRows(resultColumns).AddRow(values...))

	got, err := s.Query(context.Background(), domrepo.ResultFilter{
		Date: "2025-03-03", MinScore: 50, AlertLevel: "critical",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "AAAA", got[0].Instrument)
	assert.Equal(t, 80, got[0].CompositeScore)
	assert.Equal(t, in.Signals, got[0].Signals)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectResultsWithoutFilters(t *testing.T) {
	q, args := selectResults(resultsTable, domrepo.ResultFilter{}.Normalize())
	assert.NotContains(t, q, "WHERE")
	assert.Equal(t, []interface{}{domrepo.DefaultResultLimit}, args)
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AraDetector/internal/domain/models"
	domrepo "AraDetector/internal/domain/repository"
)

type stubEvaluator struct {
	gotCode, gotDate string
	err              error
}

func (s *stubEvaluator) Evaluate(_ context.Context, instrument, date string) (models.ScoreResult, error) {
	s.gotCode, s.gotDate = instrument, date
	if s.err != nil {
		return models.ScoreResult{}, s.err
	}
	return models.ScoreResult{Instrument: instrument, CompositeScore: 80, AlertLevel: models.AlertCritical}, nil
}

type stubScanner struct {
	report *models.ScanReport
	err    error
	calls  int
}

func (s *stubScanner) Scan(context.Context, string) (*models.ScanReport, error) {
	s.calls++
	return s.report, s.err
}

func (s *stubScanner) Today() string { return "2025-03-03" }

type stubResults struct {
	filter    domrepo.ResultFilter
	rows      []models.ScoreResult
	healthErr error
}

func (s *stubResults) Query(_ context.Context, f domrepo.ResultFilter) ([]models.ScoreResult, error) {
	s.filter = f
	return s.rows, nil
}

func (s *stubResults) Health(context.Context) error { return s.healthErr }

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func serve(t *testing.T, h *AraDetectorHandler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestListStoredResultsDefaultsToToday(t *testing.T) {
	rr := &stubResults{rows: []models.ScoreResult{{Instrument: "BBCA", CompositeScore: 90}}}
	h := NewAraDetectorHandler(nil, &stubEvaluator{}, &stubScanner{}, rr, nil)

	rec, env := serve(t, h, http.MethodGet, "/api/ara-detector?minScore=50&alertLevel=high", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-03-03", rr.filter.Date)
	assert.Equal(t, 50, rr.filter.MinScore)
	assert.Equal(t, models.AlertHigh, rr.filter.AlertLevel)
	assert.Equal(t, 200, rr.filter.Limit)

	var page models.ResultsPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "BBCA", page.Results[0].Instrument)
}

func TestListRejectsBadQuery(t *testing.T) {
	h := NewAraDetectorHandler(nil, &stubEvaluator{}, &stubScanner{}, &stubResults{}, nil)

	for _, q := range []string{"date=03-03-2025", "minScore=101", "alertLevel=EXTREME", "limit=5000"} {
		rec, _ := serve(t, h, http.MethodGet, "/api/ara-detector?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestListWatchlistScan(t *testing.T) {
	sc := &stubScanner{report: &models.ScanReport{Date: "2025-03-03", Results: []models.ScoreResult{}, Message: "Watchlist kosong"}}
	h := NewAraDetectorHandler(nil, &stubEvaluator{}, sc, &stubResults{}, nil)

	rec, env := serve(t, h, http.MethodGet, "/api/ara-detector?watchlist=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, sc.calls)

	var rep models.ScanReport
	require.NoError(t, json.Unmarshal(env.Data, &rep))
	assert.Equal(t, "Watchlist kosong", rep.Message)
}

func TestListWatchlistScanFailure(t *testing.T) {
	sc := &stubScanner{err: errors.New("fetch watchlist: 503")}
	h := NewAraDetectorHandler(nil, &stubEvaluator{}, sc, &stubResults{}, nil)

	rec, _ := serve(t, h, http.MethodGet, "/api/ara-detector?watchlist=true", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestWatchlistScanRateLimited(t *testing.T) {
	sc := &stubScanner{}
	h := NewAraDetectorHandler(nil, &stubEvaluator{}, sc, &stubResults{}, denyAll{})

	rec, _ := serve(t, h, http.MethodGet, "/api/ara-detector?watchlist=true", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Zero(t, sc.calls)
}

func TestEvaluate(t *testing.T) {
	ev := &stubEvaluator{}
	h := NewAraDetectorHandler(nil, ev, &stubScanner{}, &stubResults{}, nil)

	rec, env := serve(t, h, http.MethodPost, "/api/ara-detector", `{"instrument":"bbri"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "BBRI", ev.gotCode)
	assert.Equal(t, "2025-03-03", ev.gotDate)

	var res models.ScoreResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 80, res.CompositeScore)
}

func TestEvaluateAcceptsEmitenAlias(t *testing.T) {
	ev := &stubEvaluator{}
	h := NewAraDetectorHandler(nil, ev, &stubScanner{}, &stubResults{}, nil)

	rec, _ := serve(t, h, http.MethodPost, "/api/ara-detector", `{"emiten":"tlkm","date":"2025-02-28"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "TLKM", ev.gotCode)
	assert.Equal(t, "2025-02-28", ev.gotDate)
}

func TestEvaluateMissingInstrument(t *testing.T) {
	ev := &stubEvaluator{}
	h := NewAraDetectorHandler(nil, ev, &stubScanner{}, &stubResults{}, nil)

	rec, _ := serve(t, h, http.MethodPost, "/api/ara-detector", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, ev.gotCode)
}

func TestEvaluateErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.ErrInvalidInstrument, http.StatusBadRequest},
		{&models.InstrumentError{Instrument: "BBRI", Err: &models.SourceError{Source: models.SourceOrderBook, Err: errors.New("503")}}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		h := NewAraDetectorHandler(nil, &stubEvaluator{err: tt.err}, &stubScanner{}, &stubResults{}, nil)
		rec, _ := serve(t, h, http.MethodPost, "/api/ara-detector", `{"instrument":"BBRI"}`)
		assert.Equal(t, tt.want, rec.Code, tt.err.Error())
	}
}

func TestEvaluateRateLimited(t *testing.T) {
	ev := &stubEvaluator{}
	h := NewAraDetectorHandler(nil, ev, &stubScanner{}, &stubResults{}, denyAll{})

	rec, _ := serve(t, h, http.MethodPost, "/api/ara-detector", `{"instrument":"BBRI"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Empty(t, ev.gotCode)
}

func TestHealth(t *testing.T) {
	h := NewAraDetectorHandler(nil, &stubEvaluator{}, &stubScanner{}, &stubResults{}, nil)
	rec, _ := serve(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	h = NewAraDetectorHandler(nil, &stubEvaluator{}, &stubScanner{}, &stubResults{healthErr: errors.New("down")}, nil)
	rec, _ = serve(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

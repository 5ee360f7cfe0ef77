package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"AraDetector/internal/domain/models"
	domrepo "AraDetector/internal/domain/repository"
)

var errUpstream = errors.New("upstream down")

type fakeMarketData struct {
	mu sync.Mutex

	books     map[string]*models.RawOrderBook
	brokers   map[string]*models.RawBrokerSummary
	history   map[string][]models.RawSession
	profiles  map[string]*models.RawProfile
	watchlist []models.RawWatchlistItem

	failSource map[string]map[string]error // instrument -> source -> err
	watchErr   error
	delay      time.Duration

	historyArgs []string
	inFlight    int
	maxInFlight int
	calls       map[string]int
}

func newFakeMarketData() *fakeMarketData {
	return &fakeMarketData{
		books:      map[string]*models.RawOrderBook{},
		brokers:    map[string]*models.RawBrokerSummary{},
		history:    map[string][]models.RawSession{},
		profiles:   map[string]*models.RawProfile{},
		failSource: map[string]map[string]error{},
		calls:      map[string]int{},
	}
}

func (f *fakeMarketData) fail(instrument, source string, err error) {
	if f.failSource[instrument] == nil {
		f.failSource[instrument] = map[string]error{}
	}
	f.failSource[instrument][source] = err
}

func (f *fakeMarketData) enter(instrument, source string) error {
	f.mu.Lock()
	f.calls[source]++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	err := f.failSource[instrument][source]
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
	return err
}

func (f *fakeMarketData) OrderBook(_ context.Context, instrument string) (*models.RawOrderBook, error) {
	if err := f.enter(instrument, models.SourceOrderBook); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ob, ok := f.books[instrument]
	if !ok {
		return &models.RawOrderBook{}, nil
	}
	return ob, nil
}

func (f *fakeMarketData) BrokerSummary(_ context.Context, instrument, _ string) (*models.RawBrokerSummary, error) {
	if err := f.enter(instrument, models.SourceBroker); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.brokers[instrument], nil
}

func (f *fakeMarketData) History(_ context.Context, instrument, from, to string, limit int) ([]models.RawSession, error) {
	if err := f.enter(instrument, models.SourceHistory); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyArgs = []string{from, to}
	h := f.history[instrument]
	if limit > 0 && len(h) > limit {
		h = h[:limit]
	}
	return h, nil
}

func (f *fakeMarketData) Profile(_ context.Context, instrument string) (*models.RawProfile, error) {
	if err := f.enter(instrument, models.SourceProfile); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles[instrument], nil
}

func (f *fakeMarketData) Watchlist(context.Context) ([]models.RawWatchlistItem, error) {
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	return f.watchlist, nil
}

type fakeStore struct {
	mu        sync.Mutex
	upserted  []models.ScoreResult
	queried   []domrepo.ResultFilter
	rows      []models.ScoreResult
	upsertErr error
	queryErr  error
}

func (s *fakeStore) Init(context.Context) error { return nil }

func (s *fakeStore) Upsert(_ context.Context, rs []models.ScoreResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted = append(s.upserted, rs...)
	return nil
}

func (s *fakeStore) Query(_ context.Context, f domrepo.ResultFilter) ([]models.ScoreResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queried = append(s.queried, f)
	return s.rows, s.queryErr
}

func (s *fakeStore) Health(context.Context) error { return nil }
func (s *fakeStore) Close() error                 { return nil }

type fakePublisher struct {
	got []models.ScoreResult
	err error
}

func (p *fakePublisher) Publish(_ context.Context, rs []models.ScoreResult) (int, error) {
	p.got = append(p.got, rs...)
	if p.err != nil {
		return 0, p.err
	}
	return len(rs), nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeMetrics struct {
	mu     sync.Mutex
	errors map[string]int
	scores map[string]int
	alerts map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{errors: map[string]int{}, scores: map[string]int{}, alerts: map[string]int{}}
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

func (m *fakeMetrics) RecordScore(instrument string, score int) {
	m.mu.Lock()
	m.scores[instrument] = score
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordAlert(level string) {
	m.mu.Lock()
	m.alerts[level]++
	m.mu.Unlock()
}

// hotInstrument sets up market data where every signal fires.
func hotInstrument(md *fakeMarketData, code string) {
	md.books[code] = &models.RawOrderBook{
		Close: 1100,
		TotalBidOffer: models.RawBidOffer{
			Bid:   models.RawLot{Lot: 120000},
			Offer: models.RawLot{Lot: 30000},
		},
	}
	md.brokers[code] = &models.RawBrokerSummary{
		Detector: models.RawDetector{BrokerAccdist: "Big Accumulation", Top3: models.RawTopN{Percent: 25}},
		Buyers:   []models.RawBrokerFlow{{Code: "CC", Value: 9e6, AvgPrice: 1020}},
	}
	md.history[code] = []models.RawSession{
		{Date: "2025-03-03", Close: 1100, Volume: 500000, NetForeign: 1e9},
		{Date: "2025-02-28", Close: 1000, Volume: 200000},
		{Date: "2025-02-27", Close: 950, Volume: 100000},
		{Date: "2025-02-26", Close: 960, Volume: 100000},
	}
	md.profiles[code] = &models.RawProfile{Sector: "Finance"}
}

package repository

import (
	"context"

	"AraDetector/internal/domain/models"
)

// MarketData fetches the raw upstream records for one instrument. Each call is a single read.
type MarketData interface {
	OrderBook(ctx context.Context, instrument string) (*models.RawOrderBook, error)
	BrokerSummary(ctx context.Context, instrument, date string) (*models.RawBrokerSummary, error)
	History(ctx context.Context, instrument, from, to string, limit int) ([]models.RawSession, error)
	Profile(ctx context.Context, instrument string) (*models.RawProfile, error)
	Watchlist(ctx context.Context) ([]models.RawWatchlistItem, error)
}

type ResultStore interface {
	Init(ctx context.Context) error // ensure tables
	Upsert(ctx context.Context, results []models.ScoreResult) error
	Query(ctx context.Context, filter ResultFilter) ([]models.ScoreResult, error)
	Health(ctx context.Context) error
	Close() error
}

// AlertPublisher emits results to downstream consumers and reports how many were sent.
type AlertPublisher interface {
	Publish(ctx context.Context, results []models.ScoreResult) (int, error)
	Close() error
}

type Metrics interface {
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordScore(instrument string, score int)
	RecordAlert(level string)
}

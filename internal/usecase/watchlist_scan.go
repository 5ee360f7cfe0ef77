package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"AraDetector/internal/domain/models"
	domrepo "AraDetector/internal/domain/repository"
	"AraDetector/pkg/logger"
	"AraDetector/pkg/metrics"
	"AraDetector/pkg/util"
)

const emptyWatchlistMessage = "Watchlist kosong"

// WatchlistScanUseCase evaluates the whole watchlist, persists the results and publishes alerts.
type WatchlistScanUseCase struct {
	md        domrepo.MarketData
	evaluator *AraEvaluator
	store     domrepo.ResultStore
	publisher domrepo.AlertPublisher
	metrics   domrepo.Metrics
	log       *logger.Logger
	loc       *time.Location
	now       func() time.Time
	onSaved   []SaveListener
}

// SaveListener is told which date was written after a successful upsert.
type SaveListener interface {
	Invalidate(ctx context.Context, date string)
}

func NewWatchlistScanUseCase(
	md domrepo.MarketData,
	evaluator *AraEvaluator,
	store domrepo.ResultStore,
	publisher domrepo.AlertPublisher,
	m domrepo.Metrics,
	l *logger.Logger,
	loc *time.Location,
) *WatchlistScanUseCase {
	if m == nil {
		m = metrics.Noop{}
	}
	if l == nil {
		l = logger.Nop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &WatchlistScanUseCase{
		md:        md,
		evaluator: evaluator,
		store:     store,
		publisher: publisher,
		metrics:   m,
		log:       l,
		loc:       loc,
		now:       time.Now,
	}
}

// NotifyOnSave registers listeners invoked after results for a date are persisted.
func (uc *WatchlistScanUseCase) NotifyOnSave(listeners ...SaveListener) *WatchlistScanUseCase {
	uc.onSaved = append(uc.onSaved, listeners...)
	return uc
}

// Today returns the current date in the market timezone.
func (uc *WatchlistScanUseCase) Today() string {
	return uc.now().In(uc.loc).Format(util.DateLayout)
}

// Scan runs one watchlist scan for date (today in the market timezone when empty).
// Only a watchlist fetch failure fails the scan.
func (uc *WatchlistScanUseCase) Scan(ctx context.Context, date string) (*models.ScanReport, error) {
	if date == "" {
		date = uc.Today()
	}
	report := &models.ScanReport{
		ScanID:    uuid.NewString(),
		Date:      date,
		StartedAt: uc.now().UTC(),
		Results:   []models.ScoreResult{},
	}
	scanLog := uc.log.With(logger.String("scan_id", report.ScanID), logger.String("date", date))

	items, err := uc.md.Watchlist(ctx)
	if err != nil {
		uc.metrics.RecordError("watchlist")
		return nil, fmt.Errorf("fetch watchlist: %w", err)
	}
	codes := make([]string, 0, len(items))
	for _, it := range items {
		codes = append(codes, it.Code())
	}
	codes = dedupe(codes)
	if len(codes) == 0 {
		report.Message = emptyWatchlistMessage
		scanLog.Info("watchlist empty")
		return report, nil
	}

	batch := uc.evaluator.EvaluateBatch(ctx, codes, date)
	report.Failures = append(report.Failures, batch.Failures...)

	saved := batch.Results
	if len(saved) > 0 {
		if err := uc.store.Upsert(ctx, saved); err != nil {
			uc.metrics.RecordError("store")
			scanLog.Error("save results failed", logger.Error(err), logger.Int("count", len(saved)))
			for _, r := range saved {
				report.Failures = append(report.Failures, models.BatchFailure{
					Instrument: r.Instrument,
					Reason:     fmt.Sprintf("save: %v", err),
				})
			}
			saved = nil
		} else {
			for _, l := range uc.onSaved {
				l.Invalidate(ctx, date)
			}
		}
	}

	if len(saved) > 0 {
		n, err := uc.publisher.Publish(ctx, saved)
		report.Published = n
		if err != nil {
			uc.metrics.RecordError("publish")
			scanLog.Error("publish alerts failed", logger.Error(err), logger.Int("published", n))
		}
	}

	SortByScore(saved)
	report.Results = append(report.Results, saved...)
	report.Total = len(report.Results)
	report.Errors = len(report.Failures)

	uc.metrics.RecordLatency("scan", uc.now().Sub(report.StartedAt).Seconds())
	scanLog.Info("watchlist scan finished",
		logger.Int("instruments", len(codes)),
		logger.Int("total", report.Total),
		logger.Int("errors", report.Errors),
		logger.Int("published", report.Published),
	)
	return report, nil
}

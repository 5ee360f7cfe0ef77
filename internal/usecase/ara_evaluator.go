package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"AraDetector/internal/domain/models"
	domrepo "AraDetector/internal/domain/repository"
	"AraDetector/internal/services/scoring"
	"AraDetector/pkg/logger"
	"AraDetector/pkg/metrics"
	"AraDetector/pkg/util"
)

// EvaluatorOptions tunes fetching and batch concurrency.
type EvaluatorOptions struct {
	Workers         int
	HistorySessions int
	LookbackDays    int
	Timeout         time.Duration
}

func (o EvaluatorOptions) withDefaults() EvaluatorOptions {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.HistorySessions <= 0 {
		o.HistorySessions = 10
	}
	if o.LookbackDays <= 0 {
		o.LookbackDays = 15
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	return o
}

// AraEvaluator fetches market data for instruments and scores them.
type AraEvaluator struct {
	md      domrepo.MarketData
	engine  *scoring.Engine
	metrics domrepo.Metrics
	log     *logger.Logger
	opts    EvaluatorOptions
}

func NewAraEvaluator(md domrepo.MarketData, engine *scoring.Engine, m domrepo.Metrics, l *logger.Logger, opts EvaluatorOptions) *AraEvaluator {
	if engine == nil {
		engine = scoring.NewEngine()
	}
	if l == nil {
		l = logger.Nop()
	}
	if m == nil {
		m = metrics.Noop{}
	}
	return &AraEvaluator{md: md, engine: engine, metrics: m, log: l, opts: opts.withDefaults()}
}

// Evaluate scores one instrument for date (YYYY-MM-DD). Only an order book failure is fatal;
// other sources fall back to empty defaults and are listed in ScoreResult.Sources.
func (uc *AraEvaluator) Evaluate(ctx context.Context, instrument, date string) (models.ScoreResult, error) {
	code := util.NormalizeCode(instrument)
	if code == "" {
		return models.ScoreResult{}, models.ErrInvalidInstrument
	}
	start := time.Now()
	defer func() { uc.metrics.RecordLatency("evaluate", time.Since(start).Seconds()) }()

	ctx, cancel := context.WithTimeout(ctx, uc.opts.Timeout)
	defer cancel()

	src, failures := uc.fetch(ctx, code, date)
	for source := range failures {
		uc.metrics.RecordError(source)
	}
	if err, ok := failures[models.SourceOrderBook]; ok {
		return models.ScoreResult{}, &models.InstrumentError{
			Instrument: code,
			Err:        &models.SourceError{Source: models.SourceOrderBook, Err: err},
		}
	}

	res := uc.engine.Score(scoring.Normalize(code, src), date)
	if len(failures) > 0 {
		res.Sources = make(map[string]string, len(failures))
		for source, err := range failures {
			res.Sources[source] = err.Error()
		}
		uc.log.Warn("evaluated with degraded sources",
			logger.String("instrument", code),
			logger.Any("degraded", res.Sources),
		)
	}

	uc.metrics.RecordScore(code, res.CompositeScore)
	uc.metrics.RecordAlert(string(res.AlertLevel))
	uc.log.Debug("instrument evaluated",
		logger.String("instrument", code),
		logger.String("date", date),
		logger.Int("score", res.CompositeScore),
		logger.String("level", string(res.AlertLevel)),
		logger.Strings("signals", res.ActiveSignals()),
	)
	return res, nil
}

// fetch issues the four source reads concurrently and waits for all of them.
func (uc *AraEvaluator) fetch(ctx context.Context, code, date string) (models.RawSources, map[string]error) {
	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 4)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.md.OrderBook(ctx, code)
		ch <- item{models.SourceOrderBook, v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.md.BrokerSummary(ctx, code, date)
		ch <- item{models.SourceBroker, v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		from := util.ShiftDate(date, -uc.opts.LookbackDays)
		v, err := uc.md.History(ctx, code, from, date, uc.opts.HistorySessions)
		ch <- item{models.SourceHistory, v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.md.Profile(ctx, code)
		ch <- item{models.SourceProfile, v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	var src models.RawSources
	failures := map[string]error{}
	for it := range ch {
		if it.err != nil {
			failures[it.name] = it.err
			continue
		}
		switch it.name {
		case models.SourceOrderBook:
			src.OrderBook = it.val.(*models.RawOrderBook)
		case models.SourceBroker:
			src.Broker = it.val.(*models.RawBrokerSummary)
		case models.SourceHistory:
			src.History = it.val.([]models.RawSession)
		case models.SourceProfile:
			src.Profile = it.val.(*models.RawProfile)
		}
	}
	if src.OrderBook == nil {
		if _, failed := failures[models.SourceOrderBook]; !failed {
			failures[models.SourceOrderBook] = fmt.Errorf("empty response")
		}
	}
	return src, failures
}

// EvaluateBatch scores every distinct instrument with a bounded worker pool. Failures are
// collected per instrument and never abort the batch. Result order is not guaranteed.
func (uc *AraEvaluator) EvaluateBatch(ctx context.Context, instruments []string, date string) models.BatchResult {
	codes := dedupe(instruments)
	var (
		out models.BatchResult
		mu  sync.Mutex
		wg  sync.WaitGroup
	)
	if len(codes) == 0 {
		return out
	}

	start := time.Now()
	jobs := make(chan string)
	workers := uc.opts.Workers
	if workers > len(codes) {
		workers = len(codes)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for code := range jobs {
				res, err := uc.Evaluate(ctx, code, date)
				mu.Lock()
				if err != nil {
					out.Failures = append(out.Failures, models.BatchFailure{Instrument: code, Reason: err.Error()})
				} else {
					out.Results = append(out.Results, res)
				}
				mu.Unlock()
			}
		}()
	}

	var skipped []string
	for i, code := range codes {
		select {
		case jobs <- code:
		case <-ctx.Done():
			skipped = codes[i:]
		}
		if skipped != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	for _, code := range skipped {
		out.Failures = append(out.Failures, models.BatchFailure{Instrument: code, Reason: ctx.Err().Error()})
	}
	for range out.Failures {
		uc.metrics.RecordError("batch_item")
	}
	uc.metrics.RecordLatency("evaluate_batch", time.Since(start).Seconds())
	uc.log.Info("batch evaluated",
		logger.Int("instruments", len(codes)),
		logger.Int("ok", len(out.Results)),
		logger.Int("failed", len(out.Failures)),
		logger.Duration("took_ms", time.Since(start)),
	)
	return out
}

// dedupe normalizes codes and drops blanks and repeats, keeping first-seen order.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		code := util.NormalizeCode(s)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

// SortByScore orders results by composite score, highest first. Ties keep their order.
func SortByScore(results []models.ScoreResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CompositeScore > results[j].CompositeScore
	})
}

package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"AraDetector/internal/domain/models"
	domrepo "AraDetector/internal/domain/repository"
	"AraDetector/internal/service/cache"
	"AraDetector/pkg/logger"
)

const resultsKeyPrefix = "results:"

// ResultsUseCase reads stored results through a short-lived cache.
type ResultsUseCase struct {
	store domrepo.ResultStore
	cache cache.BytesCache
	ttl   time.Duration
	log   *logger.Logger
}

func NewResultsUseCase(store domrepo.ResultStore, c cache.BytesCache, ttl time.Duration, l *logger.Logger) *ResultsUseCase {
	if l == nil {
		l = logger.Nop()
	}
	return &ResultsUseCase{store: store, cache: c, ttl: ttl, log: l}
}

// Query returns stored results matching filter, highest score first.
func (uc *ResultsUseCase) Query(ctx context.Context, filter domrepo.ResultFilter) ([]models.ScoreResult, error) {
	filter = filter.Normalize()
	key := resultsKeyPrefix + filter.Key()

	if uc.cache != nil && uc.ttl > 0 {
		if b, ok, err := uc.cache.GetBytes(ctx, key); err != nil {
			uc.log.Warn("results cache read failed", logger.Error(err))
		} else if ok {
			var cached []models.ScoreResult
			if err := json.Unmarshal(b, &cached); err == nil {
				return cached, nil
			}
		}
	}

	results, err := uc.store.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	if results == nil {
		results = []models.ScoreResult{}
	}

	if uc.cache != nil && uc.ttl > 0 {
		if b, err := json.Marshal(results); err == nil {
			if err := uc.cache.SetBytes(ctx, key, b, uc.ttl); err != nil {
				uc.log.Warn("results cache write failed", logger.Error(err))
			}
		}
	}
	return results, nil
}

// Invalidate drops cached pages for date and for undated queries, so reads after a save see fresh rows.
func (uc *ResultsUseCase) Invalidate(ctx context.Context, date string) {
	if uc.cache == nil {
		return
	}
	for _, d := range []string{date, ""} {
		prefix := resultsKeyPrefix + domrepo.ResultFilter{Date: d}.DatePrefix()
		if _, err := uc.cache.DeletePrefix(ctx, prefix); err != nil {
			uc.log.Warn("results cache invalidate failed", logger.String("date", d), logger.Error(err))
		}
	}
}

// Health reports whether the result store is reachable.
func (uc *ResultsUseCase) Health(ctx context.Context) error {
	return uc.store.Health(ctx)
}

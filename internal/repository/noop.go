package repository

import (
	"context"

	"AraDetector/internal/domain/models"
	domrepo "AraDetector/internal/domain/repository"
)

// NoopResultStore discards writes and returns no rows. Used when storage is disabled.
type NoopResultStore struct{}

func (NoopResultStore) Init(context.Context) error                         { return nil }
func (NoopResultStore) Upsert(context.Context, []models.ScoreResult) error { return nil }
func (NoopResultStore) Query(context.Context, domrepo.ResultFilter) ([]models.ScoreResult, error) {
	return []models.ScoreResult{}, nil
}
func (NoopResultStore) Health(context.Context) error { return nil }
func (NoopResultStore) Close() error                 { return nil }

// NoopAlertPublisher drops alerts. Used when alerting is disabled.
type NoopAlertPublisher struct{}

func (NoopAlertPublisher) Publish(context.Context, []models.ScoreResult) (int, error) { return 0, nil }
func (NoopAlertPublisher) Close() error                                               { return nil }

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AraDetector/internal/domain/models"
	domrepo "AraDetector/internal/domain/repository"
	"AraDetector/internal/service/cache"
)

func TestResultsQueryNormalizesFilter(t *testing.T) {
	store := &fakeStore{}
	uc := NewResultsUseCase(store, nil, 0, nil)

	got, err := uc.Query(context.Background(), domrepo.ResultFilter{Date: testDate})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	require.Len(t, store.queried, 1)
	assert.Equal(t, domrepo.DefaultResultLimit, store.queried[0].Limit)
}

func TestResultsQueryUsesCache(t *testing.T) {
	store := &fakeStore{rows: []models.ScoreResult{{Instrument: "AAAA", CompositeScore: 80}}}
	c := cache.NewTTLCache()
	uc := NewResultsUseCase(store, c, time.Minute, nil)
	filter := domrepo.ResultFilter{Date: testDate, MinScore: 50}

	first, err := uc.Query(context.Background(), filter)
	require.NoError(t, err)
	second, err := uc.Query(context.Background(), filter)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, store.queried, 1)

	_, err = uc.Query(context.Background(), domrepo.ResultFilter{Date: testDate, MinScore: 60})
	require.NoError(t, err)
	assert.Len(t, store.queried, 2)
}

func TestResultsQueryStoreError(t *testing.T) {
	store := &fakeStore{queryErr: errors.New("timeout")}
	uc := NewResultsUseCase(store, cache.NewTTLCache(), time.Minute, nil)

	_, err := uc.Query(context.Background(), domrepo.ResultFilter{})
	assert.ErrorContains(t, err, "timeout")
}

func TestResultsInvalidateDropsDateAndUndatedPages(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{rows: []models.ScoreResult{{Instrument: "AAAA", CompositeScore: 80}}}
	c := cache.NewTTLCache()
	uc := NewResultsUseCase(store, c, time.Minute, nil)

	for _, f := range []domrepo.ResultFilter{
		{Date: testDate}, {Date: testDate, MinScore: 60}, {}, {Date: "2025-03-02"},
	} {
		_, err := uc.Query(ctx, f)
		require.NoError(t, err)
	}
	require.Equal(t, 4, c.Len())

	uc.Invalidate(ctx, testDate)
	assert.Equal(t, 1, c.Len(), "only the other date stays cached")

	_, err := uc.Query(ctx, domrepo.ResultFilter{Date: testDate})
	require.NoError(t, err)
	assert.Len(t, store.queried, 5, "reads after invalidation go to the store")
}

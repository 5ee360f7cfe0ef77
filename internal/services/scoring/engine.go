package scoring

import (
	"time"

	"AraDetector/internal/domain/models"
	domsvc "AraDetector/internal/domain/service"
)

// Engine turns a snapshot into a ScoreResult. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	classifier domsvc.StatusClassifier
	now        func() time.Time
}

type Option func(*Engine)

// WithClassifier swaps the accumulation status matcher.
func WithClassifier(c domsvc.StatusClassifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.classifier = c
		}
	}
}

// WithClock sets the source of EvaluatedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{classifier: SubstringClassifier{}, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score derives features, evaluates the signals and classifies the total.
func (e *Engine) Score(snap models.InstrumentSnapshot, date string) models.ScoreResult {
	d := Derive(snap)
	signals := EvaluateSignals(snap, d, e.classifier)
	score := CompositeScore(signals)

	return models.ScoreResult{
		Instrument:         snap.Instrument,
		EvaluationDate:     date,
		Sector:             snap.Sector,
		Price:              snap.Price,
		PriceLimitValue:    d.PriceLimitValue,
		PriceLimitPct:      d.PriceLimitPct,
		DistanceToLimitPct: d.DistanceToLimitPct,

		AvgAccumulationPrice:   snap.AvgAccumulationPrice,
		DominantAccumulator:    snap.DominantAccumulator,
		AccumulationBelowPrice: d.AccumulationBelowPrice,
		AccumulationStatus:     snap.AccumulationStatus,
		Top3ConcentrationPct:   snap.Top3ConcentrationPct,

		TotalBid:      snap.BidLots,
		TotalOffer:    snap.OfferLots,
		BidOfferRatio: d.BidOfferRatio,
		OfferThin:     d.OfferThin,

		VolumeToday:           snap.VolumeToday,
		VolumeAvg5:            d.VolumeAvg5,
		VolumeSpikeMultiplier: d.VolumeSpikeMultiplier,

		ConsecutiveUpDays:  d.ConsecutiveUpDays,
		NetForeignFlow:     snap.NetForeignFlow,
		NetForeignPositive: d.NetForeignPositive,

		CompositeScore: score,
		Signals:        signals,
		AlertLevel:     AlertLevelFor(score),
		EvaluatedAt:    e.now().UTC(),
	}
}

package repository

import (
	"time"

	"AraDetector/internal/domain/models"
)

func sampleResult(instrument, date string, score int, level models.AlertLevel) models.ScoreResult {
	return models.ScoreResult{
		Instrument:             instrument,
		EvaluationDate:         date,
		Sector:                 "Finance",
		Price:                  1100,
		PriceLimitValue:        1250,
		PriceLimitPct:          25,
		DistanceToLimitPct:     13.64,
		AvgAccumulationPrice:   1020,
		DominantAccumulator:    "CC",
		AccumulationBelowPrice: true,
		AccumulationStatus:     "Big Accumulation",
		Top3ConcentrationPct:   25,
		TotalBid:               120000,
		TotalOffer:             30000,
		BidOfferRatio:          4,
		OfferThin:              true,
		VolumeToday:            500000,
		VolumeAvg5:             133333,
		VolumeSpikeMultiplier:  3.75,
		ConsecutiveUpDays:      2,
		NetForeignFlow:         1e9,
		NetForeignPositive:     true,
		CompositeScore:         score,
		AlertLevel:             level,
		Signals: []models.SignalEvaluation{
			{Code: "BID_OFFER_DOMINAN", Label: "Bid/Offer Ratio ≥ 2.0x", Weight: 20, Active: true, Evidence: "Ratio: 4.00x"},
		},
		EvaluatedAt: time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC),
	}
}

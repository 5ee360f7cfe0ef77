package models

import (
	"fmt"
	"strings"
	"time"
)

// AlertLevel is the ordinal alert tier derived from the composite score.
type AlertLevel string

const (
	AlertLow      AlertLevel = "LOW"
	AlertMedium   AlertLevel = "MEDIUM"
	AlertHigh     AlertLevel = "HIGH"
	AlertCritical AlertLevel = "CRITICAL"
)

// Rank orders levels from LOW (0) to CRITICAL (3). Unknown levels rank -1.
func (l AlertLevel) Rank() int {
	switch l {
	case AlertLow:
		return 0
	case AlertMedium:
		return 1
	case AlertHigh:
		return 2
	case AlertCritical:
		return 3
	default:
		return -1
	}
}

// AtLeast reports whether l is the same tier as min or above it.
func (l AlertLevel) AtLeast(min AlertLevel) bool {
	return l.Rank() >= 0 && l.Rank() >= min.Rank()
}

// ParseAlertLevel parses a level case-insensitively.
func ParseAlertLevel(s string) (AlertLevel, error) {
	l := AlertLevel(strings.ToUpper(strings.TrimSpace(s)))
	if l.Rank() < 0 {
		return "", fmt.Errorf("unknown alert level %q", s)
	}
	return l, nil
}

// SignalEvaluation is the outcome of one named signal predicate.
type SignalEvaluation struct {
	Code     string `json:"code"`
	Label    string `json:"label"`
	Weight   int    `json:"weight"`
	Active   bool   `json:"active"`
	Evidence string `json:"evidence"`
}

// ScoreResult is the immutable outcome of one evaluation of one instrument.
type ScoreResult struct {
	Instrument         string  `json:"instrument"`
	EvaluationDate     string  `json:"evaluation_date"`
	Sector             string  `json:"sector"`
	Price              float64 `json:"price"`
	PriceLimitValue    float64 `json:"price_limit_value"`
	PriceLimitPct      float64 `json:"price_limit_pct"`
	DistanceToLimitPct float64 `json:"distance_to_limit_pct"`

	AvgAccumulationPrice   float64 `json:"avg_accumulation_price"`
	DominantAccumulator    string  `json:"dominant_accumulator"`
	AccumulationBelowPrice bool    `json:"accumulation_below_price"`
	AccumulationStatus     string  `json:"accumulation_status"`
	Top3ConcentrationPct   float64 `json:"top3_concentration_pct"`

	TotalBid      float64 `json:"total_bid"`
	TotalOffer    float64 `json:"total_offer"`
	BidOfferRatio float64 `json:"bid_offer_ratio"`
	OfferThin     bool    `json:"offer_thin"`

	VolumeToday           float64 `json:"volume_today"`
	VolumeAvg5            float64 `json:"volume_avg5"`
	VolumeSpikeMultiplier float64 `json:"volume_spike_multiplier"`

	ConsecutiveUpDays  int     `json:"consecutive_up_days"`
	NetForeignFlow     float64 `json:"net_foreign_flow"`
	NetForeignPositive bool    `json:"net_foreign_positive"`

	CompositeScore int                `json:"composite_score"`
	Signals        []SignalEvaluation `json:"signals"`
	AlertLevel     AlertLevel         `json:"alert_level"`
	EvaluatedAt    time.Time          `json:"evaluated_at"`

	// Sources lists upstream sources that failed softly and were replaced by defaults.
	Sources map[string]string `json:"degraded_sources,omitempty"`
}

// ActiveSignals returns the codes of signals that fired.
func (r ScoreResult) ActiveSignals() []string {
	out := make([]string, 0, len(r.Signals))
	for _, s := range r.Signals {
		if s.Active {
			out = append(out, s.Code)
		}
	}
	return out
}

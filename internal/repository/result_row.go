package repository

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"AraDetector/internal/domain/models"
	domrepo "AraDetector/internal/domain/repository"
)

const resultsTable = "ara_detector_results"

// resultColumns is the column order shared by every result table.
var resultColumns = []string{
	"scan_date", "instrument", "sector", "price", "price_limit", "price_limit_pct", "distance_to_limit_pct",
	"avg_accum_price", "dominant_accumulator", "accum_below_price", "accum_status", "top3_pct",
	"total_bid", "total_offer", "bid_offer_ratio", "offer_thin",
	"volume_today", "volume_avg5", "volume_spike",
	"consecutive_up", "net_foreign", "net_foreign_positive",
	"score", "alert_level", "signals", "degraded_sources", "scanned_at",
}

// resultRow is the flattened storage form of models.ScoreResult.
type resultRow struct {
	ScanDate            string  `db:"scan_date"`
	Instrument          string  `db:"instrument"`
	Sector              string  `db:"sector"`
	Price               float64 `db:"price"`
	PriceLimit          float64 `db:"price_limit"`
	PriceLimitPct       float64 `db:"price_limit_pct"`
	DistanceToLimitPct  float64 `db:"distance_to_limit_pct"`
	AvgAccumPrice       float64 `db:"avg_accum_price"`
	DominantAccumulator string  `db:"dominant_accumulator"`
	AccumBelowPrice     bool    `db:"accum_below_price"`
	AccumStatus         string  `db:"accum_status"`
	Top3Pct             float64 `db:"top3_pct"`
	TotalBid            float64 `db:"total_bid"`
	TotalOffer          float64 `db:"total_offer"`
	BidOfferRatio       float64 `db:"bid_offer_ratio"`
	OfferThin           bool    `db:"offer_thin"`
	VolumeToday         float64 `db:"volume_today"`
	VolumeAvg5          float64 `db:"volume_avg5"`
	VolumeSpike         float64 `db:"volume_spike"`
	ConsecutiveUp       int     `db:"consecutive_up"`
	NetForeign          float64 `db:"net_foreign"`
	NetForeignPositive  bool    `db:"net_foreign_positive"`
	Score               int     `db:"score"`
	AlertLevel          string  `db:"alert_level"`
	Signals             string  `db:"signals"`
	DegradedSources     string  `db:"degraded_sources"`
	ScannedAt           string  `db:"scanned_at"`
}

func toRow(r models.ScoreResult) (resultRow, error) {
	signals, err := json.Marshal(r.Signals)
	if err != nil {
		return resultRow{}, fmt.Errorf("marshal signals for %s: %w", r.Instrument, err)
	}
	degraded := ""
	if len(r.Sources) > 0 {
		b, err := json.Marshal(r.Sources)
		if err != nil {
			return resultRow{}, fmt.Errorf("marshal sources for %s: %w", r.Instrument, err)
		}
		degraded = string(b)
	}
	return resultRow{
		ScanDate:            r.EvaluationDate,
		Instrument:          r.Instrument,
		Sector:              r.Sector,
		Price:               r.Price,
		PriceLimit:          r.PriceLimitValue,
		PriceLimitPct:       r.PriceLimitPct,
		DistanceToLimitPct:  r.DistanceToLimitPct,
		AvgAccumPrice:       r.AvgAccumulationPrice,
		DominantAccumulator: r.DominantAccumulator,
		AccumBelowPrice:     r.AccumulationBelowPrice,
		AccumStatus:         r.AccumulationStatus,
		Top3Pct:             r.Top3ConcentrationPct,
		TotalBid:            r.TotalBid,
		TotalOffer:          r.TotalOffer,
		BidOfferRatio:       r.BidOfferRatio,
		OfferThin:           r.OfferThin,
		VolumeToday:         r.VolumeToday,
		VolumeAvg5:          r.VolumeAvg5,
		VolumeSpike:         r.VolumeSpikeMultiplier,
		ConsecutiveUp:       r.ConsecutiveUpDays,
		NetForeign:          r.NetForeignFlow,
		NetForeignPositive:  r.NetForeignPositive,
		Score:               r.CompositeScore,
		AlertLevel:          string(r.AlertLevel),
		Signals:             string(signals),
		DegradedSources:     degraded,
		ScannedAt:           r.EvaluatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

// args returns the row values in resultColumns order.
func (w resultRow) args() []interface{} {
	return []interface{}{
		w.ScanDate, w.Instrument, w.Sector, w.Price, w.PriceLimit, w.PriceLimitPct, w.DistanceToLimitPct,
		w.AvgAccumPrice, w.DominantAccumulator, w.AccumBelowPrice, w.AccumStatus, w.Top3Pct,
		w.TotalBid, w.TotalOffer, w.BidOfferRatio, w.OfferThin,
		w.VolumeToday, w.VolumeAvg5, w.VolumeSpike,
		w.ConsecutiveUp, w.NetForeign, w.NetForeignPositive,
		w.Score, w.AlertLevel, w.Signals, w.DegradedSources, w.ScannedAt,
	}
}

// dest returns scan targets in resultColumns order.
func (w *resultRow) dest() []interface{} {
	return []interface{}{
		&w.ScanDate, &w.Instrument, &w.Sector, &w.Price, &w.PriceLimit, &w.PriceLimitPct, &w.DistanceToLimitPct,
		&w.AvgAccumPrice, &w.DominantAccumulator, &w.AccumBelowPrice, &w.AccumStatus, &w.Top3Pct,
		&w.TotalBid, &w.TotalOffer, &w.BidOfferRatio, &w.OfferThin,
		&w.VolumeToday, &w.VolumeAvg5, &w.VolumeSpike,
		&w.ConsecutiveUp, &w.NetForeign, &w.NetForeignPositive,
		&w.Score, &w.AlertLevel, &w.Signals, &w.DegradedSources, &w.ScannedAt,
	}
}

func (w resultRow) toResult() (models.ScoreResult, error) {
	r := models.ScoreResult{
		Instrument:             w.Instrument,
		EvaluationDate:         w.ScanDate,
		Sector:                 w.Sector,
		Price:                  w.Price,
		PriceLimitValue:        w.PriceLimit,
		PriceLimitPct:          w.PriceLimitPct,
		DistanceToLimitPct:     w.DistanceToLimitPct,
		AvgAccumulationPrice:   w.AvgAccumPrice,
		DominantAccumulator:    w.DominantAccumulator,
		AccumulationBelowPrice: w.AccumBelowPrice,
		AccumulationStatus:     w.AccumStatus,
		Top3ConcentrationPct:   w.Top3Pct,
		TotalBid:               w.TotalBid,
		TotalOffer:             w.TotalOffer,
		BidOfferRatio:          w.BidOfferRatio,
		OfferThin:              w.OfferThin,
		VolumeToday:            w.VolumeToday,
		VolumeAvg5:             w.VolumeAvg5,
		VolumeSpikeMultiplier:  w.VolumeSpike,
		ConsecutiveUpDays:      w.ConsecutiveUp,
		NetForeignFlow:         w.NetForeign,
		NetForeignPositive:     w.NetForeignPositive,
		CompositeScore:         w.Score,
		AlertLevel:             models.AlertLevel(w.AlertLevel),
	}
	if w.Signals != "" {
		if err := json.Unmarshal([]byte(w.Signals), &r.Signals); err != nil {
			return r, fmt.Errorf("decode signals for %s: %w", w.Instrument, err)
		}
	}
	if w.DegradedSources != "" {
		if err := json.Unmarshal([]byte(w.DegradedSources), &r.Sources); err != nil {
			return r, fmt.Errorf("decode sources for %s: %w", w.Instrument, err)
		}
	}
	if ts, err := time.Parse(time.RFC3339Nano, w.ScannedAt); err == nil {
		r.EvaluatedAt = ts
	}
	return r, nil
}

// selectResults builds the filtered SELECT with ? placeholders. from is the FROM clause body.
func selectResults(from string, f domrepo.ResultFilter) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	if f.Date != "" {
		where = append(where, "scan_date = ?")
		args = append(args, f.Date)
	}
	if f.MinScore > 0 {
		where = append(where, "score >= ?")
		args = append(args, f.MinScore)
	}
	if f.AlertLevel != "" {
		where = append(where, "alert_level = ?")
		args = append(args, string(f.AlertLevel))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(resultColumns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(from)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY score DESC, instrument ASC LIMIT ?")
	args = append(args, f.Limit)
	return b.String(), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

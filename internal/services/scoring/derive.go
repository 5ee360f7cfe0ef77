package scoring

import "AraDetector/internal/domain/models"

// Price limit tiers by previous close, checked in order. The last tier has no upper bound.
var limitTiers = [...]struct {
	Below float64
	Pct   float64
}{
	{200, 35},
	{5000, 25},
}

const topLimitPct = 20

// PriceLimitPct returns the auto-reject-up percentage for a previous close.
func PriceLimitPct(previousClose float64) float64 {
	for _, t := range limitTiers {
		if previousClose < t.Below {
			return t.Pct
		}
	}
	return topLimitPct
}

// Derive computes the ratios and counts the signals test. Every ratio is zero-guarded.
func Derive(snap models.InstrumentSnapshot) models.DerivedFeatures {
	d := models.DerivedFeatures{
		BidOfferRatio:      ratio(snap.BidLots, snap.OfferLots),
		OfferThin:          snap.OfferLots > 0 && snap.OfferLots < snap.BidLots*0.4,
		NetForeignPositive: snap.NetForeignFlow > 0,
	}
	d.AccumulationBelowPrice = snap.AvgAccumulationPrice > 0 && snap.Price > 0 && snap.AvgAccumulationPrice < snap.Price

	var sum float64
	var n int
	for _, v := range snap.RecentVolumes {
		if v > 0 {
			sum += v
			n++
		}
	}
	if n > 0 {
		d.VolumeAvg5 = round(sum/float64(n), 0)
	}
	d.VolumeSpikeMultiplier = round(ratio(snap.VolumeToday, d.VolumeAvg5), 2)

	d.ConsecutiveUpDays = consecutiveUp(snap.RecentCloses)

	d.PriceLimitPct = PriceLimitPct(snap.PreviousClose)
	d.PriceLimitValue = round(snap.PreviousClose*(1+d.PriceLimitPct/100), 0)
	if snap.Price > 0 && d.PriceLimitValue > 0 {
		d.DistanceToLimitPct = round((d.PriceLimitValue-snap.Price)/snap.Price*100, 2)
	}
	return d
}

// consecutiveUp counts rising closes from the most recent session backward and stops at the
// first pair that does not rise.
func consecutiveUp(closes []float64) int {
	n := 0
	for i := 0; i+1 < len(closes); i++ {
		if !(closes[i] > closes[i+1]) {
			break
		}
		n++
	}
	return n
}

package models

// InstrumentSnapshot is the canonical numeric feature set for one instrument and evaluation date.
type InstrumentSnapshot struct {
	Instrument           string
	Sector               string
	Price                float64
	PreviousClose        float64
	BidLots              float64
	OfferLots            float64
	AvgAccumulationPrice float64
	DominantAccumulator  string
	AccumulationStatus   string
	Top3ConcentrationPct float64
	VolumeToday          float64
	RecentVolumes        []float64 // sessions 1..5, most recent first
	RecentCloses         []float64 // most recent first, index 0 is the evaluation session
	NetForeignFlow       float64
}

// DerivedFeatures are the ratios and counts computed from a snapshot. Every ratio is 0 when its
// denominator is 0.
type DerivedFeatures struct {
	BidOfferRatio          float64
	OfferThin              bool
	VolumeAvg5             float64
	VolumeSpikeMultiplier  float64
	ConsecutiveUpDays      int
	PriceLimitPct          float64
	PriceLimitValue        float64
	DistanceToLimitPct     float64
	AccumulationBelowPrice bool
	NetForeignPositive     bool
}

package scoring

import (
	"math"
	"testing"

	"AraDetector/internal/domain/models"
)

func TestPriceLimitPctTiers(t *testing.T) {
	tests := []struct {
		prev float64
		want float64
	}{
		{0, 35}, {50, 35}, {199, 35}, {199.99, 35},
		{200, 25}, {1000, 25}, {4999, 25},
		{5000, 20}, {25000, 20},
	}
	for _, tt := range tests {
		if got := PriceLimitPct(tt.prev); got != tt.want {
			t.Errorf("PriceLimitPct(%v) = %v, want %v", tt.prev, got, tt.want)
		}
	}
}

func TestDeriveLimitAndDistance(t *testing.T) {
	d := Derive(models.InstrumentSnapshot{Price: 1100, PreviousClose: 1000})
	if d.PriceLimitPct != 25 || d.PriceLimitValue != 1250 {
		t.Fatalf("limit = %v%% / %v", d.PriceLimitPct, d.PriceLimitValue)
	}
	if d.DistanceToLimitPct != 13.64 {
		t.Fatalf("distance = %v, want 13.64", d.DistanceToLimitPct)
	}
}

func TestDeriveLimitRounding(t *testing.T) {
	// 150 * 1.35 = 202.5 rounds away from zero.
	d := Derive(models.InstrumentSnapshot{Price: 150, PreviousClose: 150})
	if d.PriceLimitValue != 203 {
		t.Fatalf("limit value = %v, want 203", d.PriceLimitValue)
	}
}

func TestDeriveZeroGuards(t *testing.T) {
	tests := []struct {
		name string
		snap models.InstrumentSnapshot
	}{
		{"empty", models.InstrumentSnapshot{}},
		{"no offer", models.InstrumentSnapshot{BidLots: 1000, VolumeToday: 500}},
		{"no price", models.InstrumentSnapshot{PreviousClose: 1000, OfferLots: 10}},
		{"non positive volumes", models.InstrumentSnapshot{VolumeToday: 100, RecentVolumes: []float64{0, -5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Derive(tt.snap)
			for name, v := range map[string]float64{
				"bidOfferRatio":   d.BidOfferRatio,
				"volumeAvg5":      d.VolumeAvg5,
				"volumeSpike":     d.VolumeSpikeMultiplier,
				"distanceToLimit": d.DistanceToLimitPct,
			} {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Errorf("%s = %v", name, v)
				}
			}
			if tt.snap.OfferLots == 0 && d.BidOfferRatio != 0 {
				t.Errorf("bidOfferRatio = %v with zero offer", d.BidOfferRatio)
			}
			if tt.snap.OfferLots == 0 && d.OfferThin {
				t.Error("offer thin with zero offer")
			}
			if d.VolumeAvg5 == 0 && d.VolumeSpikeMultiplier != 0 {
				t.Errorf("spike = %v with zero average", d.VolumeSpikeMultiplier)
			}
			if tt.snap.Price == 0 && d.DistanceToLimitPct != 0 {
				t.Errorf("distance = %v with zero price", d.DistanceToLimitPct)
			}
		})
	}
}

func TestDeriveVolume(t *testing.T) {
	snap := models.InstrumentSnapshot{
		VolumeToday:   1000,
		RecentVolumes: []float64{300, 0, 400, 301},
	}
	d := Derive(snap)
	// mean of 300, 400, 301 = 333.67 -> 334
	if d.VolumeAvg5 != 334 {
		t.Fatalf("avg = %v, want 334", d.VolumeAvg5)
	}
	if d.VolumeSpikeMultiplier != 2.99 {
		t.Fatalf("spike = %v, want 2.99", d.VolumeSpikeMultiplier)
	}
}

func TestConsecutiveUp(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   int
	}{
		{"empty", nil, 0},
		{"single", []float64{100}, 0},
		{"two rises then drop", []float64{110, 105, 100, 101}, 2},
		{"full rise", []float64{110, 105, 100, 98}, 3},
		{"flat stops", []float64{100, 100, 90}, 0},
		{"down first", []float64{90, 100, 80, 70}, 0},
		{"stops at first break", []float64{120, 110, 115, 100, 90}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := consecutiveUp(tt.closes); got != tt.want {
				t.Fatalf("consecutiveUp(%v) = %d, want %d", tt.closes, got, tt.want)
			}
		})
	}
}

func TestDeriveFlags(t *testing.T) {
	d := Derive(models.InstrumentSnapshot{
		Price:                1000,
		AvgAccumulationPrice: 950,
		BidLots:              1000,
		OfferLots:            399,
		NetForeignFlow:       1,
	})
	if !d.AccumulationBelowPrice || !d.OfferThin || !d.NetForeignPositive {
		t.Fatalf("flags = %+v", d)
	}
	d = Derive(models.InstrumentSnapshot{Price: 1000, AvgAccumulationPrice: 1000, BidLots: 1000, OfferLots: 400})
	if d.AccumulationBelowPrice || d.OfferThin || d.NetForeignPositive {
		t.Fatalf("flags = %+v", d)
	}
}

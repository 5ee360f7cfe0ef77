package scoring

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"AraDetector/internal/domain/models"
	domsvc "AraDetector/internal/domain/service"
)

// Signal codes, in evaluation order.
const (
	SignalAccumulation       = "BANDAR_AKUMULASI"
	SignalAccumBelowPrice    = "BANDAR_BELOW_HARGA"
	SignalBidOfferDominant   = "BID_OFFER_DOMINAN"
	SignalOfferDrain         = "OFFER_DRAIN"
	SignalVolumeSpike        = "VOLUME_SPIKE"
	SignalConsecutiveUp      = "CONSECUTIVE_UP"
	SignalForeignNetPositive = "FOREIGN_NET_POSITIF"
	SignalNearLimit          = "JARAK_ARA_DEKAT"
)

const (
	minTop3Pct         = 20
	minBidOfferRatio   = 2.0
	minVolumeSpike     = 2.0
	minConsecutiveUp   = 2
	maxDistanceToLimit = 15
)

type input struct {
	snap       models.InstrumentSnapshot
	derived    models.DerivedFeatures
	classifier domsvc.StatusClassifier
}

type signalDef struct {
	code   string
	label  string
	weight int
	eval   func(in input) (bool, string)
}

// signalTable is fixed at compile time and its weights sum to 100.
var signalTable = [...]signalDef{
	{SignalAccumulation, "Bandar Akumulasi (Top3 ≥ 20%)", 20, func(in input) (bool, string) {
		active := in.classifier.IsAccumulation(in.snap.AccumulationStatus) && in.snap.Top3ConcentrationPct >= minTop3Pct
		return active, fmt.Sprintf("%.1f%% | %s", in.snap.Top3ConcentrationPct, in.snap.AccumulationStatus)
	}},
	{SignalAccumBelowPrice, "Avg Bandar < Harga Market", 10, func(in input) (bool, string) {
		return in.derived.AccumulationBelowPrice, fmt.Sprintf("Bandar: %s (%s) | Harga: %s",
			humanize.Commaf(in.snap.AvgAccumulationPrice), in.snap.DominantAccumulator, humanize.Commaf(in.snap.Price))
	}},
	{SignalBidOfferDominant, "Bid/Offer Ratio ≥ 2.0x", 20, func(in input) (bool, string) {
		return in.derived.BidOfferRatio >= minBidOfferRatio, fmt.Sprintf("Ratio: %.2fx", in.derived.BidOfferRatio)
	}},
	{SignalOfferDrain, "Offer Tipis (Supply Terserap)", 15, func(in input) (bool, string) {
		return in.derived.OfferThin, fmt.Sprintf("Bid: %s | Offer: %s",
			humanize.Commaf(in.snap.BidLots), humanize.Commaf(in.snap.OfferLots))
	}},
	{SignalVolumeSpike, "Volume Spike ≥ 2x Avg-5", 15, func(in input) (bool, string) {
		return in.derived.VolumeSpikeMultiplier >= minVolumeSpike, fmt.Sprintf("%.2fx avg (%s lot avg)",
			in.derived.VolumeSpikeMultiplier, humanize.Commaf(in.derived.VolumeAvg5))
	}},
	{SignalConsecutiveUp, "Naik Berturut-turut ≥ 2 Hari", 10, func(in input) (bool, string) {
		return in.derived.ConsecutiveUpDays >= minConsecutiveUp, fmt.Sprintf("%d hari naik berturut", in.derived.ConsecutiveUpDays)
	}},
	{SignalForeignNetPositive, "Net Foreign Positif", 5, func(in input) (bool, string) {
		return in.derived.NetForeignPositive, fmt.Sprintf("Net Asing: %+.2fM", in.snap.NetForeignFlow/1e9)
	}},
	{SignalNearLimit, "Jarak ke ARA ≤ 15%", 5, func(in input) (bool, string) {
		dist := in.derived.DistanceToLimitPct
		active := dist >= 0 && dist <= maxDistanceToLimit
		return active, fmt.Sprintf("Sisa %.2f%% ke ARA (%s)", dist, humanize.Commaf(in.derived.PriceLimitValue))
	}},
}

// Weight is one entry of the signal weight table.
type Weight struct {
	Code   string
	Label  string
	Weight int
}

// Weights returns a copy of the signal weight table in evaluation order.
func Weights() []Weight {
	out := make([]Weight, len(signalTable))
	for i, s := range signalTable {
		out[i] = Weight{Code: s.code, Label: s.label, Weight: s.weight}
	}
	return out
}

// EvaluateSignals runs every signal against the snapshot and returns all of them in table order.
// A nil classifier falls back to SubstringClassifier.
func EvaluateSignals(snap models.InstrumentSnapshot, derived models.DerivedFeatures, classifier domsvc.StatusClassifier) []models.SignalEvaluation {
	if classifier == nil {
		classifier = SubstringClassifier{}
	}
	in := input{snap: snap, derived: derived, classifier: classifier}
	out := make([]models.SignalEvaluation, len(signalTable))
	for i, s := range signalTable {
		active, evidence := s.eval(in)
		out[i] = models.SignalEvaluation{
			Code:     s.code,
			Label:    s.label,
			Weight:   s.weight,
			Active:   active,
			Evidence: evidence,
		}
	}
	return out
}

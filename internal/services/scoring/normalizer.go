package scoring

import (
	"math"
	"sort"
	"strings"
	"time"

	"AraDetector/internal/domain/models"
	"AraDetector/pkg/util"
)

const (
	volumeWindow = 5
	noLabel      = "-"
)

// Normalize builds the canonical snapshot for one instrument from whatever raw sources were fetched.
// Nil or empty sources are read as zero values.
func Normalize(instrument string, src models.RawSources) models.InstrumentSnapshot {
	snap := models.InstrumentSnapshot{
		Instrument:          util.NormalizeCode(instrument),
		DominantAccumulator: noLabel,
		AccumulationStatus:  noLabel,
	}

	if ob := src.OrderBook; ob != nil {
		snap.Price = positive(ob.Close.Float64())
		snap.BidLots = positive(ob.TotalBidOffer.Bid.Lot.Float64())
		snap.OfferLots = positive(ob.TotalBidOffer.Offer.Lot.Float64())
	}

	if b := src.Broker; b != nil {
		if s := strings.TrimSpace(b.Detector.BrokerAccdist); s != "" {
			snap.AccumulationStatus = s
		}
		snap.Top3ConcentrationPct = b.Detector.Top3.Percent.Float64()
		snap.AvgAccumulationPrice = positive(b.Detector.Average.Float64())
		if top, ok := topBuyer(b.Buyers); ok {
			snap.DominantAccumulator = top.Code
			snap.AvgAccumulationPrice = positive(top.AvgPrice.Float64())
		}
	}

	hist := sessionsMostRecentFirst(src.History)
	if len(hist) > 0 {
		snap.VolumeToday = positive(hist[0].Volume.Float64())
		snap.NetForeignFlow = hist[0].NetForeign.Float64()
	}
	for i := 1; i < len(hist) && i <= volumeWindow; i++ {
		snap.RecentVolumes = append(snap.RecentVolumes, hist[i].Volume.Float64())
	}
	for _, s := range hist {
		snap.RecentCloses = append(snap.RecentCloses, s.Close.Float64())
	}

	snap.PreviousClose = snap.Price
	if len(hist) > 1 && hist[1].Close.Float64() > 0 {
		snap.PreviousClose = hist[1].Close.Float64()
	}

	if src.Profile != nil {
		snap.Sector = strings.TrimSpace(src.Profile.Sector)
	}
	return snap
}

// topBuyer picks the broker with the largest buy value. Entries without a code are ignored.
func topBuyer(buyers []models.RawBrokerFlow) (models.RawBrokerFlow, bool) {
	var (
		best  models.RawBrokerFlow
		found bool
	)
	for _, b := range buyers {
		if strings.TrimSpace(b.Code) == "" {
			continue
		}
		if !found || b.Value > best.Value {
			best, found = b, true
		}
	}
	best.Code = strings.TrimSpace(best.Code)
	return best, found
}

// sessionsMostRecentFirst sorts by date descending when every session carries a parseable date.
// Otherwise the upstream order is kept as is.
func sessionsMostRecentFirst(in []models.RawSession) []models.RawSession {
	if len(in) == 0 {
		return nil
	}
	dates := make([]time.Time, len(in))
	for i, s := range in {
		t, ok := util.ParseTime(s.Date)
		if !ok {
			return in
		}
		dates[i] = t
	}
	idx := make([]int, len(in))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return dates[idx[a]].After(dates[idx[b]]) })
	out := make([]models.RawSession, len(in))
	for i, j := range idx {
		out[i] = in[j]
	}
	return out
}

func positive(v float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

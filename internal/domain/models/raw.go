package models

import (
	"bytes"
	"encoding/json"
	"strconv"

	"AraDetector/pkg/util"
)

// FlexNumber is a numeric field from an upstream payload that may arrive as a JSON number,
// a numeric string, or a string with thousands separators. Anything unparseable decodes to 0.
type FlexNumber float64

// UnmarshalJSON implements json.Unmarshaler. It never returns an error for malformed values.
func (n *FlexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*n = 0
			return nil
		}
		*n = FlexNumber(util.ParseNumber(s))
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = FlexNumber(v)
	return nil
}

// Float64 returns the value as float64.
func (n FlexNumber) Float64() float64 { return float64(n) }

// RawOrderBook holds the order book totals for one instrument.
type RawOrderBook struct {
	Close         FlexNumber  `json:"close"`
	TotalBidOffer RawBidOffer `json:"total_bid_offer"`
}

type RawBidOffer struct {
	Bid   RawLot `json:"bid"`
	Offer RawLot `json:"offer"`
}

type RawLot struct {
	Lot FlexNumber `json:"lot"`
}

// RawBrokerSummary is the broker accumulation summary ("bandar detector") for one session.
type RawBrokerSummary struct {
	Detector RawDetector     `json:"bandar_detector"`
	Buyers   []RawBrokerFlow `json:"brokers_buy"`
}

type RawDetector struct {
	Average       FlexNumber `json:"average"`
	BrokerAccdist string     `json:"broker_accdist"`
	Top3          RawTopN    `json:"top3"`
}

type RawTopN struct {
	Percent FlexNumber `json:"percent"`
	Accdist string     `json:"accdist"`
}

// RawBrokerFlow is one broker's buy side for the session.
type RawBrokerFlow struct {
	Code     string     `json:"netbs_broker_code"`
	Lot      FlexNumber `json:"blot"`
	Value    FlexNumber `json:"bval"`
	AvgPrice FlexNumber `json:"netbs_buy_avg_price"`
}

// RawSession is one trailing daily session from the historical summary.
type RawSession struct {
	Date       string     `json:"date"`
	Close      FlexNumber `json:"close"`
	Volume     FlexNumber `json:"volume"`
	NetForeign FlexNumber `json:"net_foreign"`
}

// RawProfile carries descriptive company info.
type RawProfile struct {
	Sector string `json:"sector"`
}

// RawWatchlistItem is one entry of the upstream watchlist.
type RawWatchlistItem struct {
	Symbol      string `json:"symbol"`
	CompanyCode string `json:"company_code"`
}

// Code returns the instrument code of the watchlist entry.
func (w RawWatchlistItem) Code() string {
	if w.Symbol != "" {
		return util.NormalizeCode(w.Symbol)
	}
	return util.NormalizeCode(w.CompanyCode)
}

// RawSources bundles whatever the fetch stage managed to retrieve for one instrument and date.
// A nil pointer or empty slice is the default substitute for an unavailable source.
type RawSources struct {
	OrderBook *RawOrderBook
	Broker    *RawBrokerSummary
	History   []RawSession
	Profile   *RawProfile
}

package models

import "strings"

// Requests for the ARA HTTP endpoints.

// EvaluateRequest asks for an on-demand evaluation. "emiten" is accepted as an alias of "instrument".
type EvaluateRequest struct {
	Instrument string `json:"instrument" validate:"required_without=Emiten,max=12"`
	Emiten     string `json:"emiten" validate:"max=12"`
	Date       string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// Code returns the requested instrument code, upper-cased.
func (r EvaluateRequest) Code() string {
	code := r.Instrument
	if strings.TrimSpace(code) == "" {
		code = r.Emiten
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

type ResultsQuery struct {
	Watchlist  bool   `query:"watchlist"`
	Date       string `query:"date" validate:"omitempty,datetime=2006-01-02"`
	MinScore   int    `query:"minScore" validate:"gte=0,lte=100"`
	AlertLevel string `query:"alertLevel" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL low medium high critical"`
	Limit      int    `query:"limit" default:"200" validate:"gte=1,lte=1000"`
}

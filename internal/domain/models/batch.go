package models

import "time"

// BatchFailure records why one instrument of a batch could not be evaluated.
type BatchFailure struct {
	Instrument string `json:"instrument"`
	Reason     string `json:"error"`
}

// BatchResult holds the successes and failures of a batch evaluation. Order is not guaranteed.
type BatchResult struct {
	Results  []ScoreResult  `json:"results"`
	Failures []BatchFailure `json:"failures,omitempty"`
}

// ScanReport summarises a full watchlist scan.
type ScanReport struct {
	ScanID    string         `json:"scan_id"`
	Date      string         `json:"date"`
	StartedAt time.Time      `json:"started_at"`
	Results   []ScoreResult  `json:"data"`
	Failures  []BatchFailure `json:"failures,omitempty"`
	Total     int            `json:"total"`
	Errors    int            `json:"errors"`
	Published int            `json:"published"`
	Message   string         `json:"message,omitempty"`
}

// ResultsPage is a page of stored results for one query.
type ResultsPage struct {
	Date    string        `json:"date,omitempty"`
	Results []ScoreResult `json:"data"`
	Total   int           `json:"total"`
}

package models

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable marks an upstream fetch that failed.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrInvalidInstrument is returned for an empty instrument code.
	ErrInvalidInstrument = errors.New("instrument code required")
)

// Upstream source names.
const (
	SourceOrderBook = "orderbook"
	SourceBroker    = "broker_summary"
	SourceHistory   = "history"
	SourceProfile   = "profile"
)

// SourceError wraps the failure of a single upstream source.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() []error { return []error{ErrSourceUnavailable, e.Err} }

// InstrumentError tags an evaluation failure with the instrument code.
type InstrumentError struct {
	Instrument string
	Err        error
}

func (e *InstrumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Instrument, e.Err)
}

func (e *InstrumentError) Unwrap() error { return e.Err }

package repository

import (
	"fmt"
	"strings"

	"AraDetector/internal/domain/models"
)

const (
	DefaultResultLimit = 200
	MaxResultLimit     = 1000
)

// ResultFilter selects stored results. Zero values mean "no filter".
type ResultFilter struct {
	Date       string
	MinScore   int
	AlertLevel models.AlertLevel
	Limit      int
}

// Normalize clamps the limit and canonicalizes the level.
func (f ResultFilter) Normalize() ResultFilter {
	f.Date = strings.TrimSpace(f.Date)
	if f.Limit <= 0 {
		f.Limit = DefaultResultLimit
	}
	if f.Limit > MaxResultLimit {
		f.Limit = MaxResultLimit
	}
	if f.MinScore < 0 {
		f.MinScore = 0
	}
	if f.AlertLevel != "" {
		if l, err := models.ParseAlertLevel(string(f.AlertLevel)); err == nil {
			f.AlertLevel = l
		} else {
			f.AlertLevel = ""
		}
	}
	return f
}

// Key renders the filter as a cache key fragment.
func (f ResultFilter) Key() string {
	return fmt.Sprintf("%smin=%d:level=%s:limit=%d", f.DatePrefix(), f.MinScore, f.AlertLevel, f.Limit)
}

// DatePrefix is the leading part of Key shared by every filter on the same date.
func (f ResultFilter) DatePrefix() string {
	return "date=" + f.Date + ":"
}

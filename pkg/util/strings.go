package util

import (
	"math"
	"strconv"
	"strings"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// ParseNumber parses loosely formatted numeric text such as "12,345", " 1 250 " or "-3.5".
// Only thousands separators and spaces are stripped; anything still unparseable yields 0.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		v, err = strconv.ParseFloat(numberCleaner.Replace(s), 64)
		if err != nil {
			return 0
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

var numberCleaner = strings.NewReplacer(",", "", " ", "", "\u00a0", "")

// NormalizeCode upper-cases and trims an instrument code.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

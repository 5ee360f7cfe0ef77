package util

import "testing"

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12,345", 12345},
		{"1,234,567.5", 1234567.5},
		{" 980 ", 980},
		{"-3.25", -3.25},
		{" 1 250 ", 1250},
		{"1.5e3", 1500},
		{"Rp 1.250", 0},
		{"12abc", 0},
		{"NaN", 0},
		{"-Inf", 0},
		{"", 0},
		{"-", 0},
		{"n/a", 0},
		{"1.2.3", 0},
	}
	for _, tt := range tests {
		if got := ParseNumber(tt.in); got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 7); got != 7 {
		t.Fatalf("expected default, got %d", got)
	}
	if got := ParseIntDefault("x", 7); got != 7 {
		t.Fatalf("expected default on invalid, got %d", got)
	}
	if got := ParseIntDefault("42", 7); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  bbri "); got != "BBRI" {
		t.Fatalf("unexpected code %q", got)
	}
}

package format_test

import (
	"math"
	"testing"

	"github.com/royen99/cryptobot-monitor/internal/domain"
	"github.com/royen99/cryptobot-monitor/internal/format"
)

func TestFloat(t *testing.T) {
	tests := []struct {
		name     string
		x        float64
		decimals int
		want     string
	}{
		{"Grouped thousands", 50123.456, 2, "50,123.46"},
		{"Padded decimals", 7, 4, "7.0000"},
		{"Negative", -1234.5, 2, "-1,234.50"},
		{"NaN", math.NaN(), 2, format.Missing},
		{"Inf", math.Inf(1), 2, format.Missing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := format.Float(tt.x, tt.decimals); got != tt.want {
				t.Errorf("Float(%v, %d) = %q, want %q", tt.x, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestNum(t *testing.T) {
	if got := format.Num(domain.N(10.5), 2); got != "10.50" {
		t.Errorf("Num() = %q", got)
	}
	if got := format.Num(domain.Num{}, 2); got != format.Missing {
		t.Errorf("missing Num rendered as %q", got)
	}
}

func TestSignedPct(t *testing.T) {
	tests := []struct {
		x    float64
		want string
	}{
		{4, "+4.0"},
		{0, "+0.0"},
		{-2.55, "-2.5"},
		{math.NaN(), format.Missing},
	}

	for _, tt := range tests {
		if got := format.SignedPct(tt.x); got != tt.want {
			t.Errorf("SignedPct(%v) = %q, want %q", tt.x, got, tt.want)
		}
	}
}

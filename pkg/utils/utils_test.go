package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func TestMinDecimalReturnsSmaller(t *testing.T) {
	if got := MinDecimal(dec(1.5), dec(2.5)); !got.Equal(dec(1.5)) {
		t.Fatalf("MinDecimal(1.5, 2.5) = %v, want 1.5", got)
	}
	if got := MinDecimal(dec(3), dec(1)); !got.Equal(dec(1)) {
		t.Fatalf("MinDecimal(3, 1) = %v, want 1", got)
	}
}

func TestMaxDecimalReturnsLarger(t *testing.T) {
	if got := MaxDecimal(dec(1.5), dec(2.5)); !got.Equal(dec(2.5)) {
		t.Fatalf("MaxDecimal(1.5, 2.5) = %v, want 2.5", got)
	}
	if got := MaxDecimal(dec(3), dec(1)); !got.Equal(dec(3)) {
		t.Fatalf("MaxDecimal(3, 1) = %v, want 3", got)
	}
}

func TestClampDecimalWithinRangeUnchanged(t *testing.T) {
	got := ClampDecimal(dec(0.5), dec(0), dec(1))
	if !got.Equal(dec(0.5)) {
		t.Fatalf("ClampDecimal(0.5, 0, 1) = %v, want 0.5", got)
	}
}

func TestClampDecimalBelowMinFloors(t *testing.T) {
	got := ClampDecimal(dec(-5), dec(0), dec(1.2))
	if !got.Equal(dec(0)) {
		t.Fatalf("ClampDecimal(-5, 0, 1.2) = %v, want 0", got)
	}
}

func TestClampDecimalAboveMaxCeils(t *testing.T) {
	got := ClampDecimal(dec(1.5), dec(0), dec(1))
	if !got.Equal(dec(1)) {
		t.Fatalf("ClampDecimal(1.5, 0, 1) = %v, want 1", got)
	}
}

func TestFormatMarketCapSuffixes(t *testing.T) {
	cases := []struct {
		val  float64
		want string
	}{
		{1.5e12, "$1.50T"},
		{250e9, "$250.00B"},
		{999.99, "$999.99"},
	}
	for _, c := range cases {
		if got := FormatMarketCap(dec(c.val)); got != c.want {
			t.Fatalf("FormatMarketCap(%v) = %q, want %q", c.val, got, c.want)
		}
	}
}

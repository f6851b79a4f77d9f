package randgen

import (
	"strings"
	"testing"

	"github.com/veigaco/biomarket-cas/internal/sectors"
)

func TestSameSeedReproducesSequence(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 50; i++ {
		av, bv := a.Float64(), b.Float64()
		if av != bv {
			t.Fatalf("draw %d diverged: %v != %v", i, av, bv)
		}
	}
}

func TestZeroSeedIsTimeDerived(t *testing.T) {
	a := New(0)
	b := New(0)
	// Extremely unlikely to collide across two time-derived seeds; this is
	// a smoke test that New(0) doesn't panic and produces usable output.
	if a.Float64() == b.Float64() && a.Float64() == b.Float64() {
		t.Skip("coincidental seed collision, not a failure")
	}
}

func TestUniformStaysInBounds(t *testing.T) {
	g := New(1)
	for i := 0; i < 1000; i++ {
		v := g.Uniform(-0.01, 0.01)
		if v < -0.01 || v >= 0.01 {
			t.Fatalf("Uniform(-0.01, 0.01) = %v, out of bounds", v)
		}
	}
}

func TestTickerStartsWithSectorLetter(t *testing.T) {
	g := New(7)
	for i := 0; i < 100; i++ {
		ticker := g.Ticker("technology")
		if len(ticker) < 3 || len(ticker) > 4 {
			t.Fatalf("ticker length = %d, want 3 or 4", len(ticker))
		}
		if ticker[0] != 'T' {
			t.Fatalf("ticker = %q, want to start with T", ticker)
		}
		if strings.ToUpper(ticker) != ticker {
			t.Fatalf("ticker = %q, want all uppercase", ticker)
		}
	}
}

func TestSectorReturnsMatchingSubIndustry(t *testing.T) {
	g := New(9)
	sector, sub := g.Sector()
	found := false
	for _, s := range sectors.Table[sector] {
		if s == sub {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("sub-industry %q does not belong to sector %q", sub, sector)
	}
}

package ipo

import (
	"testing"

	"github.com/veigaco/biomarket-cas/internal/market"
	"github.com/veigaco/biomarket-cas/internal/randgen"
	"github.com/veigaco/biomarket-cas/internal/regime"
)

func TestNoIPOBeforeCheckInterval(t *testing.T) {
	m := New(0)
	rng := randgen.New(1)
	stocks := []*market.Stock{}

	for i := 0; i < checkInterval-1; i++ {
		if _, ok := m.Process(&stocks, regime.Growth, 10, rng, i); ok {
			t.Fatalf("IPO admitted before checkInterval ticks elapsed")
		}
	}
}

func TestNoIPOOutsideGrowthRegime(t *testing.T) {
	m := New(0)
	rng := randgen.New(2)
	stocks := []*market.Stock{}

	for i := 0; i < checkInterval*20; i++ {
		if _, ok := m.Process(&stocks, regime.Stagnation, 10, rng, i); ok {
			t.Fatalf("IPO admitted outside GROWTH regime")
		}
	}
}

func TestNoIPOAboveVIXCeiling(t *testing.T) {
	m := New(0)
	rng := randgen.New(3)
	stocks := []*market.Stock{}

	for i := 0; i < checkInterval*20; i++ {
		if _, ok := m.Process(&stocks, regime.Growth, vixCeiling+1, rng, i); ok {
			t.Fatalf("IPO admitted with VIX above ceiling")
		}
	}
}

func TestIPOAppendsRatherThanReplaces(t *testing.T) {
	m := New(0)
	rng := randgen.New(4)
	stocks := []*market.Stock{
		market.NewSeedStock("seed-0", "AAA", "Seed Co", "Technology", "Cloud", 100, 1_000_000, 0.3, 0.5, 0),
	}

	admitted := false
	for i := 0; i < checkInterval*200 && !admitted; i++ {
		if _, ok := m.Process(&stocks, regime.Growth, 10, rng, i); ok {
			admitted = true
		}
	}
	if !admitted {
		t.Fatalf("no IPO admitted after many favorable-gate checks")
	}
	if len(stocks) < 2 {
		t.Fatalf("len(stocks) = %d, want >= 2 (original seed plus IPO)", len(stocks))
	}
	if stocks[0].Ticker != "AAA" {
		t.Fatalf("original seed stock was overwritten, ticker = %q", stocks[0].Ticker)
	}
}

func TestNoIPOOnceActiveCapReached(t *testing.T) {
	m := New(0)
	rng := randgen.New(5)
	stocks := make([]*market.Stock, 0, activeCap)
	for i := 0; i < activeCap; i++ {
		stocks = append(stocks, market.NewSeedStock("seed", "AAA", "Seed Co", "Technology", "Cloud", 100, 1, 0.3, 0.5, 0))
	}

	for i := 0; i < checkInterval*50; i++ {
		if _, ok := m.Process(&stocks, regime.Growth, 10, rng, i); ok {
			t.Fatalf("IPO admitted once active count reached the cap")
		}
	}
}

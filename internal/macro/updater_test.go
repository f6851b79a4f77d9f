package macro

import (
	"testing"

	"github.com/veigaco/biomarket-cas/internal/market"
	"github.com/veigaco/biomarket-cas/internal/randgen"
	"github.com/veigaco/biomarket-cas/internal/regime"
)

func TestVIXNeverDropsBelowFloor(t *testing.T) {
	u := New()
	rng := randgen.New(5)
	state := &market.MarketState{VIX: 10.0, InterestRate: 1.0}
	cfg := regime.Configs[regime.Growth]

	for i := 0; i < 2000; i++ {
		u.Update(state, cfg, rng)
		if state.VIX < vixFloor {
			t.Fatalf("VIX = %v dropped below floor %v at iteration %d", state.VIX, vixFloor, i)
		}
	}
}

func TestInterestRateNeverNegative(t *testing.T) {
	u := New()
	rng := randgen.New(11)
	state := &market.MarketState{VIX: 15, InterestRate: 0.0}
	cfg := regime.Configs[regime.Crisis]

	for i := 0; i < 2000; i++ {
		u.Update(state, cfg, rng)
		if state.InterestRate < 0 {
			t.Fatalf("InterestRate = %v went negative at iteration %d", state.InterestRate, i)
		}
	}
}

func TestInterestRateDriftsTowardRegimeTarget(t *testing.T) {
	u := New()
	rng := randgen.New(21)
	state := &market.MarketState{VIX: 15, InterestRate: 0.0}
	cfg := regime.Configs[regime.Crisis] // target = (4.0+5.5)/2 = 4.75

	for i := 0; i < 5000; i++ {
		u.updateInterestRate(state, cfg, rng)
	}

	target := (cfg.RateLo + cfg.RateHi) / 2
	if diff := state.InterestRate - target; diff > 0.2 || diff < -0.2 {
		t.Fatalf("InterestRate = %v did not converge near target %v", state.InterestRate, target)
	}
}

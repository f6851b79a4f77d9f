// Package macro evolves the market's VIX and interest rate each tick from
// the active regime's configuration.
package macro

import (
	"github.com/veigaco/biomarket-cas/internal/market"
	"github.com/veigaco/biomarket-cas/internal/randgen"
	"github.com/veigaco/biomarket-cas/internal/regime"
)

const vixFloor = 10.0

// Updater is stateless; it only reads the regime config it's handed, so a
// single zero-value Updater is reused for the life of the engine.
type Updater struct{}

// New returns a ready-to-use Updater.
func New() *Updater {
	return &Updater{}
}

// Update mutates state's VIX and interest rate in place for one tick.
func (u *Updater) Update(state *market.MarketState, cfg regime.Config, rng *randgen.Generator) {
	u.updateInterestRate(state, cfg, rng)
	u.updateVIX(state, cfg, rng)
}

func (u *Updater) updateInterestRate(state *market.MarketState, cfg regime.Config, rng *randgen.Generator) {
	target := (cfg.RateLo + cfg.RateHi) / 2
	epsilon1 := rng.Uniform(-0.01, 0.01)
	state.InterestRate += 0.05*(target-state.InterestRate) + epsilon1
	if state.InterestRate < 0 {
		state.InterestRate = 0
	}
}

func (u *Updater) updateVIX(state *market.MarketState, cfg regime.Config, rng *randgen.Generator) {
	spike := 0.0
	roll := rng.Float64()
	switch {
	case roll > 0.998:
		spike = rng.Uniform(15, 40)
	case roll > 0.99:
		spike = rng.Uniform(5, 12)
	}

	decay := (state.VIX - cfg.VIXBase) * 0.15
	epsilon2 := rng.Uniform(-0.75, 0.75)

	next := state.VIX - decay + spike + epsilon2
	if next < vixFloor {
		next = vixFloor
	}
	state.VIX = next
}

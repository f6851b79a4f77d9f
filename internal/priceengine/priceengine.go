// Package priceengine implements the per-stock stochastic price and
// metabolic-health model: the authoritative health-driven formula, not the
// tier-volatility variant that predates it.
package priceengine

import (
	"fmt"
	"math"

	"github.com/veigaco/biomarket-cas/internal/market"
	"github.com/veigaco/biomarket-cas/internal/randgen"
	"github.com/veigaco/biomarket-cas/internal/regime"
)

const (
	minActivePrice  = 0.01
	bankruptPrice   = 0.25
	bankruptHealth  = 0.05
	healthFloor     = 0.0
	healthCeil      = 1.2
	termClampLo     = -0.015
	termClampHi     = 0.015
)

// Engine is stateless between ticks; it reads the macro state and regime
// config it's handed and mutates each stock in place.
type Engine struct{}

// New returns a ready-to-use Engine.
func New() *Engine {
	return &Engine{}
}

// UpdateAll advances every active stock by one tick, returning one
// human-readable event string per bankruptcy ("Extinction: TICKER").
func (e *Engine) UpdateAll(stocks []*market.Stock, state *market.MarketState, cfg regime.Config, rng *randgen.Generator) []string {
	var events []string
	for _, s := range stocks {
		if s.Status == market.StatusBankrupt {
			continue
		}
		if event, bankrupted := e.updateOne(s, state, cfg, rng); bankrupted {
			events = append(events, event)
		}
	}
	return events
}

func (e *Engine) updateOne(s *market.Stock, state *market.MarketState, cfg regime.Config, rng *randgen.Generator) (string, bool) {
	cost := 0.0004*(state.InterestRate/5) + 0.0005*(state.VIX/90)

	perf := 0.0
	if s.History.Len() >= market.HistoryDepth {
		if past, ok := s.History.FromEnd(market.HistoryDepth - 1); ok && past != 0 {
			perf = ((s.Price - past) / past) * 0.02
		}
	}

	health := s.MetabolicHealth - cost + perf + cfg.HealthRegen
	s.MetabolicHealth = clamp(health, healthFloor, healthCeil)

	drift := (s.ValueScore * 2e-5 * cfg.DriftMultiplier) + (s.MetabolicHealth-0.5)*1e-5

	v := (s.Volatility / 50) * (state.VIX / 14)
	u := rng.Float64()
	term := v * (u - 0.5)
	term = clamp(term, termClampLo, termClampHi)

	s.Price = math.Max(minActivePrice, s.Price*math.Exp(drift+term))

	if s.Price < bankruptPrice && s.MetabolicHealth <= bankruptHealth {
		s.Price = 0
		s.Status = market.StatusBankrupt
		return fmt.Sprintf("Extinction: %s", s.Ticker), true
	}

	s.History.Push(s.Price)
	s.PerformanceTracker.Push(s.Price)
	return "", false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

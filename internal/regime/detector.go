// Package regime implements the four-state Markov chain that drives the
// macro updater and price engine's regime-dependent parameters.
package regime

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/veigaco/biomarket-cas/internal/randgen"
)

// Type is the regime tag.
type Type string

const (
	Growth      Type = "GROWTH"
	Stagnation  Type = "STAGNATION"
	Contraction Type = "CONTRACTION"
	Crisis      Type = "CRISIS"
)

// checkInterval is the number of ticks between transition evaluations; more
// frequent checks would let the chain flicker, less frequent would make
// regime changes sluggish relative to the tick rate.
const checkInterval = 5

// Config is the static per-regime record named in the data model: a label,
// an interest-rate target range, the VIX the macro updater mean-reverts
// toward, the drift multiplier the price engine applies, and the per-tick
// health regeneration delta.
type Config struct {
	Label           string
	RateLo, RateHi  float64
	VIXBase         float64
	DriftMultiplier float64
	HealthRegen     float64
}

// Configs is the static table indexed by Type, replacing what would
// otherwise be a dynamic dictionary keyed by string.
var Configs = map[Type]Config{
	Growth: {
		Label: "Bull Market", RateLo: 0, RateHi: 1.5,
		VIXBase: 15, DriftMultiplier: 4.0, HealthRegen: 0.0002,
	},
	Stagnation: {
		Label: "Sideways Market", RateLo: 1.5, RateHi: 3.5,
		VIXBase: 18, DriftMultiplier: 0.1, HealthRegen: 0.00001,
	},
	Contraction: {
		Label: "Correction", RateLo: 3.5, RateHi: 5.0,
		VIXBase: 25, DriftMultiplier: -0.3, HealthRegen: -0.00005,
	},
	Crisis: {
		Label: "Bear Market", RateLo: 4.0, RateHi: 5.5,
		VIXBase: 35, DriftMultiplier: -0.8, HealthRegen: -0.0002,
	},
}

// transitionStep is one successor entry in a transition row.
type transitionStep struct {
	To   Type
	Prob float64
}

// transitionRow pins iteration order: Go map iteration is randomised, but
// the cumulative-probability walk in Update must visit successors in a
// fixed, declared order for the chosen successor to be reproducible under a
// seed.
type transitionRow []transitionStep

// Transitions is the static transition matrix. Each row sums to 1.
var Transitions = map[Type]transitionRow{
	Growth: {
		{Growth, 0.994}, {Stagnation, 0.004}, {Contraction, 0.002}, {Crisis, 0.0},
	},
	Stagnation: {
		{Growth, 0.002}, {Stagnation, 0.991}, {Contraction, 0.005}, {Crisis, 0.002},
	},
	Contraction: {
		{Growth, 0.004}, {Stagnation, 0.004}, {Contraction, 0.989}, {Crisis, 0.003},
	},
	Crisis: {
		{Growth, 0.002}, {Stagnation, 0.006}, {Contraction, 0.002}, {Crisis, 0.990},
	},
}

// Manager owns the current regime and the throttle counter. Current is safe
// for concurrent callers while the orchestrator calls Update under its own
// write lock.
type Manager struct {
	mu              sync.RWMutex
	current         Type
	ticksSinceCheck int
	log             *zap.Logger
}

// NewManager creates a Manager starting in GROWTH, per the contract.
func NewManager(log *zap.Logger) *Manager {
	return &Manager{current: Growth, log: log}
}

// Current returns the active regime tag.
func (m *Manager) Current() Type {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Config returns the static config record for the active regime.
func (m *Manager) Config() Config {
	return Configs[m.Current()]
}

// Update advances the throttle counter and, every checkInterval ticks, walks
// the current regime's transition row. It returns a human-readable event
// string when the regime actually changes, and ("", false) otherwise.
func (m *Manager) Update(rng *randgen.Generator) (event string, changed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ticksSinceCheck++
	if m.ticksSinceCheck < checkInterval {
		return "", false
	}
	m.ticksSinceCheck = 0

	u := rng.Float64()
	cumulative := 0.0
	row := Transitions[m.current]
	for _, step := range row {
		cumulative += step.Prob
		if u < cumulative {
			if step.To != m.current {
				old := m.current
				m.current = step.To
				label := Configs[step.To].Label
				event = fmt.Sprintf("Regime Shift: %s", label)
				changed = true
				if m.log != nil {
					m.log.Info("regime transition",
						zap.String("from", string(old)),
						zap.String("to", string(step.To)))
				}
			}
			break
		}
	}
	return event, changed
}

// Package randgen centralises every pseudo-random draw the simulation makes,
// so that a seed (when supplied) reproduces an entire run deterministically.
// Nothing outside this package touches math/rand directly.
package randgen

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/veigaco/biomarket-cas/internal/sectors"
)

// Generator wraps a *rand.Rand behind a mutex. The orchestrator drives ticks
// serially, so in steady state there is no contention; the lock makes a
// Generator safe to share between goroutines.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Generator. A seed of 0 selects a time-derived seed, matching
// the "seeding is optional" non-goal in the core contract.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Float64 returns a uniform draw in [0, 1).
func (g *Generator) Float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

// Uniform returns a uniform draw in [lo, hi).
func (g *Generator) Uniform(lo, hi float64) float64 {
	return lo + g.Float64()*(hi-lo)
}

// Bool returns true with probability p.
func (g *Generator) Bool(p float64) bool {
	return g.Float64() < p
}

// IntN returns a uniform integer in [0, n).
func (g *Generator) IntN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(n)
}

// Gaussian draws a standard normal variate via the Box-Muller transform.
func (g *Generator) Gaussian() float64 {
	u1 := g.Float64()
	u2 := g.Float64()
	// u1 == 0 would send Log to -Inf; redraw from the open interval.
	for u1 == 0 {
		u1 = g.Float64()
	}
	return math.Sqrt(-2.0*math.Log(u1)) * math.Cos(2.0*math.Pi*u2)
}

// LogNormal draws from a log-normal distribution parameterised by the mean
// and standard deviation of the underlying normal.
func (g *Generator) LogNormal(mean, stdDev float64) float64 {
	return math.Exp(mean + stdDev*g.Gaussian())
}

const tickerLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Ticker synthesizes a 3-4 letter ticker symbol whose first letter matches
// the sector name.
func (g *Generator) Ticker(sector string) string {
	length := 3
	if g.Bool(0.5) {
		length = 4
	}
	b := make([]byte, length)
	b[0] = sector[0]
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	for i := 1; i < length; i++ {
		b[i] = tickerLetters[g.IntN(len(tickerLetters))]
	}
	return string(b)
}

// Sector picks a sector uniformly and returns it with one of its
// sub-industries, also chosen uniformly.
func (g *Generator) Sector() (sector, subIndustry string) {
	sector = sectors.Names[g.IntN(len(sectors.Names))]
	subs := sectors.Table[sector]
	subIndustry = subs[g.IntN(len(subs))]
	return sector, subIndustry
}

// Choice picks an element of a non-empty string slice uniformly.
func (g *Generator) Choice(options []string) string {
	return options[g.IntN(len(options))]
}

// Package ipo implements the gated-probability IPO admission policy: new
// stocks are appended to the population, never substituted for a bankrupt
// entry in place.
package ipo

import (
	"fmt"

	"github.com/veigaco/biomarket-cas/internal/market"
	"github.com/veigaco/biomarket-cas/internal/randgen"
	"github.com/veigaco/biomarket-cas/internal/regime"
	"github.com/veigaco/biomarket-cas/internal/sectors"
)

const (
	checkInterval = 50
	activeCap     = 110
	vixCeiling    = 25
	admitChance   = 0.10

	smallCapChance = 0.85
	smallCapLo     = 0.25e9
	smallCapHi     = 2e9
	midCapLo       = 2e9
	midCapHi       = 10e9

	smallCapVolLo = 0.30
	smallCapVolHi = 0.90
	midCapVolLo   = 0.20
	midCapVolHi   = 0.45

	valueScore = 0.4
)

// Event describes an admitted IPO, for logging and analytics bookkeeping.
type Event struct {
	Ticker      string
	Sector      string
	SubIndustry string
}

// Manager throttles IPO checks to once per checkInterval ticks.
type Manager struct {
	ticksSinceCheck int
	idCounter       int
}

// New returns a ready-to-use Manager. idSeed offsets generated stock IDs
// past the seed population's IDs.
func New(idSeed int) *Manager {
	return &Manager{idCounter: idSeed}
}

// Process evaluates the gate and, when it passes, appends one new stock to
// stocks. It returns (nil, false) when no IPO occurs this tick.
func (m *Manager) Process(stocks *[]*market.Stock, currentRegime regime.Type, vix float64, rng *randgen.Generator, createdAtTick int) (*Event, bool) {
	m.ticksSinceCheck++
	if m.ticksSinceCheck < checkInterval {
		return nil, false
	}
	m.ticksSinceCheck = 0

	activeCount := 0
	for _, s := range *stocks {
		if s.Status == market.StatusActive {
			activeCount++
		}
	}

	if activeCount >= activeCap {
		return nil, false
	}
	if currentRegime != regime.Growth {
		return nil, false
	}
	if vix > vixCeiling {
		return nil, false
	}
	if !rng.Bool(admitChance) {
		return nil, false
	}

	sector, subIndustry := rng.Sector()
	price := rng.Uniform(80, 120)

	var marketCap, volLo, volHi float64
	if rng.Bool(smallCapChance) {
		marketCap = rng.Uniform(smallCapLo, smallCapHi)
		volLo, volHi = smallCapVolLo, smallCapVolHi
	} else {
		marketCap = rng.Uniform(midCapLo, midCapHi)
		volLo, volHi = midCapVolLo, midCapVolHi
	}

	sharesOutstanding := marketCap / price
	volatility := rng.Uniform(volLo, volHi)

	id := fmt.Sprintf("stock-ipo-%d", m.idCounter)
	m.idCounter++
	ticker := rng.Ticker(sector)
	name := fmt.Sprintf("%s %s", subIndustry, rng.Choice(sectors.IPOSuffixes))

	stock := market.NewSeedStock(id, ticker, name, sector, subIndustry, price, sharesOutstanding, volatility, valueScore, createdAtTick)
	*stocks = append(*stocks, stock)

	return &Event{Ticker: ticker, Sector: sector, SubIndustry: subIndustry}, true
}

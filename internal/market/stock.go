// Package market holds the core entity model: Stock and MarketState. These
// are the mutable records the orchestrator owns and mutates once per tick,
// itself and through the price, macro, IPO and winner packages it calls.
package market

import "github.com/veigaco/biomarket-cas/internal/ringbuffer"

// Status is the one-way lifecycle state of a Stock.
type Status string

const (
	StatusActive    Status = "active"
	StatusBankrupt  Status = "bankrupt"
	HistoryDepth           = 60
	TrackerDepth           = 1461
)

// Stock is an individual company. Active fields evolve every tick under
// internal/priceengine; once Status flips to StatusBankrupt the stock is
// never mutated again and is skipped by every aggregate.
type Stock struct {
	ID          string
	Ticker      string
	Name        string
	Sector      string
	SubIndustry string

	Price             float64
	SharesOutstanding float64

	Volatility      float64
	ValueScore      float64
	MetabolicHealth float64

	History           *ringbuffer.Buffer // last 60 prices, newest last
	PerformanceTracker *ringbuffer.Buffer // last ~1461 prices, for winner detection

	Status   Status
	IsWinner bool // refreshed every 365 ticks by the orchestrator

	createdAtTick int
}

// MarketCap is the derived invariant price * sharesOutstanding. Bankrupt
// stocks report zero regardless of stale SharesOutstanding.
func (s *Stock) MarketCap() float64 {
	if s.Status == StatusBankrupt {
		return 0
	}
	return s.Price * s.SharesOutstanding
}

// NewSeedStock constructs an active company with its history buffers
// pre-filled at price. It is used both for the seed population generated at
// engine start (2-3 per sub-industry under engine.DefaultConfig, 66-99 in
// all) and for newly admitted IPOs.
func NewSeedStock(id, ticker, name, sector, subIndustry string, price, sharesOutstanding, volatility, valueScore float64, createdAtTick int) *Stock {
	return &Stock{
		ID:                 id,
		Ticker:             ticker,
		Name:               name,
		Sector:             sector,
		SubIndustry:        subIndustry,
		Price:              price,
		SharesOutstanding:  sharesOutstanding,
		Volatility:         volatility,
		ValueScore:         valueScore,
		MetabolicHealth:    1.0,
		History:            ringbuffer.NewFilled(HistoryDepth, price),
		PerformanceTracker: ringbuffer.NewFilled(TrackerDepth, price),
		Status:             StatusActive,
		createdAtTick:      createdAtTick,
	}
}

// MarketState is the mutable singleton tracking the macro environment.
type MarketState struct {
	VIX          float64
	InterestRate float64
	Phase        Phase
}

// Phase is the market's trading-session clock.
type Phase string

const (
	PhaseTrading Phase = "TRADING"
	PhaseClosed  Phase = "CLOSED"
)

// NewMarketState returns the documented defaults.
func NewMarketState() *MarketState {
	return &MarketState{
		VIX:          15.5,
		InterestRate: 1.25,
		Phase:        PhaseTrading,
	}
}

// Package engine implements the simulation orchestrator: the single owned
// value that holds every piece of mutable state and advances it one tick at
// a time. Collaborators never reach into it directly — they receive a
// handle and call Tick, Snapshot, or one of the read accessors.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/veigaco/biomarket-cas/internal/analytics"
	"github.com/veigaco/biomarket-cas/internal/ipo"
	"github.com/veigaco/biomarket-cas/internal/macro"
	"github.com/veigaco/biomarket-cas/internal/market"
	"github.com/veigaco/biomarket-cas/internal/priceengine"
	"github.com/veigaco/biomarket-cas/internal/randgen"
	"github.com/veigaco/biomarket-cas/internal/regime"
	"github.com/veigaco/biomarket-cas/internal/ringbuffer"
	"github.com/veigaco/biomarket-cas/internal/sectors"
	"github.com/veigaco/biomarket-cas/internal/winner"
	"github.com/veigaco/biomarket-cas/pkg/utils"
)

const (
	tradingWindowTicks = 12
	closeWindowTicks   = 8
	marketCapDepth     = 1461
	maxLogEntries      = 10
	winnerRefreshEvery = 365
)

// LogEntry is one recent event surfaced in a snapshot.
type LogEntry struct {
	Tick int
	Type string // "info", "warning", "error", "success"
	Msg  string
}

// Metrics is the subset of instrumentation the engine reports into on every
// tick. Implemented by internal/metrics; the engine only depends on this
// interface so it has no import-time dependency on the Prometheus registry.
type Metrics interface {
	ObserveTick(durationSeconds float64)
	SetActiveCompanies(n int)
	SetVIX(v float64)
	SetInterestRate(v float64)
	IncIPOs()
	IncBankruptcies()
}

type noopMetrics struct{}

func (noopMetrics) ObserveTick(float64)     {}
func (noopMetrics) SetActiveCompanies(int)  {}
func (noopMetrics) SetVIX(float64)          {}
func (noopMetrics) SetInterestRate(float64) {}
func (noopMetrics) IncIPOs()                {}
func (noopMetrics) IncBankruptcies()        {}

// Config controls the seed population. Seed is not read by the engine; the
// draws come from the *randgen.Generator passed to New.
type Config struct {
	Seed           int64
	MinSubIndustry int // inclusive lower bound on companies per sub-industry
	MaxSubIndustry int // inclusive upper bound
}

// DefaultConfig matches the original 2-3 companies per sub-industry seeding.
func DefaultConfig() Config {
	return Config{MinSubIndustry: 2, MaxSubIndustry: 3}
}

// Engine owns all mutable simulation state. The mutex is the
// "parallel threads, shared RW-lock" strategy from the concurrency model:
// Tick acquires the write lock, every read method acquires the read lock.
type Engine struct {
	mu  sync.RWMutex
	log *zap.Logger
	rng *randgen.Generator
	met Metrics

	stocks  []*market.Stock
	state   *market.MarketState
	regimes *regime.Manager
	macro   *macro.Updater
	prices  *priceengine.Engine
	ipos    *ipo.Manager
	cycles  *analytics.Tracker

	tickCount        int
	timeInPhase      int
	marketCapHistory *ringbuffer.Buffer
	logs             []LogEntry
	stockIDCounter   int
}

// New constructs an Engine with a freshly generated seed population.
func New(cfg Config, log *zap.Logger, rng *randgen.Generator, met Metrics) *Engine {
	if met == nil {
		met = noopMetrics{}
	}
	e := &Engine{
		log:              log,
		rng:              rng,
		met:              met,
		state:            market.NewMarketState(),
		regimes:          regime.NewManager(log),
		macro:            macro.New(),
		prices:           priceengine.New(),
		ipos:             ipo.New(0),
		cycles:           analytics.New(),
		marketCapHistory: ringbuffer.New(marketCapDepth),
	}
	e.generateInitialStocks(cfg)
	return e
}

func (e *Engine) generateInitialStocks(cfg Config) {
	span := cfg.MaxSubIndustry - cfg.MinSubIndustry + 1
	for _, sector := range sectors.Names {
		for _, sub := range sectors.Table[sector] {
			count := cfg.MinSubIndustry
			if span > 0 {
				count = cfg.MinSubIndustry + e.rng.IntN(span)
			}
			for i := 0; i < count; i++ {
				e.stocks = append(e.stocks, e.newSeedStock(sector, sub))
			}
		}
	}
}

func (e *Engine) newSeedStock(sector, sub string) *market.Stock {
	isLargeCap := e.rng.Bool(0.15)
	var baseCap float64
	if isLargeCap {
		baseCap = e.rng.Uniform(1e12, 3e12)
	} else {
		baseCap = e.rng.Uniform(50e9, 450e9)
	}

	price := e.rng.LogNormal(4.605, 0.5) // log(100) ~= 4.605

	var volatility float64
	if isLargeCap {
		volatility = e.rng.Uniform(0.15, 0.30)
	} else {
		volatility = e.rng.Uniform(0.30, 0.90)
	}

	valueScore := baseCap/3e12 + e.rng.Uniform(0, 0.2)
	if valueScore > 1.0 {
		valueScore = 1.0
	}
	if valueScore < 0.1 {
		valueScore = 0.1
	}

	id := fmt.Sprintf("stock-%d", e.stockIDCounter)
	e.stockIDCounter++
	ticker := e.rng.Ticker(sector)
	name := fmt.Sprintf("%s %s", sub, e.rng.Choice(sectors.CompanySuffixes))
	sharesOutstanding := baseCap / price

	return market.NewSeedStock(id, ticker, name, sector, sub, price, sharesOutstanding, volatility, valueScore, e.tickCount)
}

// Tick executes one simulation step. It never returns an error to the
// caller: per the TickFailure policy, a panic inside a tick is recovered and
// logged so the scheduler can sleep and continue. The rest of that tick is
// skipped (including the tick-count increment); mutations already applied
// before the panic are not rolled back.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	defer func() {
		e.met.ObserveTick(time.Since(start).Seconds())
		if r := recover(); r != nil {
			if e.log != nil {
				e.log.Error("tick failure, skipping", zap.Any("panic", r))
			}
		}
	}()

	e.advancePhase()

	if event, changed := e.regimes.Update(e.rng); changed {
		e.addLog(event, "error")
	}

	e.macro.Update(e.state, e.regimes.Config(), e.rng)

	for _, event := range e.prices.UpdateAll(e.stocks, e.state, e.regimes.Config(), e.rng) {
		e.cycles.RecordBankruptcy()
		e.met.IncBankruptcies()
		e.addLog(event, "error")
	}

	if ev, ok := e.ipos.Process(&e.stocks, e.regimes.Current(), e.state.VIX, e.rng, e.tickCount); ok {
		e.cycles.RecordIPO()
		e.met.IncIPOs()
		e.addLog(fmt.Sprintf("IPO: %s (%s - %s) enters the market", ev.Ticker, ev.Sector, ev.SubIndustry), "success")
	}

	totalMarketCap := e.totalActiveMarketCap()
	e.marketCapHistory.Push(totalMarketCap)

	if stats := e.cycles.TickUpdate(e.tickCount, e.activeCount(), e.regimes.Current(), e.state.VIX, e.state.InterestRate, totalMarketCap); stats != nil {
		e.addLog(fmt.Sprintf("Cycle %d complete: %s total market cap across %d companies",
			stats.CycleNumber, utils.FormatMarketCap(decimal.NewFromFloat(totalMarketCap)), stats.MaxCompanies), "info")
	}

	if e.tickCount > 0 && e.tickCount%winnerRefreshEvery == 0 {
		winner.Refresh(e.stocks)
	}

	e.met.SetVIX(e.state.VIX)
	e.met.SetInterestRate(e.state.InterestRate)
	e.met.SetActiveCompanies(e.activeCount())

	e.tickCount++
}

func (e *Engine) advancePhase() {
	e.timeInPhase++

	switch e.state.Phase {
	case market.PhaseTrading:
		if e.timeInPhase >= tradingWindowTicks {
			e.state.Phase = market.PhaseClosed
			e.timeInPhase = 0
			e.addLog("Market closing - after-hours trading begins", "warning")
		}
	case market.PhaseClosed:
		if e.timeInPhase >= closeWindowTicks {
			e.state.Phase = market.PhaseTrading
			e.timeInPhase = 0
			e.applyGapPricing()
			e.addLog("Market open - gap from overnight drift", "success")
		}
	}
}

func (e *Engine) applyGapPricing() {
	for _, s := range e.stocks {
		if s.Status == market.StatusBankrupt {
			continue
		}
		direction := 1.0
		if !e.rng.Bool(0.5) {
			direction = -1.0
		}
		magnitude := e.rng.Uniform(0.005, 0.020)
		gapped := s.Price * (1 + direction*magnitude)
		if gapped < 0.1 {
			gapped = 0.1
		}
		s.Price = gapped
	}
}

func (e *Engine) totalActiveMarketCap() float64 {
	total := 0.0
	for _, s := range e.stocks {
		if s.Status == market.StatusActive {
			total += s.MarketCap()
		}
	}
	return total
}

func (e *Engine) activeCount() int {
	n := 0
	for _, s := range e.stocks {
		if s.Status == market.StatusActive {
			n++
		}
	}
	return n
}

func (e *Engine) addLog(msg, kind string) {
	e.logs = append(e.logs, LogEntry{Tick: e.tickCount, Type: kind, Msg: msg})
	if len(e.logs) > maxLogEntries {
		e.logs = e.logs[len(e.logs)-maxLogEntries:]
	}
}

// periodReturn computes 100*(last-past)/past from the engine-global
// market-cap history, or nil when fewer than period+1 samples exist.
func (e *Engine) periodReturn(period int) *float64 {
	if e.marketCapHistory.Len() <= period {
		return nil
	}
	current, _ := e.marketCapHistory.FromEnd(0)
	past, ok := e.marketCapHistory.FromEnd(period)
	if !ok || past == 0 {
		return nil
	}
	ret := ((current - past) / past) * 100
	return &ret
}

package engine

import (
	"github.com/veigaco/biomarket-cas/internal/analytics"
	"github.com/veigaco/biomarket-cas/internal/market"
	"github.com/veigaco/biomarket-cas/internal/regime"
)

// StockSnapshot is a deep-copied, read-only view of one Stock at the moment
// Snapshot was taken. It carries every internal field; the view layer
// projects it down to the external shape for collaborators that shouldn't
// see metabolic health or status.
type StockSnapshot struct {
	ID          string
	Ticker      string
	Name        string
	Sector      string
	SubIndustry string

	Price             float64
	SharesOutstanding float64
	MarketCap         float64

	Volatility      float64
	ValueScore      float64
	MetabolicHealth float64
	IsWinner        bool

	History []float64 // oldest first, length 60 while active

	Status market.Status
}

// PeriodReturns holds the three contract return windows; each is nil when
// insufficient history exists.
type PeriodReturns struct {
	Return60, Return180, Return365 *float64
}

// AnalyticsSnapshot bundles the cycle-analytics read model.
type AnalyticsSnapshot struct {
	CompletedCycles []analytics.CycleStats
	CurrentCycle    *analytics.CycleStats
	Summary         analytics.Summary
}

// Snapshot is the complete, internally-consistent view of engine state at
// one tick, per the (a) snapshot() contract.
type Snapshot struct {
	TickCount     int
	Stocks        []StockSnapshot
	VIX           float64
	InterestRate  float64
	Phase         market.Phase
	Regime        regime.Type
	TimeInPhase   int
	PeriodReturns PeriodReturns
	RecentLogs    []LogEntry
	Analytics     AnalyticsSnapshot
}

// Snapshot returns a deep-copied view of the engine's current state. It is
// safe to call concurrently with Tick; it acquires the read lock and never
// holds a reference into live engine-owned memory.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stocks := make([]StockSnapshot, len(e.stocks))
	for i, s := range e.stocks {
		stocks[i] = StockSnapshot{
			ID:                s.ID,
			Ticker:            s.Ticker,
			Name:              s.Name,
			Sector:            s.Sector,
			SubIndustry:       s.SubIndustry,
			Price:             s.Price,
			SharesOutstanding: s.SharesOutstanding,
			MarketCap:         s.MarketCap(),
			Volatility:        s.Volatility,
			ValueScore:        s.ValueScore,
			MetabolicHealth:   s.MetabolicHealth,
			IsWinner:          s.IsWinner,
			History:           s.History.Values(),
			Status:            s.Status,
		}
	}

	logCount := len(e.logs)
	if logCount > 5 {
		logCount = 5
	}
	recentLogs := make([]LogEntry, logCount)
	copy(recentLogs, e.logs[len(e.logs)-logCount:])

	completed, current, summary := e.cycles.Snapshot(e.tickCount)

	return Snapshot{
		TickCount:    e.tickCount,
		Stocks:       stocks,
		VIX:          e.state.VIX,
		InterestRate: e.state.InterestRate,
		Phase:        e.state.Phase,
		Regime:       e.regimes.Current(),
		TimeInPhase:  e.timeInPhase,
		PeriodReturns: PeriodReturns{
			Return60:  e.periodReturn(60),
			Return180: e.periodReturn(180),
			Return365: e.periodReturn(365),
		},
		RecentLogs: recentLogs,
		Analytics: AnalyticsSnapshot{
			CompletedCycles: completed,
			CurrentCycle:    current,
			Summary:         summary,
		},
	}
}

// StockByTicker returns a deep-copied snapshot of a single stock, for the
// per-ticker REST lookup, and reports whether it was found.
func (e *Engine) StockByTicker(ticker string) (StockSnapshot, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, s := range e.stocks {
		if s.Ticker == ticker {
			return StockSnapshot{
				ID:                s.ID,
				Ticker:            s.Ticker,
				Name:              s.Name,
				Sector:            s.Sector,
				SubIndustry:       s.SubIndustry,
				Price:             s.Price,
				SharesOutstanding: s.SharesOutstanding,
				MarketCap:         s.MarketCap(),
				Volatility:        s.Volatility,
				ValueScore:        s.ValueScore,
				MetabolicHealth:   s.MetabolicHealth,
				IsWinner:          s.IsWinner,
				History:           s.History.Values(),
				Status:            s.Status,
			}, true
		}
	}
	return StockSnapshot{}, false
}

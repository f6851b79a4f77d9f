// Package wire defines the JSON-serializable shapes the engine's snapshot
// crosses into — the two stock projections named in the external-interfaces
// contract, and the enclosing snapshot envelope. Monetary and precision
// fields are carried as decimal.Decimal here so callers get exact decimal
// text instead of float64's binary rounding artifacts; the engine itself
// computes in float64 (see internal/priceengine) since its formulas need
// exp/log/trig that decimal.Decimal does not provide.
package wire

import (
	"github.com/shopspring/decimal"

	"github.com/veigaco/biomarket-cas/internal/analytics"
	"github.com/veigaco/biomarket-cas/internal/engine"
	"github.com/veigaco/biomarket-cas/pkg/utils"
)

// Legal decimal ranges for the wire-boundary fields the StateInvariantViolation
// policy in spec.md §7 names explicitly: a value computed out of range is
// clamped rather than thrown. The engine already clamps these in float64
// (internal/priceengine, internal/macro), so this is a second, independent
// clamp at the point where the value crosses into the serialized form callers
// actually see.
var (
	zeroDecimal       = decimal.Zero
	oneDecimal        = decimal.NewFromInt(1)
	healthCeilDecimal = decimal.NewFromFloat(1.2)
	vixFloorDecimal   = decimal.NewFromInt(10)
)

// StockInternal is the projection used by the push channel: it carries
// everything a debugging or analytics consumer needs, including fields the
// external REST surface deliberately hides.
type StockInternal struct {
	ID                string          `json:"id"`
	Ticker            string          `json:"ticker"`
	Name              string          `json:"name"`
	Sector            string          `json:"sector"`
	SubIndustry       string          `json:"subIndustry"`
	Price             decimal.Decimal `json:"price"`
	SharesOutstanding decimal.Decimal `json:"sharesOutstanding"`
	CurrentMarketCap  decimal.Decimal `json:"currentMarketCap"`
	Volatility        decimal.Decimal `json:"volatility"`
	ValueScore        decimal.Decimal `json:"valueScore"`
	MetabolicHealth   decimal.Decimal `json:"metabolicHealth"`
	History           []float64       `json:"history"`
	Status            string          `json:"status"`
	IsWinner          bool            `json:"isWinner"`
}

// StockExternal is the projection the authenticated REST/metadata surface
// returns: it omits metabolicHealth, status, history, and valueScore, and
// adds marketStatus derived from the market phase.
type StockExternal struct {
	ID                string          `json:"id"`
	Ticker            string          `json:"ticker"`
	Name              string          `json:"name"`
	Sector            string          `json:"sector"`
	SubIndustry       string          `json:"subIndustry"`
	Price             decimal.Decimal `json:"price"`
	SharesOutstanding decimal.Decimal `json:"sharesOutstanding"`
	CurrentMarketCap  decimal.Decimal `json:"currentMarketCap"`
	MarketStatus      string          `json:"marketStatus"`
}

// MarketState is the macro-environment wire shape.
type MarketState struct {
	VIX          decimal.Decimal `json:"vix"`
	InterestRate decimal.Decimal `json:"interestRate"`
	Phase        string          `json:"phase"`
}

// PeriodReturns mirrors engine.PeriodReturns with nullable decimal fields.
type PeriodReturns struct {
	Return60  *decimal.Decimal `json:"return60"`
	Return180 *decimal.Decimal `json:"return180"`
	Return365 *decimal.Decimal `json:"return365"`
}

// LogEntry is one recent event.
type LogEntry struct {
	Tick int    `json:"tick"`
	Type string `json:"type"`
	Msg  string `json:"msg"`
}

// CycleStats mirrors analytics.CycleStats at the wire boundary.
type CycleStats struct {
	CycleNumber       int               `json:"cycleNumber"`
	StartTick         int               `json:"startTick"`
	EndTick           int               `json:"endTick"`
	IsComplete        bool              `json:"isComplete"`
	MinCompanies      int               `json:"minCompanies"`
	MaxCompanies      int               `json:"maxCompanies"`
	AvgCompanies      float64           `json:"avgCompanies"`
	IPOCount          int               `json:"ipoCount"`
	BankruptcyCount   int               `json:"bankruptcyCount"`
	RegimePeriods     map[string]int    `json:"regimePeriods"`
	RegimeTransitions int               `json:"regimeTransitions"`
	MinVIX            float64           `json:"minVix"`
	MedianVIX         float64           `json:"medianVix"`
	MaxVIX            float64           `json:"maxVix"`
	MinInterestRate   float64           `json:"minInterestRate"`
	MedianInterestRate float64          `json:"medianInterestRate"`
	MaxInterestRate   float64           `json:"maxInterestRate"`
	Return60t         *float64          `json:"return60t"`
	Return180t        *float64          `json:"return180t"`
	Return365t        *float64          `json:"return365t"`
}

// AnalyticsSummary is the aggregate row accompanying the cycle list.
type AnalyticsSummary struct {
	TotalCompletedCycles    int     `json:"totalCompletedCycles"`
	TotalIPOs               int     `json:"totalIpos"`
	TotalBankruptcies       int     `json:"totalBankruptcies"`
	AvgCompanies            float64 `json:"avgCompanies"`
	CurrentCycleTicks       int     `json:"currentCycleTicks"`
	CurrentCycleProgressPct float64 `json:"currentCycleProgressPct"`
}

// Analytics bundles the completed-cycle list, the current partial cycle, and
// the summary row.
type Analytics struct {
	CompletedCycles []CycleStats      `json:"completedCycles"`
	CurrentCycle    *CycleStats       `json:"currentCycle"`
	Summary         AnalyticsSummary  `json:"summary"`
}

// Snapshot is the internal-projection envelope broadcast over the push
// channel.
type Snapshot struct {
	Type          string          `json:"type"` // "initial" or "update"
	TickCount     int             `json:"tickCount"`
	Stocks        []StockInternal `json:"stocks"`
	MarketState   MarketState     `json:"marketState"`
	Regime        string          `json:"regime"`
	TimeInPhase   int             `json:"timeInPhase"`
	Phase         string          `json:"phase"`
	PeriodReturns PeriodReturns   `json:"periodReturns"`
	RecentLogs    []LogEntry      `json:"recentLogs"`
	Analytics     Analytics       `json:"analytics"`
}

// ExternalSnapshot is the external-projection envelope the REST surface
// returns.
type ExternalSnapshot struct {
	TickCount     int             `json:"tickCount"`
	Stocks        []StockExternal `json:"stocks"`
	MarketState   MarketState     `json:"marketState"`
	Regime        string          `json:"regime"`
	TimeInPhase   int             `json:"timeInPhase"`
	Phase         string          `json:"phase"`
	PeriodReturns PeriodReturns   `json:"periodReturns"`
	RecentLogs    []LogEntry      `json:"recentLogs"`
	Analytics     Analytics       `json:"analytics"`
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func decRound(v float64, places int32) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(places)
}

func decPtr(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decRound(*v, 2)
	return &d
}

func toInternalStock(s engine.StockSnapshot) StockInternal {
	return StockInternal{
		ID:                s.ID,
		Ticker:            s.Ticker,
		Name:              s.Name,
		Sector:            s.Sector,
		SubIndustry:       s.SubIndustry,
		Price:             utils.MaxDecimal(decRound(s.Price, 2), zeroDecimal),
		SharesOutstanding: dec(s.SharesOutstanding),
		CurrentMarketCap:  utils.MaxDecimal(dec(s.MarketCap), zeroDecimal),
		Volatility:        utils.ClampDecimal(decRound(s.Volatility, 4), zeroDecimal, oneDecimal),
		ValueScore:        utils.ClampDecimal(decRound(s.ValueScore, 4), zeroDecimal, oneDecimal),
		MetabolicHealth:   utils.ClampDecimal(decRound(s.MetabolicHealth, 4), zeroDecimal, healthCeilDecimal),
		History:           s.History,
		Status:            string(s.Status),
		IsWinner:          s.IsWinner,
	}
}

func toExternalStock(s engine.StockSnapshot, phase string) StockExternal {
	marketStatus := "closed"
	if phase == "TRADING" {
		marketStatus = "open"
	}
	return StockExternal{
		ID:                s.ID,
		Ticker:            s.Ticker,
		Name:              s.Name,
		Sector:            s.Sector,
		SubIndustry:       s.SubIndustry,
		Price:             utils.MaxDecimal(decRound(s.Price, 2), zeroDecimal),
		SharesOutstanding: dec(s.SharesOutstanding),
		CurrentMarketCap:  utils.MaxDecimal(dec(s.MarketCap), zeroDecimal),
		MarketStatus:      marketStatus,
	}
}

func toMarketState(snap engine.Snapshot) MarketState {
	return MarketState{
		VIX:          utils.MaxDecimal(decRound(snap.VIX, 2), vixFloorDecimal),
		InterestRate: utils.MaxDecimal(decRound(snap.InterestRate, 2), zeroDecimal),
		Phase:        string(snap.Phase),
	}
}

func toPeriodReturns(pr engine.PeriodReturns) PeriodReturns {
	return PeriodReturns{
		Return60:  decPtr(pr.Return60),
		Return180: decPtr(pr.Return180),
		Return365: decPtr(pr.Return365),
	}
}

func toLogs(logs []engine.LogEntry) []LogEntry {
	out := make([]LogEntry, len(logs))
	for i, l := range logs {
		out[i] = LogEntry{Tick: l.Tick, Type: l.Type, Msg: l.Msg}
	}
	return out
}

func toCycleStats(c analytics.CycleStats) CycleStats {
	regimePeriods := make(map[string]int, len(c.RegimePeriods))
	for r, n := range c.RegimePeriods {
		regimePeriods[string(r)] = n
	}
	return CycleStats{
		CycleNumber:        c.CycleNumber,
		StartTick:          c.StartTick,
		EndTick:            c.EndTick,
		IsComplete:         c.IsComplete,
		MinCompanies:       c.MinCompanies,
		MaxCompanies:       c.MaxCompanies,
		AvgCompanies:       round2(c.AvgCompanies),
		IPOCount:           c.IPOCount,
		BankruptcyCount:    c.BankruptcyCount,
		RegimePeriods:      regimePeriods,
		RegimeTransitions:  c.RegimeTransitions,
		MinVIX:             round2(c.MinVIX),
		MedianVIX:          round2(c.MedianVIX),
		MaxVIX:             round2(c.MaxVIX),
		MinInterestRate:    round4(c.MinRate),
		MedianInterestRate: round4(c.MedianRate),
		MaxInterestRate:    round4(c.MaxRate),
		Return60t:          roundPtr(c.Return60t),
		Return180t:         roundPtr(c.Return180t),
		Return365t:         roundPtr(c.Return365t),
	}
}

func toAnalytics(a engine.AnalyticsSnapshot) Analytics {
	completed := make([]CycleStats, len(a.CompletedCycles))
	for i, c := range a.CompletedCycles {
		completed[i] = toCycleStats(c)
	}
	var current *CycleStats
	if a.CurrentCycle != nil {
		c := toCycleStats(*a.CurrentCycle)
		current = &c
	}
	return Analytics{
		CompletedCycles: completed,
		CurrentCycle:    current,
		Summary: AnalyticsSummary{
			TotalCompletedCycles:    a.Summary.TotalCompletedCycles,
			TotalIPOs:               a.Summary.TotalIPOs,
			TotalBankruptcies:       a.Summary.TotalBankruptcies,
			AvgCompanies:            round2(a.Summary.AvgCompanies),
			CurrentCycleTicks:       a.Summary.CurrentCycleTicks,
			CurrentCycleProgressPct: round2(a.Summary.CurrentCycleProgressPct),
		},
	}
}

// ToSnapshot converts an engine snapshot into the internal-projection wire
// envelope used by the push channel. kind is "initial" or "update".
func ToSnapshot(snap engine.Snapshot, kind string) Snapshot {
	stocks := make([]StockInternal, len(snap.Stocks))
	for i, s := range snap.Stocks {
		stocks[i] = toInternalStock(s)
	}
	return Snapshot{
		Type:          kind,
		TickCount:     snap.TickCount,
		Stocks:        stocks,
		MarketState:   toMarketState(snap),
		Regime:        string(snap.Regime),
		TimeInPhase:   snap.TimeInPhase,
		Phase:         string(snap.Phase),
		PeriodReturns: toPeriodReturns(snap.PeriodReturns),
		RecentLogs:    toLogs(snap.RecentLogs),
		Analytics:     toAnalytics(snap.Analytics),
	}
}

// ToExternalSnapshot converts an engine snapshot into the external
// projection the authenticated REST surface returns.
func ToExternalSnapshot(snap engine.Snapshot) ExternalSnapshot {
	stocks := make([]StockExternal, len(snap.Stocks))
	for i, s := range snap.Stocks {
		stocks[i] = toExternalStock(s, string(snap.Phase))
	}
	return ExternalSnapshot{
		TickCount:     snap.TickCount,
		Stocks:        stocks,
		MarketState:   toMarketState(snap),
		Regime:        string(snap.Regime),
		TimeInPhase:   snap.TimeInPhase,
		Phase:         string(snap.Phase),
		PeriodReturns: toPeriodReturns(snap.PeriodReturns),
		RecentLogs:    toLogs(snap.RecentLogs),
		Analytics:     toAnalytics(snap.Analytics),
	}
}

// ToExternalStock converts a single stock snapshot for per-ticker lookups.
// phase is the market phase string ("TRADING" or "CLOSED").
func ToExternalStock(s engine.StockSnapshot, phase string) StockExternal {
	return toExternalStock(s, phase)
}

func round2(v float64) float64 { return roundN(v, 100) }
func round4(v float64) float64 { return roundN(v, 10000) }

func roundN(v, factor float64) float64 {
	return float64(int64(v*factor+sign(v)*0.5)) / factor
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round2(*v)
	return &r
}

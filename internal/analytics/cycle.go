// Package analytics implements the rolling per-cycle statistics accumulator:
// 20 ticks per period, 365 periods (7300 ticks) per cycle.
package analytics

import (
	"sort"

	"github.com/veigaco/biomarket-cas/internal/regime"
	"github.com/veigaco/biomarket-cas/internal/ringbuffer"
)

const (
	TicksPerPeriod = 20
	TicksPerCycle  = 7300
	marketCapDepth = 366
)

// CycleStats is the finalized or in-progress statistics for one cycle.
type CycleStats struct {
	CycleNumber int
	StartTick   int
	EndTick     int
	IsComplete  bool

	MinCompanies int
	MaxCompanies int
	AvgCompanies float64

	IPOCount        int
	BankruptcyCount int

	RegimePeriods      map[regime.Type]int
	RegimeTransitions int

	MinVIX, MedianVIX, MaxVIX          float64
	MinRate, MedianRate, MaxRate       float64

	Return60t, Return180t, Return365t *float64
}

// Summary is the aggregate row returned alongside the cycle list.
type Summary struct {
	TotalCompletedCycles   int
	TotalIPOs              int
	TotalBankruptcies      int
	AvgCompanies           float64
	CurrentCycleTicks      int
	CurrentCycleProgressPct float64
}

// Tracker accumulates per-tick samples for the current cycle and retains
// every completed cycle's finalized stats.
type Tracker struct {
	completed []CycleStats

	cycleNumber    int
	cycleStartTick int

	companyCounts []int
	vixValues     []float64
	rateValues    []float64
	regimeTicks   map[regime.Type]int
	lastRegime    regime.Type
	haveLastRegime bool
	regimeTransitions int
	ipoCount        int
	bankruptcyCount int

	marketCapHistory *ringbuffer.Buffer // capacity 366, persists across cycle boundaries
}

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{
		regimeTicks:      freshRegimeTicks(),
		marketCapHistory: ringbuffer.New(marketCapDepth),
	}
}

func freshRegimeTicks() map[regime.Type]int {
	return map[regime.Type]int{
		regime.Growth:      0,
		regime.Stagnation:  0,
		regime.Contraction: 0,
		regime.Crisis:      0,
	}
}

// TickUpdate accumulates one tick's worth of data and returns the completed
// CycleStats when this tick closes a cycle boundary, or nil otherwise.
func (t *Tracker) TickUpdate(tick int, activeCompanyCount int, currentRegime regime.Type, vix, interestRate, totalMarketCap float64) *CycleStats {
	t.companyCounts = append(t.companyCounts, activeCompanyCount)
	t.vixValues = append(t.vixValues, vix)
	t.rateValues = append(t.rateValues, interestRate)
	t.marketCapHistory.Push(totalMarketCap)

	t.regimeTicks[currentRegime]++

	if t.haveLastRegime && t.lastRegime != currentRegime {
		t.regimeTransitions++
	}
	t.lastRegime = currentRegime
	t.haveLastRegime = true

	ticksInCycle := tick - t.cycleStartTick
	if ticksInCycle >= TicksPerCycle && ticksInCycle%TicksPerCycle == 0 {
		return t.completeCycle(tick)
	}
	return nil
}

// RecordIPO registers one IPO admission against the current cycle.
func (t *Tracker) RecordIPO() {
	t.ipoCount++
}

// RecordBankruptcy registers one extinction event against the current cycle.
func (t *Tracker) RecordBankruptcy() {
	t.bankruptcyCount++
}

func (t *Tracker) completeCycle(tick int) *CycleStats {
	stats := t.calculate(t.cycleNumber, t.cycleStartTick, tick, true)
	t.completed = append(t.completed, stats)

	t.cycleNumber++
	t.cycleStartTick = tick
	t.companyCounts = nil
	t.vixValues = nil
	t.rateValues = nil
	t.regimeTicks = freshRegimeTicks()
	t.regimeTransitions = 0
	t.ipoCount = 0
	t.bankruptcyCount = 0
	// marketCapHistory is intentionally not reset: it is global to the engine.

	return &t.completed[len(t.completed)-1]
}

func (t *Tracker) calculate(cycleNumber, startTick, endTick int, isComplete bool) CycleStats {
	minC, maxC, avgC := minMaxAvgInt(t.companyCounts)
	minVIX, medVIX, maxVIX := minMedianMax(t.vixValues)
	minRate, medRate, maxRate := minMedianMax(t.rateValues)

	regimePeriods := make(map[regime.Type]int, len(t.regimeTicks))
	for r, ticks := range t.regimeTicks {
		regimePeriods[r] = ticks / TicksPerPeriod
	}

	return CycleStats{
		CycleNumber:       cycleNumber,
		StartTick:         startTick,
		EndTick:           endTick,
		IsComplete:        isComplete,
		MinCompanies:      minC,
		MaxCompanies:      maxC,
		AvgCompanies:      avgC,
		IPOCount:          t.ipoCount,
		BankruptcyCount:   t.bankruptcyCount,
		RegimePeriods:     regimePeriods,
		RegimeTransitions: t.regimeTransitions,
		MinVIX:            minVIX,
		MedianVIX:         medVIX,
		MaxVIX:            maxVIX,
		MinRate:           minRate,
		MedianRate:        medRate,
		MaxRate:           maxRate,
		Return60t:         t.periodReturn(60),
		Return180t:        t.periodReturn(180),
		Return365t:        t.periodReturn(365),
	}
}

// periodReturn returns the percentage change in market cap over the last
// `periods` samples, or nil when the history doesn't yet hold enough.
func (t *Tracker) periodReturn(periods int) *float64 {
	if t.marketCapHistory.Len() <= periods {
		return nil
	}
	current, _ := t.marketCapHistory.FromEnd(0)
	past, ok := t.marketCapHistory.FromEnd(periods)
	if !ok || past == 0 {
		return nil
	}
	ret := ((current - past) / past) * 100
	return &ret
}

// Snapshot returns the completed-cycles list, the current partial cycle
// (nil before any data has accumulated), and the summary row.
func (t *Tracker) Snapshot(currentTick int) ([]CycleStats, *CycleStats, Summary) {
	var current *CycleStats
	if len(t.companyCounts) > 0 {
		c := t.calculate(t.cycleNumber, t.cycleStartTick, currentTick, false)
		current = &c
	}

	totalIPOs := 0
	totalBankruptcies := 0
	avgSum := 0.0
	avgN := 0
	for _, c := range t.completed {
		totalIPOs += c.IPOCount
		totalBankruptcies += c.BankruptcyCount
		avgSum += c.AvgCompanies
		avgN++
	}
	if current != nil {
		totalIPOs += current.IPOCount
		totalBankruptcies += current.BankruptcyCount
		avgSum += current.AvgCompanies
		avgN++
	}
	avgCompanies := 0.0
	if avgN > 0 {
		avgCompanies = avgSum / float64(avgN)
	}

	ticksInCycle := currentTick - t.cycleStartTick
	progressPct := (float64(ticksInCycle) / float64(TicksPerCycle)) * 100

	completedCopy := make([]CycleStats, len(t.completed))
	copy(completedCopy, t.completed)

	return completedCopy, current, Summary{
		TotalCompletedCycles:    len(t.completed),
		TotalIPOs:               totalIPOs,
		TotalBankruptcies:       totalBankruptcies,
		AvgCompanies:            avgCompanies,
		CurrentCycleTicks:       ticksInCycle,
		CurrentCycleProgressPct: progressPct,
	}
}

func minMaxAvgInt(values []int) (min, max int, avg float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	min, max = values[0], values[0]
	sum := 0
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	return min, max, float64(sum) / float64(len(values))
}

func minMedianMax(values []float64) (min, median, max float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	min = sorted[0]
	max = sorted[len(sorted)-1]
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}
	return min, median, max
}

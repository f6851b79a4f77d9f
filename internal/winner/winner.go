// Package winner implements the "escape velocity" read-model: a stock is
// flagged a winner when its trailing return over the performance-tracker
// window beats the market average by a wide enough margin. It is a pure
// projection over existing state — it never feeds back into price, health,
// or bankruptcy.
package winner

import "github.com/veigaco/biomarket-cas/internal/market"

// marginMultiple is how far above the market average a stock's return must
// land to count as a winner.
const marginMultiple = 1.5

// Refresh recomputes IsWinner for every active stock in stocks, using the
// trailing return across each stock's PerformanceTracker.
func Refresh(stocks []*market.Stock) {
	returns := make([]float64, 0, len(stocks))
	indices := make([]int, 0, len(stocks))

	for i, s := range stocks {
		if s.Status != market.StatusActive {
			continue
		}
		r, ok := trailingReturn(s)
		if !ok {
			continue
		}
		returns = append(returns, r)
		indices = append(indices, i)
	}

	if len(returns) == 0 {
		return
	}

	sum := 0.0
	for _, r := range returns {
		sum += r
	}
	marketAvg := sum / float64(len(returns))

	for j, idx := range indices {
		r := returns[j]
		var isWinner bool
		if marketAvg > 0 {
			isWinner = r > marketAvg*marginMultiple
		} else {
			isWinner = r > 0
		}
		stocks[idx].IsWinner = isWinner
	}
}

func trailingReturn(s *market.Stock) (float64, bool) {
	tracker := s.PerformanceTracker
	if tracker.Len() < 2 {
		return 0, false
	}
	oldest := tracker.At(0)
	if oldest == 0 {
		return 0, false
	}
	newest := tracker.Newest()
	return (newest - oldest) / oldest, true
}

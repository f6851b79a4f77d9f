package wire

import (
	"encoding/json"
	"testing"

	"github.com/veigaco/biomarket-cas/internal/engine"
	"github.com/veigaco/biomarket-cas/internal/randgen"
)

func TestToExternalSnapshotHidesInternalFields(t *testing.T) {
	e := engine.New(engine.DefaultConfig(), nil, randgen.New(1), nil)
	snap := e.Snapshot()

	ext := ToExternalSnapshot(snap)
	if len(ext.Stocks) != len(snap.Stocks) {
		t.Fatalf("external stock count = %d, want %d", len(ext.Stocks), len(snap.Stocks))
	}
	for _, s := range ext.Stocks {
		if s.MarketStatus != "open" && s.MarketStatus != "closed" {
			t.Fatalf("marketStatus = %q, want open or closed", s.MarketStatus)
		}
	}

	raw, err := json.Marshal(ext.Stocks[0])
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	for _, hidden := range []string{"metabolicHealth", "status", "history", "valueScore"} {
		if _, ok := fields[hidden]; ok {
			t.Fatalf("external stock JSON carries internal field %q", hidden)
		}
	}
}

func TestToSnapshotCarriesTypeLabel(t *testing.T) {
	e := engine.New(engine.DefaultConfig(), nil, randgen.New(2), nil)
	snap := e.Snapshot()

	initial := ToSnapshot(snap, "initial")
	if initial.Type != "initial" {
		t.Fatalf("Type = %q, want initial", initial.Type)
	}
	update := ToSnapshot(snap, "update")
	if update.Type != "update" {
		t.Fatalf("Type = %q, want update", update.Type)
	}
}

func TestMarketStatusReflectsPhase(t *testing.T) {
	e := engine.New(engine.DefaultConfig(), nil, randgen.New(3), nil)
	snap, ok := e.StockByTicker(mustFirstTicker(e))
	if !ok {
		t.Fatalf("expected to find the first seed stock")
	}

	open := ToExternalStock(snap, "TRADING")
	if open.MarketStatus != "open" {
		t.Fatalf("MarketStatus = %q during TRADING, want open", open.MarketStatus)
	}
	closed := ToExternalStock(snap, "CLOSED")
	if closed.MarketStatus != "closed" {
		t.Fatalf("MarketStatus = %q during CLOSED, want closed", closed.MarketStatus)
	}
}

func mustFirstTicker(e *engine.Engine) string {
	snap := e.Snapshot()
	if len(snap.Stocks) == 0 {
		return ""
	}
	return snap.Stocks[0].Ticker
}

func TestRoundPtrNilStaysNil(t *testing.T) {
	if roundPtr(nil) != nil {
		t.Fatalf("roundPtr(nil) should return nil")
	}
}

func TestRound2RoundsToTwoPlaces(t *testing.T) {
	if got := round2(1.005); got < 1.0 || got > 1.01 {
		t.Fatalf("round2(1.005) = %v, want close to 1.00-1.01", got)
	}
}

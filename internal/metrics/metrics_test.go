package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestSetActiveCompaniesUpdatesGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.SetActiveCompanies(42)

	m := &dto.Metric{}
	if err := c.activeCompanies.Write(m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := m.GetGauge().GetValue(); got != 42 {
		t.Fatalf("active_companies = %v, want 42", got)
	}
}

func TestIncIPOsIncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.IncIPOs()
	c.IncIPOs()

	m := &dto.Metric{}
	if err := c.ipoTotal.Write(m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := m.GetCounter().GetValue(); got != 2 {
		t.Fatalf("ipo_total = %v, want 2", got)
	}
}

func TestNewRegistersAllMetricsWithoutPanic(t *testing.T) {
	reg := prometheus.NewRegistry()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("New() panicked: %v", r)
		}
	}()
	New(reg)
}

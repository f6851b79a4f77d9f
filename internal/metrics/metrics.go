// Package metrics wires the engine's tick loop into a Prometheus registry.
// The engine depends only on the engine.Metrics interface; this package is
// the concrete implementation so swapping or disabling the registry never
// touches engine code.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements engine.Metrics.
type Collector struct {
	reg *prometheus.Registry

	tickDuration      prometheus.Histogram
	activeCompanies   prometheus.Gauge
	vix               prometheus.Gauge
	interestRate      prometheus.Gauge
	ipoTotal          prometheus.Counter
	bankruptcyTotal   prometheus.Counter
	pushSubscribers   prometheus.Gauge
}

// New registers every metric against reg and returns a ready Collector.
func New(reg *prometheus.Registry) *Collector {
	c := &Collector{
		reg: reg,
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "biomarket",
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock duration of a single engine tick.",
			Buckets:   prometheus.DefBuckets,
		}),
		activeCompanies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "biomarket",
			Name:      "active_companies",
			Help:      "Number of companies with status=active.",
		}),
		vix: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "biomarket",
			Name:      "vix",
			Help:      "Current synthetic volatility index.",
		}),
		interestRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "biomarket",
			Name:      "interest_rate_percent",
			Help:      "Current synthetic interest rate, in percent.",
		}),
		ipoTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "biomarket",
			Name:      "ipo_total",
			Help:      "Cumulative number of IPOs admitted.",
		}),
		bankruptcyTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "biomarket",
			Name:      "bankruptcy_total",
			Help:      "Cumulative number of bankruptcies recorded.",
		}),
		pushSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "biomarket",
			Name:      "push_subscribers",
			Help:      "Current number of connected push-channel subscribers.",
		}),
	}

	reg.MustRegister(
		c.tickDuration,
		c.activeCompanies,
		c.vix,
		c.interestRate,
		c.ipoTotal,
		c.bankruptcyTotal,
		c.pushSubscribers,
	)

	return c
}

func (c *Collector) ObserveTick(durationSeconds float64) { c.tickDuration.Observe(durationSeconds) }
func (c *Collector) SetActiveCompanies(n int)             { c.activeCompanies.Set(float64(n)) }
func (c *Collector) SetVIX(v float64)                     { c.vix.Set(v) }
func (c *Collector) SetInterestRate(v float64)            { c.interestRate.Set(v) }
func (c *Collector) IncIPOs()                             { c.ipoTotal.Inc() }
func (c *Collector) IncBankruptcies()                     { c.bankruptcyTotal.Inc() }
func (c *Collector) SetPushSubscribers(n int)             { c.pushSubscribers.Set(float64(n)) }

// Handler serves this Collector's own registry, not the global default
// registerer, since New never registers against prometheus.DefaultRegisterer.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

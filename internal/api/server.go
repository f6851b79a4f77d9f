// Package api exposes the engine's read model over HTTP: a REST surface for
// point-in-time and historical queries, and a WebSocket push channel for
// live updates.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/veigaco/biomarket-cas/internal/engine"
	"github.com/veigaco/biomarket-cas/internal/metrics"
	"github.com/veigaco/biomarket-cas/internal/scheduler"
	"github.com/veigaco/biomarket-cas/pkg/wire"
)

// Config holds the values Server needs beyond its collaborators.
type Config struct {
	APIKeys         []string
	RateLimitPerSec float64
	RateLimitBurst  int
}

// Server wires the engine, scheduler, and metrics collector to an HTTP
// handler. It holds no simulation state of its own.
type Server struct {
	log       *zap.Logger
	eng       *engine.Engine
	scheduler *scheduler.Scheduler
	met       *metrics.Collector
	cfg       Config

	router *mux.Router

	apiKeys map[string]struct{}

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter

	subMu    sync.Mutex
	subCount int
}

// New builds a Server and its route table.
func New(eng *engine.Engine, sched *scheduler.Scheduler, met *metrics.Collector, log *zap.Logger, cfg Config) *Server {
	keys := make(map[string]struct{}, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		keys[k] = struct{}{}
	}

	s := &Server{
		log:       log,
		eng:       eng,
		scheduler: sched,
		met:       met,
		cfg:       cfg,
		apiKeys:   keys,
		limiters:  make(map[string]*rate.Limiter),
	}
	s.routes()
	return s
}

// Handler returns the route table wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return c.Handler(s.router)
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", s.met.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.authMiddleware)
	api.Use(s.rateLimitMiddleware)
	api.HandleFunc("/stocks", s.handleListStocks).Methods(http.MethodGet)
	api.HandleFunc("/stocks/{ticker}", s.handleGetStock).Methods(http.MethodGet)
	api.HandleFunc("/stocks/{ticker}/history", s.handleStockHistory).Methods(http.MethodGet)
	api.HandleFunc("/market", s.handleMarket).Methods(http.MethodGet)
	api.HandleFunc("/analytics", s.handleAnalytics).Methods(http.MethodGet)

	r.HandleFunc("/ws", s.handleWebSocket)

	s.router = r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authMiddleware enforces the API-key allowlist when one is configured; an
// empty allowlist leaves the REST surface open, matching a local/dev
// deployment with no SIM_API_KEYS set.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.apiKeys) == 0 {
			next.ServeHTTP(w, r)
			return
		}
		key := extractAPIKey(r)
		if _, ok := s.apiKeys[key]; !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or missing API key"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractAPIKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.Header.Get("X-API-Key")
}

// rateLimitMiddleware applies a token-bucket limiter per caller, keyed on
// API key if present and remote address otherwise.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := extractAPIKey(r)
		if key == "" {
			key = r.RemoteAddr
		}
		if !s.limiterFor(key).Allow() {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) limiterFor(key string) *rate.Limiter {
	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()

	l, ok := s.limiters[key]
	if !ok {
		perSec := s.cfg.RateLimitPerSec
		if perSec <= 0 {
			perSec = 5
		}
		burst := s.cfg.RateLimitBurst
		if burst <= 0 {
			burst = 10
		}
		l = rate.NewLimiter(rate.Limit(perSec), burst)
		s.limiters[key] = l
	}
	return l
}

func (s *Server) handleListStocks(w http.ResponseWriter, r *http.Request) {
	snap := s.eng.Snapshot()
	full := wire.ToExternalSnapshot(snap)

	stocks := full.Stocks
	if sector := r.URL.Query().Get("sector"); sector != "" {
		filtered := stocks[:0:0]
		for _, st := range stocks {
			if strings.EqualFold(st.Sector, sector) {
				filtered = append(filtered, st)
			}
		}
		stocks = filtered
	}
	if status := r.URL.Query().Get("status"); status != "" {
		wantOpen := strings.EqualFold(status, "open") || strings.EqualFold(status, "active")
		filtered := stocks[:0:0]
		for _, st := range stocks {
			isOpen := st.MarketStatus == "open"
			if status == "bankrupt" {
				// MarketStatus never reports bankruptcy directly; bankrupt
				// stocks surface via zero market cap instead.
				if st.CurrentMarketCap.IsZero() {
					filtered = append(filtered, st)
				}
				continue
			}
			if isOpen == wantOpen {
				filtered = append(filtered, st)
			}
		}
		stocks = filtered
	}

	page, perPage := paginationParams(r)
	total := len(stocks)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stocks":   stocks[start:end],
		"total":    total,
		"page":     page,
		"perPage":  perPage,
		"tickCount": full.TickCount,
	})
}

func paginationParams(r *http.Request) (page, perPage int) {
	page = 1
	perPage = 50
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("perPage")); err == nil && v > 0 && v <= 500 {
		perPage = v
	}
	return page, perPage
}

func (s *Server) handleGetStock(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]
	snap, ok := s.eng.StockByTicker(ticker)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown ticker"})
		return
	}
	phase := string(s.eng.Snapshot().Phase)
	writeJSON(w, http.StatusOK, wire.ToExternalStock(snap, phase))
}

func (s *Server) handleStockHistory(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]
	snap, ok := s.eng.StockByTicker(ticker)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown ticker"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ticker":  snap.Ticker,
		"history": snap.History,
	})
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	snap := s.eng.Snapshot()
	full := wire.ToExternalSnapshot(snap)

	activeCompanies := 0
	for _, st := range full.Stocks {
		if !st.CurrentMarketCap.IsZero() {
			activeCompanies++
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tickCount":       full.TickCount,
		"marketState":     full.MarketState,
		"regime":          full.Regime,
		"timeInPhase":     full.TimeInPhase,
		"phase":           full.Phase,
		"periodReturns":   full.PeriodReturns,
		"recentLogs":      full.RecentLogs,
		"activeCompanies": activeCompanies,
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	snap := s.eng.Snapshot()
	full := wire.ToExternalSnapshot(snap)
	writeJSON(w, http.StatusOK, full.Analytics)
}

func (s *Server) subscriberDelta(delta int) int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subCount += delta
	if s.subCount < 0 {
		s.subCount = 0
	}
	return s.subCount
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Package main is the entry point for the synthetic market simulation
// server: it ticks the engine on a fixed schedule and serves the resulting
// state over REST and a WebSocket push channel.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/veigaco/biomarket-cas/internal/api"
	"github.com/veigaco/biomarket-cas/internal/config"
	"github.com/veigaco/biomarket-cas/internal/engine"
	"github.com/veigaco/biomarket-cas/internal/metrics"
	"github.com/veigaco/biomarket-cas/internal/randgen"
	"github.com/veigaco/biomarket-cas/internal/scheduler"
)

func main() {
	configFile := flag.String("config", "", "Path to an optional YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	seed := flag.Int64("seed", 0, "Random seed; 0 derives one from the clock (overrides config)")
	flag.Parse()

	cfg, err := config.Load(config.Options{
		ConfigFile: *configFile,
		Addr:       *addr,
		LogLevel:   *logLevel,
		Seed:       *seed,
	})
	if err != nil {
		panic(err)
	}

	logger := setupLogger(cfg.LogLevel, cfg.Env)
	defer logger.Sync()

	logger.Info("starting biomarket simulation server",
		zap.String("addr", cfg.Addr),
		zap.String("env", cfg.Env),
		zap.Int64("seed", cfg.Seed),
		zap.Duration("tickInterval", cfg.TickInterval),
		zap.Int("broadcastEvery", cfg.BroadcastEvery),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rng := randgen.New(cfg.Seed)

	reg := prometheus.NewRegistry()
	met := metrics.New(reg)

	eng := engine.New(engine.Config{
		Seed:           cfg.Seed,
		MinSubIndustry: cfg.InitialMinPerSub,
		MaxSubIndustry: cfg.InitialMaxPerSub,
	}, logger, rng, met)

	sched := scheduler.New(eng, logger, cfg.TickInterval, cfg.BroadcastEvery)
	go sched.Run(ctx)

	srv := api.New(eng, sched, met, logger, api.Config{
		APIKeys:         cfg.APIKeys,
		RateLimitPerSec: cfg.RateLimitPerSec,
		RateLimitBurst:  cfg.RateLimitBurst,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}
}

func setupLogger(level, env string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	if env == "production" {
		prodCfg := zap.NewProductionConfig()
		prodCfg.Level = zap.NewAtomicLevelAt(zapLevel)
		logger, err := prodCfg.Build()
		if err != nil {
			panic(err)
		}
		return logger
	}

	cfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

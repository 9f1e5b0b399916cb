package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jaeminoh/marketsim/internal/config"
	"github.com/jaeminoh/marketsim/internal/domain"
	"github.com/jaeminoh/marketsim/internal/engine"
	"github.com/jaeminoh/marketsim/internal/handler"
	"github.com/jaeminoh/marketsim/internal/service"
	"github.com/jaeminoh/marketsim/internal/sim"
	"github.com/jaeminoh/marketsim/internal/store"
	"github.com/jaeminoh/marketsim/internal/store/dbstore"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load .env if present, then configuration from the environment.
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Persistence: SQLite when a database path is configured, no-op otherwise.
	var persist store.Persistence = store.NopPersistence{}
	if cfg.DatabasePath != "" {
		db, err := dbstore.Open(cfg.DatabasePath)
		if err != nil {
			logger.Fatal("failed to open database", zap.String("path", cfg.DatabasePath), zap.Error(err))
		}
		persist = db
		logger.Info("persistence enabled", zap.String("path", cfg.DatabasePath))
	}

	// Instantiate stores.
	accountStore := store.NewAccountStore()
	instrumentStore := store.NewInstrumentStore()
	orderStore := store.NewOrderStore()
	tradeStore := store.NewTradeStore()

	seedInstruments(instrumentStore, persist, logger)

	// Simulated clock starting at today's session open.
	clock := sim.NewSimClock(time.Now())

	// Engine.
	books := engine.NewBookManager()
	matcher := engine.NewMatcher(books, accountStore, instrumentStore, orderStore, tradeStore, persist, clock, logger)

	maker := engine.NewMarketMaker(
		engine.MakerConfig{
			OwnerID:     cfg.MakerOwnerID,
			Levels:      cfg.LadderLevels,
			SpreadStep:  cfg.LadderSpreadStep,
			MinQuantity: cfg.LadderMinQty,
			MaxQuantity: cfg.LadderMaxQty,
			Cash:        cfg.MakerCash,
			Inventory:   cfg.MakerInventory,
		},
		matcher,
		accountStore,
		instrumentStore,
		rand.New(rand.NewSource(time.Now().UnixNano())),
		logger,
	)
	maker.EnsureAccount()

	impact := engine.NewImpactAdapter(
		engine.ImpactConfig{
			VolatilityFactor: cfg.VolatilityFactor,
			FloorPrice:       cfg.PriceFloor,
		},
		instrumentStore,
		persist,
		logger,
	)

	// Services.
	accountSvc := service.NewAccountService(accountStore, instrumentStore, persist, cfg.StartingCash)
	orderSvc := service.NewOrderService(matcher, accountStore, instrumentStore, orderStore)
	marketSvc := service.NewMarketService(instrumentStore, tradeStore, matcher, cfg.SnapshotDepth)
	newsSvc := service.NewNewsService(impact)

	// Tick driver: one virtual minute and a ladder refresh per interval.
	driver := service.NewTickDriver(cfg.TickInterval, clock, maker, instrumentStore, logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	driver.Start(ctx)

	// Router.
	router := handler.NewRouter(accountSvc, orderSvc, marketSvc, newsSvc, logger)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", zap.String("signal", sig.String()))

	// Graceful shutdown: stop HTTP server, cancel context (stops tick driver).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	cancel()

	logger.Info("server stopped")
}

// newLogger builds a production JSON logger at the configured level.
func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	switch level {
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// seedInstruments registers the simulated companies, preferring the
// persisted reference price over the seed default so restarts resume
// where the market left off.
func seedInstruments(instruments *store.InstrumentStore, persist store.Persistence, logger *zap.Logger) {
	for _, seed := range domain.SeedInstruments() {
		inst := seed
		if loaded, err := persist.LoadInstrument(seed.ID); err == nil {
			inst = loaded
		} else if err := persist.SaveInstrument(seed); err != nil {
			logger.Warn("failed to persist seed instrument", zap.String("instrument", seed.ID), zap.Error(err))
		}
		instruments.Create(inst)
	}
	logger.Info("instruments seeded", zap.Int("count", len(domain.SeedInstruments())))
}

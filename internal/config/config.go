package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the market simulator.
type Config struct {
	Port         int
	LogLevel     string
	DatabasePath string

	TickInterval time.Duration

	LadderLevels     int
	LadderSpreadStep float64
	LadderMinQty     int64
	LadderMaxQty     int64
	MakerOwnerID     string
	MakerCash        int64
	MakerInventory   int64

	VolatilityFactor float64
	PriceFloor       int64

	SnapshotDepth int
	StartingCash  int64

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	databasePath := getStr("DATABASE_PATH", "")

	tickInterval, err := getDuration("TICK_INTERVAL", 3*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid TICK_INTERVAL: %w", err)
	}

	ladderLevels, err := getInt("LADDER_LEVELS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid LADDER_LEVELS: %w", err)
	}
	if ladderLevels < 1 {
		return nil, fmt.Errorf("invalid LADDER_LEVELS: must be at least 1, got %d", ladderLevels)
	}

	ladderSpreadStep, err := getFloat("LADDER_SPREAD_STEP", 0.0015)
	if err != nil {
		return nil, fmt.Errorf("invalid LADDER_SPREAD_STEP: %w", err)
	}
	if ladderSpreadStep <= 0 {
		return nil, fmt.Errorf("invalid LADDER_SPREAD_STEP: must be positive, got %v", ladderSpreadStep)
	}

	ladderMinQty, err := getInt64("LADDER_MIN_QTY", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid LADDER_MIN_QTY: %w", err)
	}

	ladderMaxQty, err := getInt64("LADDER_MAX_QTY", 250)
	if err != nil {
		return nil, fmt.Errorf("invalid LADDER_MAX_QTY: %w", err)
	}
	if ladderMinQty < 1 || ladderMaxQty < ladderMinQty {
		return nil, fmt.Errorf("invalid ladder quantity range: [%d, %d]", ladderMinQty, ladderMaxQty)
	}

	makerOwnerID := getStr("MAKER_OWNER_ID", "MARKET_MAKER")

	makerCash, err := getInt64("MAKER_CASH", 1_000_000_000_000_000)
	if err != nil {
		return nil, fmt.Errorf("invalid MAKER_CASH: %w", err)
	}

	makerInventory, err := getInt64("MAKER_INVENTORY", 1_000_000)
	if err != nil {
		return nil, fmt.Errorf("invalid MAKER_INVENTORY: %w", err)
	}

	volatilityFactor, err := getFloat("VOLATILITY_FACTOR", 0.005)
	if err != nil {
		return nil, fmt.Errorf("invalid VOLATILITY_FACTOR: %w", err)
	}
	if volatilityFactor <= 0 {
		return nil, fmt.Errorf("invalid VOLATILITY_FACTOR: must be positive, got %v", volatilityFactor)
	}

	priceFloor, err := getInt64("PRICE_FLOOR", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid PRICE_FLOOR: %w", err)
	}
	if priceFloor < 1 {
		return nil, fmt.Errorf("invalid PRICE_FLOOR: must be at least 1, got %d", priceFloor)
	}

	snapshotDepth, err := getInt("SNAPSHOT_DEPTH", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_DEPTH: %w", err)
	}
	if snapshotDepth < 1 {
		return nil, fmt.Errorf("invalid SNAPSHOT_DEPTH: must be at least 1, got %d", snapshotDepth)
	}

	startingCash, err := getInt64("STARTING_CASH", 100_000)
	if err != nil {
		return nil, fmt.Errorf("invalid STARTING_CASH: %w", err)
	}
	if startingCash < 0 {
		return nil, fmt.Errorf("invalid STARTING_CASH: must not be negative, got %d", startingCash)
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:             port,
		LogLevel:         logLevel,
		DatabasePath:     databasePath,
		TickInterval:     tickInterval,
		LadderLevels:     ladderLevels,
		LadderSpreadStep: ladderSpreadStep,
		LadderMinQty:     ladderMinQty,
		LadderMaxQty:     ladderMaxQty,
		MakerOwnerID:     makerOwnerID,
		MakerCash:        makerCash,
		MakerInventory:   makerInventory,
		VolatilityFactor: volatilityFactor,
		PriceFloor:       priceFloor,
		SnapshotDepth:    snapshotDepth,
		StartingCash:     startingCash,
		ReadTimeout:      readTimeout,
		WriteTimeout:     writeTimeout,
		IdleTimeout:      idleTimeout,
		ShutdownTimeout:  shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getInt64(key string, defaultVal int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func getFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

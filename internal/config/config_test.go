package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "DATABASE_PATH", "TICK_INTERVAL",
		"LADDER_LEVELS", "LADDER_SPREAD_STEP", "LADDER_MIN_QTY", "LADDER_MAX_QTY",
		"MAKER_OWNER_ID", "MAKER_CASH", "MAKER_INVENTORY",
		"VOLATILITY_FACTOR", "PRICE_FLOOR", "SNAPSHOT_DEPTH", "STARTING_CASH",
		"READ_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.DatabasePath != "" {
		t.Errorf("DatabasePath = %q, want empty", cfg.DatabasePath)
	}
	if cfg.TickInterval != 3*time.Second {
		t.Errorf("TickInterval = %v, want 3s", cfg.TickInterval)
	}
	if cfg.LadderLevels != 5 {
		t.Errorf("LadderLevels = %d, want 5", cfg.LadderLevels)
	}
	if cfg.LadderSpreadStep != 0.0015 {
		t.Errorf("LadderSpreadStep = %v, want 0.0015", cfg.LadderSpreadStep)
	}
	if cfg.LadderMinQty != 30 || cfg.LadderMaxQty != 250 {
		t.Errorf("ladder quantity range = [%d, %d], want [30, 250]", cfg.LadderMinQty, cfg.LadderMaxQty)
	}
	if cfg.MakerOwnerID != "MARKET_MAKER" {
		t.Errorf("MakerOwnerID = %q, want MARKET_MAKER", cfg.MakerOwnerID)
	}
	if cfg.VolatilityFactor != 0.005 {
		t.Errorf("VolatilityFactor = %v, want 0.005", cfg.VolatilityFactor)
	}
	if cfg.PriceFloor != 10 {
		t.Errorf("PriceFloor = %d, want 10", cfg.PriceFloor)
	}
	if cfg.SnapshotDepth != 5 {
		t.Errorf("SnapshotDepth = %d, want 5", cfg.SnapshotDepth)
	}
	if cfg.StartingCash != 100_000 {
		t.Errorf("StartingCash = %d, want 100000", cfg.StartingCash)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.ReadTimeout)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_PATH", "market.db")
	t.Setenv("TICK_INTERVAL", "500ms")
	t.Setenv("LADDER_LEVELS", "3")
	t.Setenv("LADDER_SPREAD_STEP", "0.01")
	t.Setenv("LADDER_MIN_QTY", "10")
	t.Setenv("LADDER_MAX_QTY", "20")
	t.Setenv("STARTING_CASH", "500000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.DatabasePath != "market.db" {
		t.Errorf("DatabasePath = %q, want market.db", cfg.DatabasePath)
	}
	if cfg.TickInterval != 500*time.Millisecond {
		t.Errorf("TickInterval = %v, want 500ms", cfg.TickInterval)
	}
	if cfg.LadderLevels != 3 {
		t.Errorf("LadderLevels = %d, want 3", cfg.LadderLevels)
	}
	if cfg.LadderSpreadStep != 0.01 {
		t.Errorf("LadderSpreadStep = %v, want 0.01", cfg.LadderSpreadStep)
	}
	if cfg.LadderMinQty != 10 || cfg.LadderMaxQty != 20 {
		t.Errorf("ladder quantity range = [%d, %d], want [10, 20]", cfg.LadderMinQty, cfg.LadderMaxQty)
	}
	if cfg.StartingCash != 500_000 {
		t.Errorf("StartingCash = %d, want 500000", cfg.StartingCash)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		key   string
		value string
	}{
		{"PORT", "not-a-number"},
		{"LOG_LEVEL", "verbose"},
		{"TICK_INTERVAL", "fast"},
		{"LADDER_LEVELS", "0"},
		{"LADDER_SPREAD_STEP", "-0.5"},
		{"LADDER_MIN_QTY", "0"},
		{"LADDER_MAX_QTY", "5"}, // below the default minimum of 30
		{"VOLATILITY_FACTOR", "0"},
		{"PRICE_FLOOR", "0"},
		{"SNAPSHOT_DEPTH", "0"},
		{"STARTING_CASH", "-1"},
		{"READ_TIMEOUT", "soon"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}

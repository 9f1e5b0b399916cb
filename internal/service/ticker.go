package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jaeminoh/marketsim/internal/engine"
	"github.com/jaeminoh/marketsim/internal/sim"
	"github.com/jaeminoh/marketsim/internal/store"
)

// TickDriver advances the simulation clock and refreshes market maker
// quotes at a fixed real-time interval. Each tick is one virtual
// minute.
type TickDriver struct {
	interval    time.Duration
	clock       *sim.SimClock
	maker       *engine.MarketMaker
	instruments *store.InstrumentStore
	log         *zap.Logger
}

// NewTickDriver creates a new TickDriver.
func NewTickDriver(
	interval time.Duration,
	clock *sim.SimClock,
	maker *engine.MarketMaker,
	instruments *store.InstrumentStore,
	log *zap.Logger,
) *TickDriver {
	return &TickDriver{
		interval:    interval,
		clock:       clock,
		maker:       maker,
		instruments: instruments,
		log:         log,
	}
}

// Start runs the tick loop until ctx is cancelled.
func (d *TickDriver) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		d.log.Info("tick driver started",
			zap.Duration("interval", d.interval),
			zap.Time("sim_time", d.clock.Now()),
		)
		for {
			select {
			case <-ctx.Done():
				d.log.Info("tick driver stopped")
				return
			case <-ticker.C:
				d.Tick()
			}
		}
	}()
}

// Tick advances the clock one virtual minute and requotes the ladder.
func (d *TickDriver) Tick() {
	before := d.clock.Now()
	now := d.clock.Advance(time.Minute)
	if now.Day() != before.Day() {
		d.log.Info("session closed, advancing to next trading day",
			zap.Time("sim_time", now))
	} else if now.Minute() == 0 {
		d.log.Info("simulation hour", zap.Time("sim_time", now))
	}

	var ids []string
	for _, inst := range d.instruments.List() {
		ids = append(ids, inst.ID)
	}
	d.maker.RunTick(ids)
}

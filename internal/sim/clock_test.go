package sim

import (
	"testing"
	"time"
)

func TestSimClock_StartsAtSessionOpen(t *testing.T) {
	date := time.Date(2026, 3, 5, 14, 37, 0, 0, time.UTC)
	c := NewSimClock(date)

	now := c.Now()
	if now.Hour() != OpenHour || now.Minute() != 0 {
		t.Errorf("expected 09:00 start, got %s", now.Format("15:04"))
	}
	if now.Day() != 5 {
		t.Errorf("expected same date, got %s", now.Format("2006-01-02"))
	}
}

func TestSimClock_AdvanceOneMinute(t *testing.T) {
	c := NewSimClock(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))

	got := c.Advance(time.Minute)
	if got.Hour() != 9 || got.Minute() != 1 {
		t.Errorf("expected 09:01, got %s", got.Format("15:04"))
	}
}

func TestSimClock_CloseJumpsToNextDayOpen(t *testing.T) {
	c := NewSimClock(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))

	// 09:00 → 19:00 is 600 minutes; the tick that reaches the close must
	// land on the next day's open.
	var last time.Time
	for i := 0; i < 600; i++ {
		last = c.Advance(time.Minute)
	}
	if last.Day() != 6 {
		t.Errorf("expected next day after close, got %s", last.Format("2006-01-02 15:04"))
	}
	if last.Hour() != OpenHour || last.Minute() != 0 {
		t.Errorf("expected 09:00 open, got %s", last.Format("15:04"))
	}
}

func TestSimClock_SessionNeverPassesClose(t *testing.T) {
	c := NewSimClock(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))

	for i := 0; i < 3000; i++ {
		now := c.Advance(time.Minute)
		if now.Hour() >= CloseHour || now.Hour() < OpenHour {
			t.Fatalf("clock outside session bounds: %s", now.Format("2006-01-02 15:04"))
		}
	}
}

func TestRealClock_Now(t *testing.T) {
	before := time.Now()
	got := RealClock{}.Now()
	if got.Before(before.Add(-time.Second)) {
		t.Error("real clock should track wall time")
	}
}

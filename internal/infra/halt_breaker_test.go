package infra

import (
	"testing"
	"time"
)

func TestHaltBreaker_AllowInClosed(t *testing.T) {
	hb := NewHaltBreaker(DefaultHaltConfig("test"))

	if !hb.Allow() {
		t.Error("Expected Allow() to return true in CLOSED state")
	}

	if hb.State() != HaltClosed {
		t.Errorf("Expected state CLOSED, got %s", hb.State())
	}
}

func TestHaltBreaker_HaltsAfterStreak(t *testing.T) {
	cfg := HaltConfig{
		Name:        "test",
		ShockStreak: 3,
		ProbeTicks:  2,
		Cooldown:    100 * time.Millisecond,
	}
	hb := NewHaltBreaker(cfg)

	hb.RecordShock()
	hb.RecordShock()

	if hb.State() != HaltClosed {
		t.Error("Should still be CLOSED after 2 shocks")
	}

	hb.RecordShock() // 3rd shock

	if hb.State() != HaltOpen {
		t.Errorf("Expected OPEN after 3 shocks, got %s", hb.State())
	}

	if hb.Allow() {
		t.Error("Expected Allow() to return false while halted")
	}
}

func TestHaltBreaker_CalmResetsStreak(t *testing.T) {
	cfg := HaltConfig{
		Name:        "test",
		ShockStreak: 2,
		ProbeTicks:  1,
		Cooldown:    time.Minute,
	}
	hb := NewHaltBreaker(cfg)

	hb.RecordShock()
	hb.RecordCalm() // streak broken
	hb.RecordShock()

	if hb.State() != HaltClosed {
		t.Errorf("Non-consecutive shocks must not halt, got %s", hb.State())
	}
}

func TestHaltBreaker_ProbeAfterCooldown(t *testing.T) {
	cfg := HaltConfig{
		Name:        "test",
		ShockStreak: 2,
		ProbeTicks:  1,
		Cooldown:    50 * time.Millisecond,
	}
	hb := NewHaltBreaker(cfg)

	hb.RecordShock()
	hb.RecordShock()

	if hb.State() != HaltOpen {
		t.Fatal("Expected OPEN state")
	}

	time.Sleep(60 * time.Millisecond)

	if !hb.Allow() {
		t.Error("Expected Allow() to return true after cooldown (half-open)")
	}

	if hb.State() != HaltHalfOpen {
		t.Errorf("Expected HALF_OPEN, got %s", hb.State())
	}

	// Calm probe ticks close the breaker.
	hb.RecordCalm()
	if hb.State() != HaltClosed {
		t.Errorf("Expected CLOSED after probe, got %s", hb.State())
	}
}

func TestHaltBreaker_ShockDuringProbeReopens(t *testing.T) {
	cfg := HaltConfig{
		Name:        "test",
		ShockStreak: 2,
		ProbeTicks:  2,
		Cooldown:    10 * time.Millisecond,
	}
	hb := NewHaltBreaker(cfg)

	hb.RecordShock()
	hb.RecordShock()
	time.Sleep(20 * time.Millisecond)
	hb.Allow() // transitions to half-open

	hb.RecordShock()
	if hb.State() != HaltOpen {
		t.Errorf("Expected OPEN after shock during probe, got %s", hb.State())
	}
}

func TestHaltBreaker_Reset(t *testing.T) {
	cfg := HaltConfig{Name: "test", ShockStreak: 1, ProbeTicks: 1, Cooldown: time.Minute}
	hb := NewHaltBreaker(cfg)

	hb.RecordShock()
	if hb.State() != HaltOpen {
		t.Fatal("Expected OPEN state")
	}

	hb.Reset()
	if hb.State() != HaltClosed || !hb.Allow() {
		t.Error("Reset must close the breaker and allow trading")
	}
}

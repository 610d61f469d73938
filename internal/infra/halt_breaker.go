package infra

import (
	"log/slog"
	"sync"
	"time"
)

// HaltState represents the trading halt breaker state.
type HaltState int

const (
	HaltClosed   HaltState = iota // Normal trading
	HaltOpen                      // Halted, matching suspended
	HaltHalfOpen                  // Probing: trading resumed, watching for repeat shocks
)

func (s HaltState) String() string {
	switch s {
	case HaltClosed:
		return "CLOSED"
	case HaltOpen:
		return "OPEN"
	case HaltHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// HaltBreaker suspends matching after a streak of extreme price moves,
// the market-wide circuit breaker. Thread-safe.
type HaltBreaker struct {
	name string
	mu   sync.RWMutex

	state       HaltState
	shockCount  int
	calmCount   int
	lastShockAt time.Time

	// Configuration
	shockStreak int           // shocks before halting
	probeTicks  int           // calm ticks before resuming fully (in half-open)
	cooldown    time.Duration // halt duration before probing
}

// HaltConfig holds configuration for creating a halt breaker.
type HaltConfig struct {
	Name        string
	ShockStreak int
	ProbeTicks  int
	Cooldown    time.Duration
}

// DefaultHaltConfig returns sensible defaults.
func DefaultHaltConfig(name string) HaltConfig {
	return HaltConfig{
		Name:        name,
		ShockStreak: 3,
		ProbeTicks:  2,
		Cooldown:    30 * time.Second,
	}
}

// NewHaltBreaker creates a new trading halt breaker.
func NewHaltBreaker(cfg HaltConfig) *HaltBreaker {
	return &HaltBreaker{
		name:        cfg.Name,
		state:       HaltClosed,
		shockStreak: cfg.ShockStreak,
		probeTicks:  cfg.ProbeTicks,
		cooldown:    cfg.Cooldown,
	}
}

// Allow reports whether matching may run this tick.
func (hb *HaltBreaker) Allow() bool {
	hb.mu.Lock()
	defer hb.mu.Unlock()

	switch hb.state {
	case HaltClosed:
		return true

	case HaltOpen:
		if time.Since(hb.lastShockAt) > hb.cooldown {
			hb.state = HaltHalfOpen
			hb.calmCount = 0
			slog.Info("Halt breaker transitioning to HALF_OPEN",
				slog.String("name", hb.name))
			return true
		}
		return false

	case HaltHalfOpen:
		return true

	default:
		return false
	}
}

// RecordCalm records a tick whose moves stayed within bounds.
func (hb *HaltBreaker) RecordCalm() {
	hb.mu.Lock()
	defer hb.mu.Unlock()

	switch hb.state {
	case HaltClosed:
		hb.shockCount = 0

	case HaltHalfOpen:
		hb.calmCount++
		if hb.calmCount >= hb.probeTicks {
			hb.state = HaltClosed
			hb.shockCount = 0
			hb.calmCount = 0
			slog.Info("Halt breaker CLOSED (market calmed)",
				slog.String("name", hb.name))
		}
	}
}

// RecordShock records an extreme per-tick price move.
func (hb *HaltBreaker) RecordShock() {
	hb.mu.Lock()
	defer hb.mu.Unlock()

	hb.lastShockAt = time.Now()

	switch hb.state {
	case HaltClosed:
		hb.shockCount++
		if hb.shockCount >= hb.shockStreak {
			hb.state = HaltOpen
			slog.Warn("TRADING_HALTED (shock streak exceeded threshold)",
				slog.String("name", hb.name),
				slog.Int("shocks", hb.shockCount))
		}

	case HaltHalfOpen:
		// Any shock while probing re-opens the halt
		hb.state = HaltOpen
		hb.calmCount = 0
		slog.Warn("TRADING_HALTED (shock during probe)",
			slog.String("name", hb.name))
	}
}

// State returns the current state (for monitoring).
func (hb *HaltBreaker) State() HaltState {
	hb.mu.RLock()
	defer hb.mu.RUnlock()
	return hb.state
}

// Reset forces the breaker closed (for testing/admin).
func (hb *HaltBreaker) Reset() {
	hb.mu.Lock()
	defer hb.mu.Unlock()

	hb.state = HaltClosed
	hb.shockCount = 0
	hb.calmCount = 0
	slog.Info("Halt breaker RESET", slog.String("name", hb.name))
}

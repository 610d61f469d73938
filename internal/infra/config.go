package infra

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"stock_go/pkg/quant"
)

// InstrumentConfig seeds one instrument into the ledger at startup.
type InstrumentConfig struct {
	Symbol     string `yaml:"symbol"`
	StartPrice string `yaml:"start_price"` // fixed-point decimal string
}

// Config holds all application settings. LoadConfig applies environment
// variable overrides after parsing.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Market struct {
		Instruments    []InstrumentConfig `yaml:"instruments"`
		TickIntervalMS int                `yaml:"tick_interval_ms"`
		Perturbation   string             `yaml:"perturbation"` // max tick delta, price units
		Seed           int64              `yaml:"seed"`         // 0 = time-seeded
		Halt           struct {
			Enabled     bool   `yaml:"enabled"`
			MoveTrip    string `yaml:"move_trip"` // per-tick move tripping the breaker
			CooldownSec int    `yaml:"cooldown_sec"`
			ProbeTicks  int    `yaml:"probe_ticks"`
			ShockStreak int    `yaml:"shock_streak"`
		} `yaml:"halt"`
	} `yaml:"market"`

	Strategy struct {
		Enabled     bool   `yaml:"enabled"`
		Symbol      string `yaml:"symbol"`
		ShortPeriod int    `yaml:"short_period"`
		LongPeriod  int    `yaml:"long_period"`
		OrderQty    int64  `yaml:"order_qty"`
	} `yaml:"strategy"`

	Feed struct {
		Enabled    bool   `yaml:"enabled"`
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"feed"`

	Journal struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"journal"`

	Account struct {
		InitialBalance string  `yaml:"initial_balance"`
		OrderBurst     int     `yaml:"order_burst"`
		OrdersPerSec   float64 `yaml:"orders_per_sec"`
	} `yaml:"account"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Default returns the built-in market: the four seed instruments and the
// 5-second tick with a ±5.00 perturbation.
func Default() *Config {
	var cfg Config
	cfg.App.Name = "stock-go"
	cfg.App.Version = "dev"
	cfg.Market.Instruments = []InstrumentConfig{
		{Symbol: "AAPL", StartPrice: "150"},
		{Symbol: "TSLA", StartPrice: "800"},
		{Symbol: "GOOG", StartPrice: "2800"},
		{Symbol: "MSFT", StartPrice: "300"},
	}
	cfg.Market.TickIntervalMS = 5000
	cfg.Market.Perturbation = "5"
	cfg.Market.Halt.Enabled = true
	cfg.Market.Halt.MoveTrip = "50"
	cfg.Market.Halt.CooldownSec = 30
	cfg.Market.Halt.ProbeTicks = 2
	cfg.Market.Halt.ShockStreak = 3
	cfg.Account.InitialBalance = "10000"
	cfg.Account.OrderBurst = 5
	cfg.Account.OrdersPerSec = 2
	cfg.Feed.ListenAddr = "localhost:8787"
	cfg.Journal.Enabled = true
	cfg.Logging.Level = "info"
	return &cfg
}

// LoadConfig reads and parses the config file. A missing file falls back
// to Default; a malformed one is an error.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			overrideWithEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if len(c.Market.Instruments) == 0 {
		return fmt.Errorf("at least one instrument is required")
	}
	for _, ins := range c.Market.Instruments {
		if ins.Symbol == "" {
			return fmt.Errorf("instrument with empty symbol")
		}
		if quant.ToPriceMicrosStr(ins.StartPrice) <= 0 {
			return fmt.Errorf("instrument %s: start price must be positive", ins.Symbol)
		}
	}

	if c.Market.TickIntervalMS <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}
	if quant.ToPriceMicrosStr(c.Market.Perturbation) <= 0 {
		return fmt.Errorf("perturbation must be positive")
	}

	if c.Strategy.Enabled {
		if c.Strategy.Symbol == "" {
			return fmt.Errorf("strategy: symbol is required")
		}
		if c.Strategy.ShortPeriod <= 0 || c.Strategy.ShortPeriod >= c.Strategy.LongPeriod {
			return fmt.Errorf("strategy: need 0 < short_period < long_period")
		}
		if c.Strategy.OrderQty <= 0 {
			return fmt.Errorf("strategy: order_qty must be positive")
		}
	}

	if c.Feed.Enabled && c.Feed.ListenAddr == "" {
		return fmt.Errorf("feed: listen_addr is required when enabled")
	}

	return nil
}

// TickInterval returns the simulator period as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Market.TickIntervalMS) * time.Millisecond
}

// PerturbationMicros returns the max per-tick price delta in micros.
func (c *Config) PerturbationMicros() quant.PriceMicros {
	return quant.ToPriceMicrosStr(c.Market.Perturbation)
}

// InitialBalanceMicros returns the cash a new account starts with.
func (c *Config) InitialBalanceMicros() int64 {
	return int64(quant.ToPriceMicrosStr(c.Account.InitialBalance))
}

// overrideWithEnv applies environment variables over file values.
// Env wins over file, matching the container/deployment convention.
func overrideWithEnv(cfg *Config) {
	if addr := os.Getenv("STOCK_FEED_ADDR"); addr != "" {
		cfg.Feed.ListenAddr = addr
	}
	if level := os.Getenv("STOCK_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if seed := os.Getenv("STOCK_MARKET_SEED"); seed != "" {
		var v int64
		if _, err := fmt.Sscan(seed, &v); err == nil {
			cfg.Market.Seed = v
		}
	}
}

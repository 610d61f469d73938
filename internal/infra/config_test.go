package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"stock_go/pkg/quant"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if got := cfg.TickInterval(); got != 5*time.Second {
		t.Errorf("TickInterval = %v; want 5s", got)
	}
	if got := cfg.PerturbationMicros(); got != 5*quant.PriceScale {
		t.Errorf("PerturbationMicros = %d; want 5000000", got)
	}
	if got := cfg.InitialBalanceMicros(); got != 10_000*quant.PriceScale {
		t.Errorf("InitialBalanceMicros = %d; want 10000000000", got)
	}
}

func TestLoadConfig_MissingFileFallsBack(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if len(cfg.Market.Instruments) != 4 {
		t.Errorf("instruments = %d; want the 4 defaults", len(cfg.Market.Instruments))
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
market:
  instruments:
    - symbol: NVDA
      start_price: "475.50"
  tick_interval_ms: 100
  perturbation: "2.5"
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if len(cfg.Market.Instruments) != 1 || cfg.Market.Instruments[0].Symbol != "NVDA" {
		t.Fatalf("instruments = %+v; want just NVDA", cfg.Market.Instruments)
	}
	if got := quant.ToPriceMicrosStr(cfg.Market.Instruments[0].StartPrice); got != 475_500_000 {
		t.Errorf("start price = %d; want 475500000", got)
	}
	if cfg.TickInterval() != 100*time.Millisecond {
		t.Errorf("TickInterval = %v; want 100ms", cfg.TickInterval())
	}
	if cfg.PerturbationMicros() != 2_500_000 {
		t.Errorf("PerturbationMicros = %d; want 2500000", cfg.PerturbationMicros())
	}
	// Sections the file omits keep their defaults.
	if cfg.Feed.ListenAddr != "localhost:8787" {
		t.Errorf("feed addr = %q; want default", cfg.Feed.ListenAddr)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q; want debug", cfg.Logging.Level)
	}
}

func TestLoadConfig_RejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"no instruments", "market:\n  instruments: []\n"},
		{"zero tick", "market:\n  tick_interval_ms: -5\n"},
		{"bad start price", "market:\n  instruments:\n    - symbol: X\n      start_price: \"0\"\n"},
		{"strategy misordered periods", "strategy:\n  enabled: true\n  symbol: AAPL\n  short_period: 9\n  long_period: 3\n  order_qty: 1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tc.yaml), 0644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("LoadConfig accepted an invalid config")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STOCK_FEED_ADDR", "0.0.0.0:9999")
	t.Setenv("STOCK_MARKET_SEED", "42")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Feed.ListenAddr != "0.0.0.0:9999" {
		t.Errorf("feed addr = %q; want env override", cfg.Feed.ListenAddr)
	}
	if cfg.Market.Seed != 42 {
		t.Errorf("seed = %d; want 42", cfg.Market.Seed)
	}
}

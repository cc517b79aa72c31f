package infra

import (
	"os"
	"path/filepath"
	"testing"
)

const validScenario = `
app:
  name: market-sim
  version: "0.1.0"
simulation:
  ticks: 20
  tick_interval_ms: 100
  seed: 42
market:
  price_impact: 0.002
  volatility: 0.0005
  securities:
    - id: AAPL
      initial_price: 150.0
    - id: MSFT
      initial_price: 300.0
agents:
  - id: mm-1
    kind: market_maker
    cash: 100000
    positions:
      AAPL: 200
  - id: retail-1
    kind: random
    cash: 10000
logging:
  level: debug
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write scenario: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeScenario(t, validScenario))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Simulation.Ticks != 20 || cfg.Simulation.Seed != 42 {
		t.Errorf("simulation block mismatch: %+v", cfg.Simulation)
	}
	if len(cfg.Market.Securities) != 2 || cfg.Market.Securities[0].ID != "AAPL" {
		t.Errorf("securities mismatch: %+v", cfg.Market.Securities)
	}
	if len(cfg.Agents) != 2 || cfg.Agents[0].Positions["AAPL"] != 200 {
		t.Errorf("agents mismatch: %+v", cfg.Agents)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level mismatch: %q", cfg.Logging.Level)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("SIM_SEED", "777")
	t.Setenv("SIM_LOG_LEVEL", "error")

	cfg, err := LoadConfig(writeScenario(t, validScenario))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Simulation.Seed != 777 {
		t.Errorf("env seed override ignored: %d", cfg.Simulation.Seed)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("env level override ignored: %q", cfg.Logging.Level)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero ticks", func(c *Config) { c.Simulation.Ticks = 0 }},
		{"negative impact", func(c *Config) { c.Market.PriceImpact = -1 }},
		{"negative volatility", func(c *Config) { c.Market.Volatility = -0.1 }},
		{"no securities", func(c *Config) { c.Market.Securities = nil; c.Market.UniverseCSV = "" }},
		{"zero initial price", func(c *Config) { c.Market.Securities[0].InitialPrice = 0 }},
		{"unknown agent kind", func(c *Config) { c.Agents[0].Kind = "llm" }},
		{"negative agent cash", func(c *Config) { c.Agents[0].Cash = -1 }},
		{"bad news probability", func(c *Config) { c.News.Probability = 1.5 }},
		{"server without addr", func(c *Config) { c.Server.Enabled = true; c.Server.ListenAddr = "" }},
	}
	for _, c := range cases {
		cfg, err := LoadConfig(writeScenario(t, validScenario))
		if err != nil {
			t.Fatalf("%s: baseline load failed: %v", c.name, err)
		}
		c.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", c.name)
		}
	}
}

func TestLoadUniverse(t *testing.T) {
	csv := `ticker,name,sector,price_5,price_4,price_3,price_2,price_1,current_price
AAPL,Apple Inc,Technology,148.1,149.0,147.5,150.2,151.0,150.0
JNJ,Johnson & Johnson,Healthcare,160.0,161.2,159.8,162.0,161.5,162.3
`
	path := filepath.Join(t.TempDir(), "stocks.csv")
	if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}

	universe, err := LoadUniverse(path)
	if err != nil {
		t.Fatalf("LoadUniverse failed: %v", err)
	}
	if len(universe) != 2 {
		t.Fatalf("expected 2 securities, got %d", len(universe))
	}

	aapl := universe[0]
	if aapl.Ticker != "AAPL" || aapl.Sector != "Technology" || aapl.Price != 150.0 {
		t.Errorf("AAPL row mismatch: %+v", aapl)
	}
	if len(aapl.History) != 5 || aapl.History[0] != 148.1 || aapl.History[4] != 151.0 {
		t.Errorf("AAPL history mismatch: %v", aapl.History)
	}
}

func TestLoadUniverse_MissingColumn(t *testing.T) {
	csv := "ticker,name\nAAPL,Apple\n"
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}
	if _, err := LoadUniverse(path); err == nil {
		t.Error("expected error for missing columns")
	}
}

package infra

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// SecurityConfig declares one tradable security in the scenario.
type SecurityConfig struct {
	ID           string  `yaml:"id"`
	InitialPrice float64 `yaml:"initial_price"`
}

// AgentConfig declares one simulated participant.
type AgentConfig struct {
	ID        string           `yaml:"id"`
	Kind      string           `yaml:"kind"` // random | momentum | market_maker | holder
	Cash      float64          `yaml:"cash"`
	Positions map[string]int64 `yaml:"positions"`
}

// Config holds the full scenario: market parameters, participants,
// and runtime settings. Environment variables override file values
// after load.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Simulation struct {
		Ticks          int   `yaml:"ticks"`
		TickIntervalMS int   `yaml:"tick_interval_ms"`
		Seed           int64 `yaml:"seed"`
	} `yaml:"simulation"`

	Market struct {
		PriceImpact float64          `yaml:"price_impact"`
		Volatility  float64          `yaml:"volatility"`
		UniverseCSV string           `yaml:"universe_csv"`
		Securities  []SecurityConfig `yaml:"securities"`
	} `yaml:"market"`

	Agents []AgentConfig `yaml:"agents"`

	News struct {
		Enabled     bool    `yaml:"enabled"`
		Probability float64 `yaml:"probability"` // per-tick chance of an event
	} `yaml:"news"`

	Server struct {
		Enabled    bool   `yaml:"enabled"`
		ListenAddr string `yaml:"listen_addr"`
		CORSOrigin string `yaml:"cors_origin"`
	} `yaml:"server"`

	Storage struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"` // empty means <workspace>/data/ticks.db
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the scenario file, applies env-var
// overrides, and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Simulation.Ticks <= 0 {
		return fmt.Errorf("simulation.ticks must be positive")
	}
	if c.Simulation.TickIntervalMS < 0 {
		return fmt.Errorf("simulation.tick_interval_ms must not be negative")
	}
	if c.Market.PriceImpact < 0 {
		return fmt.Errorf("market.price_impact must not be negative")
	}
	if c.Market.Volatility < 0 {
		return fmt.Errorf("market.volatility must not be negative")
	}
	if len(c.Market.Securities) == 0 && c.Market.UniverseCSV == "" {
		return fmt.Errorf("at least one security or a universe CSV is required")
	}
	for _, sec := range c.Market.Securities {
		if sec.ID == "" {
			return fmt.Errorf("security id must not be empty")
		}
		if sec.InitialPrice <= 0 {
			return fmt.Errorf("security %s: initial_price must be positive", sec.ID)
		}
	}
	for _, agent := range c.Agents {
		if agent.ID == "" {
			return fmt.Errorf("agent id must not be empty")
		}
		if agent.Cash < 0 {
			return fmt.Errorf("agent %s: cash must not be negative", agent.ID)
		}
		switch agent.Kind {
		case "random", "momentum", "market_maker", "holder":
		default:
			return fmt.Errorf("agent %s: unknown kind %q", agent.ID, agent.Kind)
		}
	}
	if c.News.Probability < 0 || c.News.Probability > 1 {
		return fmt.Errorf("news.probability must be within [0, 1]")
	}
	if c.Server.Enabled && c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required when the server is enabled")
	}
	return nil
}

// overrideWithEnv lets environment variables take precedence over the
// scenario file for runtime knobs.
func overrideWithEnv(cfg *Config) {
	if addr := os.Getenv("SIM_LISTEN_ADDR"); addr != "" {
		cfg.Server.ListenAddr = addr
	}
	if path := os.Getenv("SIM_DB_PATH"); path != "" {
		cfg.Storage.Path = path
	}
	if seed := os.Getenv("SIM_SEED"); seed != "" {
		if v, err := strconv.ParseInt(seed, 10, 64); err == nil {
			cfg.Simulation.Seed = v
		}
	}
	if level := os.Getenv("SIM_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

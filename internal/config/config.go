// Package config loads run configuration from YAML files and environment
// variables and converts it into engine parameters.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/warzone/internal/engine"
	"github.com/talgya/warzone/internal/entropy"
	"github.com/talgya/warzone/internal/world"
)

// Crowded-area sources.
const (
	CrowdsFixed = "fixed" // classic layout scaled to the grid, or Crowds.Areas
	CrowdsNoise = "noise" // opensimplex density peaks
)

// Point is a cell coordinate in config files.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Config is the full run configuration.
type Config struct {
	Grid struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"grid"`

	Population struct {
		Civilians  int `yaml:"civilians"`
		Military   int `yaml:"military"`
		Insurgents int `yaml:"insurgents"`
	} `yaml:"population"`

	// Seed is optional; when absent each run draws one from entropy.
	Seed *int64 `yaml:"seed"`

	Crowds struct {
		Source  string  `yaml:"source"`
		Areas   []Point `yaml:"areas"`
		Count   int     `yaml:"count"`    // noise source only
		MinDist int     `yaml:"min_dist"` // noise source only
	} `yaml:"crowds"`

	Rules engine.Rules `yaml:"rules"`

	Run struct {
		MaxTicks uint64        `yaml:"max_ticks"` // 0 = until a population is wiped out
		Runs     int           `yaml:"runs"`
		SeedStep int64         `yaml:"seed_step"`
		Interval time.Duration `yaml:"interval"` // paced mode only
	} `yaml:"run"`

	DBPath       string `yaml:"db_path"`
	APIPort      int    `yaml:"api_port"` // 0 = no HTTP API
	LogLevel     string `yaml:"log_level"`
	RandomOrgKey string `yaml:"-"`
}

// Default returns the classic scenario: 30×30 grid, 100 civilians,
// 50 soldiers, 20 insurgents.
func Default() *Config {
	cfg := &Config{}
	cfg.Grid.Width = world.ReferenceSize
	cfg.Grid.Height = world.ReferenceSize
	cfg.Population.Civilians = 100
	cfg.Population.Military = 50
	cfg.Population.Insurgents = 20
	cfg.Crowds.Source = CrowdsFixed
	cfg.Rules = engine.DefaultRules()
	cfg.Run.MaxTicks = 10000
	cfg.Run.Runs = 1
	cfg.Run.SeedStep = 1
	cfg.Run.Interval = 200 * time.Millisecond
	cfg.DBPath = "data/warzone.db"
	cfg.LogLevel = "info"
	return cfg
}

// Load reads a YAML file over the defaults. Fields absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides storage, API and logging settings from the environment.
func (c *Config) ApplyEnv() {
	c.DBPath = envOrDefault("WARZONE_DB", c.DBPath)
	c.LogLevel = envOrDefault("WARZONE_LOG_LEVEL", c.LogLevel)
	c.RandomOrgKey = envOrDefault("RANDOM_ORG_KEY", c.RandomOrgKey)
	if v := os.Getenv("WARZONE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.APIPort = port
		}
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Validate checks the configuration. Simulation parameter problems are
// reported as *engine.ConfigError.
func (c *Config) Validate() error {
	switch c.Crowds.Source {
	case CrowdsFixed, CrowdsNoise:
	default:
		return &engine.ConfigError{Field: "crowds.source", Reason: fmt.Sprintf("unknown source %q", c.Crowds.Source)}
	}
	if c.Run.Runs < 1 {
		return &engine.ConfigError{Field: "run.runs", Reason: "must be at least 1"}
	}
	return c.Params(0).Validate()
}

// Params builds engine parameters for a run with the given seed.
func (c *Config) Params(seed int64) engine.Params {
	p := engine.Params{
		Width:      c.Grid.Width,
		Height:     c.Grid.Height,
		Civilians:  c.Population.Civilians,
		Military:   c.Population.Military,
		Insurgents: c.Population.Insurgents,
		Seed:       seed,
		Rules:      c.Rules,
	}
	switch {
	case c.Crowds.Source == CrowdsNoise && c.Grid.Width > 0 && c.Grid.Height > 0:
		nc := world.DefaultNoiseConfig(seed)
		if c.Crowds.Count > 0 {
			nc.Count = c.Crowds.Count
		}
		if c.Crowds.MinDist > 0 {
			nc.MinDist = c.Crowds.MinDist
		}
		p.CrowdedAreas = world.NoiseCrowdedAreas(c.Grid.Width, c.Grid.Height, nc)
	case len(c.Crowds.Areas) > 0:
		for _, a := range c.Crowds.Areas {
			p.CrowdedAreas = append(p.CrowdedAreas, world.Position{X: a.X, Y: a.Y})
		}
	}
	return p
}

// BaseSeed returns the configured seed, or a fresh one from entropy.
func (c *Config) BaseSeed() int64 {
	if c.Seed != nil {
		return *c.Seed
	}
	return entropy.Seed(entropy.NewClient(c.RandomOrgKey))
}

// RunSeeds returns the seed of every run in a batch.
func (c *Config) RunSeeds() []int64 {
	base := c.BaseSeed()
	seeds := make([]int64, c.Run.Runs)
	for i := range seeds {
		seeds[i] = base + int64(i)*c.Run.SeedStep
	}
	return seeds
}

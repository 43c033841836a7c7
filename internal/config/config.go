package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/sim"
)

const (
	DefaultMaxSteps = 1000
	DefaultGenerate = "grid:10x10"
	DefaultLogLevel = "info"
)

var ErrNoGraph = errors.New("config: no graph source")

type Config struct {
	Graph    GraphConfig  `yaml:"graph"`
	Layout   LayoutConfig `yaml:"layout"`
	Run      RunConfig    `yaml:"run"`
	LogLevel string       `yaml:"log_level"`
}

// GraphConfig names where the graph comes from. File takes precedence over
// Generate.
type GraphConfig struct {
	File     string `yaml:"file,omitempty"`
	Format   string `yaml:"format,omitempty"`
	Generate string `yaml:"generate,omitempty"`
}

type LayoutConfig struct {
	Dimensions      int     `yaml:"dimensions"`
	Gravity         float64 `yaml:"gravity"`
	Theta           float64 `yaml:"theta"`
	DragCoeff       float64 `yaml:"drag_coeff"`
	SpringCoeff     float64 `yaml:"spring_coeff"`
	SpringLength    float64 `yaml:"spring_length"`
	TimeStep        float64 `yaml:"time_step"`
	StableThreshold float64 `yaml:"stable_threshold"`
	Seed            int64   `yaml:"seed"`
	Workers         int     `yaml:"workers"`
}

type RunConfig struct {
	MaxSteps int `yaml:"max_steps"`
}

func DefaultConfig() *Config {
	return &Config{
		Graph:    GraphConfig{Generate: DefaultGenerate},
		Layout:   FromSettings(layout.DefaultSettings()),
		Run:      RunConfig{MaxSteps: DefaultMaxSteps},
		LogLevel: DefaultLogLevel,
	}
}

// Load reads path over DefaultConfig, so omitted keys keep their defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto reads path over cfg and validates the result. Keys the file
// omits keep their values in cfg, except that a graph section replaces the
// whole graph source: a file naming only a graph file does not inherit a
// generator.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var source struct {
		Graph *GraphConfig `yaml:"graph"`
	}
	if err := yaml.Unmarshal(data, &source); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if source.Graph != nil {
		cfg.Graph = *source.Graph
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.Settings().Validate(); err != nil {
		return err
	}
	return c.SimConfig().Validate()
}

func (c *Config) Settings() layout.Settings {
	l := c.Layout
	return layout.Settings{
		Gravity:         l.Gravity,
		Theta:           l.Theta,
		DragCoeff:       l.DragCoeff,
		SpringCoeff:     l.SpringCoeff,
		SpringLength:    l.SpringLength,
		TimeStep:        l.TimeStep,
		StableThreshold: l.StableThreshold,
		Dimensions:      l.Dimensions,
		Seed:            l.Seed,
		Workers:         l.Workers,
	}
}

func FromSettings(s layout.Settings) LayoutConfig {
	return LayoutConfig{
		Dimensions:      s.Dimensions,
		Gravity:         s.Gravity,
		Theta:           s.Theta,
		DragCoeff:       s.DragCoeff,
		SpringCoeff:     s.SpringCoeff,
		SpringLength:    s.SpringLength,
		TimeStep:        s.TimeStep,
		StableThreshold: s.StableThreshold,
		Seed:            s.Seed,
		Workers:         s.Workers,
	}
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		MaxSteps:        c.Run.MaxSteps,
		StableThreshold: c.Layout.StableThreshold,
	}
}

// LoadGraph reads the configured file or runs the configured generator.
func (c *Config) LoadGraph() (*graph.Graph, error) {
	switch {
	case c.Graph.File != "":
		return graph.LoadFile(c.Graph.File, c.Graph.Format)
	case c.Graph.Generate != "":
		return graph.Parse(c.Graph.Generate)
	default:
		return nil, ErrNoGraph
	}
}

// Describe names the graph source for logs and run metadata.
func (c *Config) Describe() string {
	if c.Graph.File != "" {
		return c.Graph.File
	}
	return c.Graph.Generate
}

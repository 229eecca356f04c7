package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Config holds the daemon configuration.
type Config struct {
	Seed        int64   `yaml:"seed" json:"seed"`
	Noise       string  `yaml:"noise" json:"noise"` // "opensimplex" or "simplex"
	Frequency   float64 `yaml:"frequency" json:"frequency"`
	Amplitude   float64 `yaml:"amplitude" json:"amplitude"`
	BaseHeight  float64 `yaml:"base_height" json:"base_height"`
	DirtDepth   int     `yaml:"dirt_depth" json:"dirt_depth"`
	Octaves     int     `yaml:"octaves" json:"octaves"`
	Persistence float64 `yaml:"persistence" json:"persistence"`
	OreChance   float64 `yaml:"ore_chance" json:"ore_chance"`
	Generator   string  `yaml:"generator" json:"generator"` // "terrain" or "flat"
	FlatHeight  int     `yaml:"flat_height" json:"flat_height"`

	RenderRadius  int    `yaml:"render_radius" json:"render_radius"`
	UnloadRadius  int    `yaml:"unload_radius" json:"unload_radius"` // must exceed render_radius
	ChunksPerTick int    `yaml:"chunks_per_tick" json:"chunks_per_tick"`
	Collider      string `yaml:"collider" json:"collider"` // "voxels" or "trimesh"

	TickRate  int    `yaml:"tick_rate" json:"tick_rate"` // ticks per second
	Listen    string `yaml:"listen" json:"listen"`       // feed address, empty disables the feed
	AtlasFile string `yaml:"atlas_file" json:"atlas_file"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Seed:          213123,
		Noise:         "opensimplex",
		Frequency:     0.065,
		Amplitude:     5,
		BaseHeight:    8,
		DirtDepth:     3,
		Octaves:       1,
		Persistence:   0.5,
		OreChance:     0.05,
		Generator:     "terrain",
		FlatHeight:    4,
		RenderRadius:  13,
		UnloadRadius:  16,
		ChunksPerTick: 1,
		Collider:      "voxels",
		TickRate:      20,
		Listen:        ":8080",
		LogLevel:      "info",
	}
}

// Load reads a YAML config file. Keys absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["noise"] {
		cfg.Noise = fromFile.Noise
	}
	cfg.Frequency = fromFile.Frequency
	cfg.Amplitude = fromFile.Amplitude
	cfg.BaseHeight = fromFile.BaseHeight
	cfg.DirtDepth = fromFile.DirtDepth
	cfg.Octaves = fromFile.Octaves
	cfg.Persistence = fromFile.Persistence
	cfg.OreChance = fromFile.OreChance
	if !explicitFlags["generator"] {
		cfg.Generator = fromFile.Generator
	}
	if !explicitFlags["flat-height"] {
		cfg.FlatHeight = fromFile.FlatHeight
	}
	if !explicitFlags["render-radius"] {
		cfg.RenderRadius = fromFile.RenderRadius
	}
	if !explicitFlags["unload-radius"] {
		cfg.UnloadRadius = fromFile.UnloadRadius
	}
	if !explicitFlags["chunks-per-tick"] {
		cfg.ChunksPerTick = fromFile.ChunksPerTick
	}
	if !explicitFlags["collider"] {
		cfg.Collider = fromFile.Collider
	}
	if !explicitFlags["tick-rate"] {
		cfg.TickRate = fromFile.TickRate
	}
	if !explicitFlags["listen"] {
		cfg.Listen = fromFile.Listen
	}
	if !explicitFlags["atlas"] {
		cfg.AtlasFile = fromFile.AtlasFile
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
}

//go:embed config.schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("config.schema.json", schemaJSON)

// Validate checks cfg against the config schema and the streaming radius
// invariant.
func (c *Config) Validate() error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.UnloadRadius <= c.RenderRadius {
		return fmt.Errorf("invalid config: unload_radius %d must exceed render_radius %d",
			c.UnloadRadius, c.RenderRadius)
	}
	return nil
}

// SlogLevel returns the configured log level. Unknown names map to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"threes/eval"
	"threes/searcher"
)

const (
	ModeConsole    = "console"
	ModeAI         = "ai"
	ModeServe      = "serve"
	ModeExperiment = "experiment"
)

// Config is the file format read by Load. Zero values fall back to Default.
type Config struct {
	Mode       string        `yaml:"mode"`
	Depth      int           `yaml:"depth"`
	Goroutines int           `yaml:"goroutines"`
	Duration   time.Duration `yaml:"duration"` // Search budget per move, 0 for none
	Games      int           `yaml:"games"`
	Seed       uint64        `yaml:"seed"` // 0 picks a random seed
	Addr       string        `yaml:"addr"`
	Remote     string        `yaml:"remote"` // Websocket URL of a session server, empty to play locally
	Mirrored   bool          `yaml:"mirrored"`
	LogLevel   string        `yaml:"log_level"`
	StatsDir   string        `yaml:"stats_dir"`
	Weights    eval.Weights  `yaml:"weights"`
}

func Default() Config {
	return Config{
		Mode:     ModeConsole,
		Depth:    searcher.DefaultDepth,
		Games:    1,
		Addr:     ":8080",
		LogLevel: "info",
		StatsDir: "stats",
		Weights:  eval.DefaultWeights,
	}
}

// Load reads path over Default. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeConsole, ModeAI, ModeServe, ModeExperiment:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.Depth < 1 {
		return fmt.Errorf("depth must be positive, got %d", c.Depth)
	}
	if c.Goroutines < 0 || c.Games < 0 || c.Duration < 0 {
		return fmt.Errorf("goroutines, games and duration must not be negative")
	}
	return nil
}

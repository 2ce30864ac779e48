// Package config defines the YAML configuration of graphword.
//
// The file is optional. Fields it omits keep the values from Default, and
// unknown keys are rejected so typos do not go unnoticed. Environment
// variables written as ${VAR} are expanded before parsing.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Graph   GraphConfig   `yaml:"graph"`
	Events  EventsConfig  `yaml:"events"`
	Builder BuilderConfig `yaml:"builder"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	EnableMCP    bool          `yaml:"enable_mcp"`
}

// GraphConfig locates the served graph.
type GraphConfig struct {
	Path          string        `yaml:"path"`
	SnapshotDir   string        `yaml:"snapshot_dir"` // defaults to the directory of Path
	Watch         bool          `yaml:"watch"`
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// EventsConfig configures the request event log.
type EventsConfig struct {
	Enabled bool     `yaml:"enabled"`
	Dir     string   `yaml:"dir"`
	Skip    []string `yaml:"skip"`
}

// BuilderConfig configures the offline graph builder.
type BuilderConfig struct {
	VocabularyPath string        `yaml:"vocabulary_path"`
	OutputPath     string        `yaml:"output_path"`
	MinWordLength  int           `yaml:"min_word_length"`
	MaxWordLength  int           `yaml:"max_word_length"`
	Pace           time.Duration `yaml:"pace"`
	CrossLength    bool          `yaml:"cross_length"`
	Workers        int           `yaml:"workers"` // 0 = GOMAXPROCS
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Format string `yaml:"format"` // "text" or "json"
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			EnableMCP:    true,
		},
		Graph: GraphConfig{
			Path:          "datamart_graph/word_graph.txt",
			WatchDebounce: 500 * time.Millisecond,
		},
		Events: EventsConfig{
			Enabled: true,
			Dir:     "datalake/events",
			Skip:    []string{"/health", "/metrics"},
		},
		Builder: BuilderConfig{
			VocabularyPath: "datamart_dictionary/global_vocabulary.txt",
			OutputPath:     "datamart_graph/word_graph.txt",
			MinWordLength:  3,
			MaxWordLength:  7,
			Pace:           5 * time.Second,
		},
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
	}
}

// Load reads path on top of Default. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read configuration file '%s': %w", path, err)
	}

	decoder := yaml.NewDecoder(strings.NewReader(os.ExpandEnv(string(data))))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("YAML syntax error in '%s': %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration in '%s': %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that have no sensible fallback.
func (c Config) Validate() error {
	if c.Graph.Path == "" {
		return fmt.Errorf("graph.path must not be empty")
	}
	if c.Builder.MinWordLength < 1 {
		return fmt.Errorf("builder.min_word_length must be positive, got %d", c.Builder.MinWordLength)
	}
	if c.Builder.MaxWordLength < c.Builder.MinWordLength {
		return fmt.Errorf("builder.max_word_length (%d) is below min_word_length (%d)", c.Builder.MaxWordLength, c.Builder.MinWordLength)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Package config handles persistent xbsearch defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the run defaults a user can persist instead of repeating
// flags. Command line flags always win over file values.
type Config struct {
	// Engine selects the search backend to query.
	Engine string `toml:"engine"`

	// Pages is the number of result pages fetched per word.
	Pages int `toml:"pages"`

	// Delay is the minimum spacing between page requests, in seconds.
	Delay float64 `toml:"delay"`

	// Jitter adds up to this fraction of Delay as random extra wait.
	Jitter float64 `toml:"jitter"`

	// Timeout bounds a single page request, in seconds.
	Timeout float64 `toml:"timeout"`

	// StripWWW folds www. hosts into their bare domain.
	StripWWW bool `toml:"strip_www"`

	// RespectRobots consults the backend's robots.txt before fetching.
	RespectRobots bool `toml:"respect_robots"`

	// UserAgents points to a file with one User-Agent per line.
	UserAgents string `toml:"user_agents"`

	// Proxies points to a file with one proxy URL per line.
	Proxies string `toml:"proxies"`

	// Journal is the DSN of the fetch journal (CSV, NDJSON, SQLite, Postgres).
	Journal string `toml:"journal"`

	// MetricsPort exposes Prometheus metrics on this port while a run lasts.
	MetricsPort int `toml:"metrics_port"`

	// Verbose enables detailed output.
	Verbose bool `toml:"verbose"`
}

// Default returns the built-in run defaults.
func Default() *Config {
	return &Config{
		Engine:  "duckduckgo",
		Pages:   3,
		Timeout: 30,
	}
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "xbsearch.toml"
	}
	return filepath.Join(home, ".xbsearch", "config.toml")
}

// Load reads configuration from a file, filling unset keys with built-in
// defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes configuration to a file, creating the directory if needed.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	content := "# xbsearch configuration\n# Values here are defaults; command line flags override them.\n\n" + string(data)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}

	return nil
}

// Exists checks if a config file exists.
func Exists(path string) bool {
	if path == "" {
		path = DefaultConfigPath()
	}
	_, err := os.Stat(path)
	return err == nil
}

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is looked up in the working directory when no --config is given
const FileName = ".patchscan.toml"

type Config struct {
	Output   OutputConfig   `toml:"output"`
	Log      LogConfig      `toml:"log"`
	Analyze  AnalyzeConfig  `toml:"analyze"`
	Database DatabaseConfig `toml:"database"`
	Watch    WatchConfig    `toml:"watch"`
}

type OutputConfig struct {
	Format  string `toml:"format"` // text, json, yaml
	Resolve bool   `toml:"resolve"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text, json
}

type AnalyzeConfig struct {
	HubThreshold int `toml:"hub_threshold"`
	TopN         int `toml:"top_n"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type WatchConfig struct {
	DebounceMs int `toml:"debounce_ms"`
}

// Load reads path if given, otherwise the first default location that
// exists, then applies PATCHSCAN_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	} else {
		for _, loc := range defaultLocations() {
			if _, err := os.Stat(loc); err == nil {
				if _, err := toml.DecodeFile(loc, cfg); err != nil {
					return nil, err
				}
				break
			}
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func defaultLocations() []string {
	locations := []string{FileName}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "patchscan", "config.toml"))
	}
	return locations
}

func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format: "text",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Analyze: AnalyzeConfig{
			HubThreshold: 8,
			TopN:         20,
		},
		Database: DatabaseConfig{
			Path: "patchscan.db",
		},
		Watch: WatchConfig{
			DebounceMs: 200,
		},
	}
}

// Validate returns human-readable warnings; none of them stop the tool
func Validate(cfg *Config) []string {
	var warnings []string

	switch strings.ToLower(cfg.Output.Format) {
	case "text", "json", "yaml":
	default:
		warnings = append(warnings, "output format must be one of text, json, yaml")
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		warnings = append(warnings, "log level must be one of debug, info, warn, error")
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		warnings = append(warnings, "log format must be text or json")
	}

	if cfg.Analyze.HubThreshold < 1 {
		warnings = append(warnings, "analyze hub_threshold must be at least 1")
	}
	if cfg.Analyze.TopN < 1 {
		warnings = append(warnings, "analyze top_n must be at least 1")
	}

	if cfg.Database.Path == "" {
		warnings = append(warnings, "database path cannot be empty")
	}

	if cfg.Watch.DebounceMs < 10 {
		warnings = append(warnings, "watch debounce must be at least 10ms")
	}
	if cfg.Watch.DebounceMs > 60000 {
		warnings = append(warnings, "watch debounce exceeds reasonable maximum (60000ms)")
	}

	return warnings
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PATCHSCAN_FORMAT"); v != "" {
		cfg.Output.Format = v
	}
	if v := os.Getenv("PATCHSCAN_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PATCHSCAN_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("PATCHSCAN_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("PATCHSCAN_WATCH_DEBOUNCE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Watch.DebounceMs = ms
		}
	}
}

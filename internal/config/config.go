package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/samsaffron/streamdown/internal/render"
	"github.com/samsaffron/streamdown/internal/theme"
)

type Config struct {
	Renderer        string         `mapstructure:"renderer" yaml:"renderer"`
	Width           int            `mapstructure:"width" yaml:"width"` // 0 = terminal width
	Style           string         `mapstructure:"style" yaml:"style,omitempty"`
	ParseIncomplete bool           `mapstructure:"parse_incomplete" yaml:"parse_incomplete"`
	CompleteAll     bool           `mapstructure:"complete_all" yaml:"complete_all"`
	Theme           theme.Config   `mapstructure:"theme" yaml:"theme,omitempty"`
	Simulate        SimulateConfig `mapstructure:"simulate" yaml:"simulate"`
	DebugLog        DebugLogConfig `mapstructure:"debug_log" yaml:"debug_log"`
}

// SimulateConfig paces replayed input as if it were arriving from a model
type SimulateConfig struct {
	ChunkSize int           `mapstructure:"chunk_size" yaml:"chunk_size"` // max words per frame
	Delay     time.Duration `mapstructure:"delay" yaml:"delay"`           // time between frames
}

// DebugLogConfig configures frame logging
type DebugLogConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir        string `mapstructure:"dir" yaml:"dir,omitempty"` // Override default directory
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// Load reads config.yaml from the config directory or the working
// directory. A missing file is not an error.
func Load() (*Config, error) {
	configPath, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}
	return LoadFrom(configPath, ".")
}

// LoadFrom is Load with explicit search directories.
func LoadFrom(dirs ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	// STREAMDOWN_RENDERER, STREAMDOWN_SIMULATE_DELAY, ...
	v.SetEnvPrefix("streamdown")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - won't error if missing)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.DebugLog.Dir = expandHome(cfg.DebugLog.Dir)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("renderer", render.NameGlamour)
	v.SetDefault("width", 0)
	v.SetDefault("style", "") // derive from theme
	v.SetDefault("parse_incomplete", true)
	v.SetDefault("complete_all", false)
	v.SetDefault("theme.preset", "dark")
	v.SetDefault("simulate.chunk_size", 3)
	v.SetDefault("simulate.delay", "16ms")
	v.SetDefault("debug_log.enabled", false)
	v.SetDefault("debug_log.max_age_days", 7)
}

// Defaults returns the configuration used when no file exists.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// ApplyOverrides applies command-line overrides. Empty or zero values leave
// the configured setting alone.
func (c *Config) ApplyOverrides(renderer string, width int) {
	if renderer != "" {
		c.Renderer = renderer
	}
	if width > 0 {
		c.Width = width
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if c.Renderer != "" && !slices.Contains(render.Names(), c.Renderer) {
		return fmt.Errorf("unknown renderer %q (valid: %s)", c.Renderer, strings.Join(render.Names(), ", "))
	}
	if c.Width < 0 {
		return fmt.Errorf("width must not be negative, got %d", c.Width)
	}
	if c.Theme.Preset != "" {
		if _, ok := theme.Preset(c.Theme.Preset); !ok {
			return fmt.Errorf("unknown theme preset %q (valid: %s)", c.Theme.Preset, strings.Join(theme.PresetNames(), ", "))
		}
	}
	if c.Simulate.Delay < 0 {
		return fmt.Errorf("simulate.delay must not be negative, got %s", c.Simulate.Delay)
	}
	return nil
}

// RenderOptions returns the renderer options this config describes.
func (c *Config) RenderOptions() render.Options {
	return render.Options{
		Width: c.Width,
		Style: c.Style,
		Theme: theme.FromConfig(c.Theme),
	}
}

// DebugLogDir returns where debug logs are written.
func (c *Config) DebugLogDir() string {
	if c.DebugLog.Dir != "" {
		return c.DebugLog.Dir
	}
	return GetDebugLogDir()
}

// expandHome expands a leading ~ in a path
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetConfigDir returns the XDG config directory for streamdown.
// Uses $XDG_CONFIG_HOME if set, otherwise ~/.config
func GetConfigDir() (string, error) {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, "streamdown"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "streamdown"), nil
}

// GetConfigPath returns the path where the config file should be located
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// GetDebugLogDir returns the XDG data directory for debug logs.
// Uses $XDG_DATA_HOME if set, otherwise ~/.local/share
func GetDebugLogDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "streamdown", "debug")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "streamdown-debug") // fallback
	}
	return filepath.Join(homeDir, ".local", "share", "streamdown", "debug")
}

// Exists returns true if a config file exists
func Exists() bool {
	path, err := GetConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

const saveHeader = `# streamdown configuration
# renderer: glamour | terminal | html | plain | raw
# width: 0 uses the terminal width
# theme colours are ANSI numbers (0-255) or hex codes (#RRGGBB)

`

// Save writes the config to disk
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, append([]byte(saveHeader), data...), 0600)
}

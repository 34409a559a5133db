// Package config loads typewriter settings with viper from a YAML file,
// TYPEWRITER_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. TYPEWRITER_TYPEWRITER_LOOP.
const EnvPrefix = "TYPEWRITER"

// EnvConfigFile names a config file to use when --config is not given.
const EnvConfigFile = "TYPEWRITER_CONFIG"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full application configuration.
type Config struct {
	Typewriter TypewriterConfig `mapstructure:"typewriter"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	TUI        TUIConfig        `mapstructure:"tui"`
	History    HistoryConfig    `mapstructure:"history"`
	Scripts    ScriptsConfig    `mapstructure:"scripts"`
}

// TypewriterConfig holds sequencer defaults.
type TypewriterConfig struct {
	TypeSpeed time.Duration `mapstructure:"type_speed"`
	Loop      bool          `mapstructure:"loop"`
}

// LoggingConfig controls the zerolog setup.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TUIConfig controls the terminal UI.
type TUIConfig struct {
	Theme string `mapstructure:"theme"`
}

// HistoryConfig controls run recording.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ScriptsConfig lists extra script directories searched before the defaults.
type ScriptsConfig struct {
	Dirs []string `mapstructure:"dirs"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Typewriter: TypewriterConfig{
			TypeSpeed: 50 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		TUI: TUIConfig{
			Theme: "default",
		},
		History: HistoryConfig{
			Path: DefaultHistoryPath(),
		},
	}
}

// DefaultHistoryPath returns ~/.local/share/typewriter/history.db, or a
// relative path when the home directory is unknown.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".typewriter", "history.db")
	}
	return filepath.Join(home, ".local", "share", "typewriter", "history.db")
}

// SetDefaults registers DefaultConfig values on v so that environment
// variables can override keys that no file sets.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("typewriter.type_speed", d.Typewriter.TypeSpeed)
	v.SetDefault("typewriter.loop", d.Typewriter.Loop)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("tui.theme", d.TUI.Theme)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("scripts.dirs", []string{})
}

// Setup points v at the config file and enables environment overrides.
// cfgFile wins over $TYPEWRITER_CONFIG, which wins over the search for
// typewriter.yaml in the working directory and ~/.config/typewriter/config.yaml.
// A missing default file is not an error.
func Setup(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := cfgFile
	if explicit == "" {
		explicit = os.Getenv(EnvConfigFile)
	}

	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", explicit, err)
		}
		return nil
	}

	v.SetConfigName("typewriter")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "typewriter"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes v into a Config on top of the defaults and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Comma-separated env values arrive as a single string.
	if v.IsSet("scripts.dirs") {
		cfg.Scripts.Dirs = v.GetStringSlice("scripts.dirs")
	}
	cfg.Scripts.Dirs = expandDirs(cfg.Scripts.Dirs)
	cfg.History.Path = expandHome(cfg.History.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var problems []string

	if c.Typewriter.TypeSpeed < 0 {
		problems = append(problems, "typewriter.type_speed must not be negative")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "disabled":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q is not a known level", c.Logging.Level))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q must be console or json", c.Logging.Format))
	}

	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		problems = append(problems, "history.path is required when history is enabled")
	}

	for _, dir := range c.Scripts.Dirs {
		if strings.ContainsRune(dir, 0) {
			problems = append(problems, fmt.Sprintf("scripts.dirs entry %q is not a valid path", dir))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func expandDirs(dirs []string) []string {
	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		out = append(out, expandHome(dir))
	}
	return out
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

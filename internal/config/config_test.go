package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 50*time.Millisecond, cfg.Typewriter.TypeSpeed)
	assert.False(t, cfg.Typewriter.Loop)
	assert.Equal(t, "default", cfg.TUI.Theme)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv(EnvConfigFile, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "typewriter.yaml")
	content := `typewriter:
  type_speed: 20ms
  loop: true
logging:
  level: debug
  format: json
history:
  enabled: true
  path: /tmp/tw.db
scripts:
  dirs:
    - ./one
    - ./two
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := viper.New()
	require.NoError(t, Setup(v, path))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, cfg.Typewriter.TypeSpeed)
	assert.True(t, cfg.Typewriter.Loop)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "/tmp/tw.db", cfg.History.Path)
	assert.Equal(t, []string{"./one", "./two"}, cfg.Scripts.Dirs)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvConfigFile, "")
	t.Setenv("TYPEWRITER_TYPEWRITER_LOOP", "true")
	t.Setenv("TYPEWRITER_TUI_THEME", "high-contrast")

	v := viper.New()
	v.AddConfigPath(t.TempDir())
	require.NoError(t, Setup(v, ""))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.True(t, cfg.Typewriter.Loop)
	assert.Equal(t, "high-contrast", cfg.TUI.Theme)
}

func TestSetupExplicitMissingFile(t *testing.T) {
	v := viper.New()
	err := Setup(v, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSetupEnvConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tui:\n  theme: high-contrast\n"), 0o644))
	t.Setenv(EnvConfigFile, path)

	v := viper.New()
	require.NoError(t, Setup(v, ""))
	assert.Equal(t, path, v.ConfigFileUsed())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "high-contrast", cfg.TUI.Theme)
}

func TestLoadRejectsInvalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("logging.format", "xml")

	cfg, err := Load(v)
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "negative speed", mutate: func(c *Config) { c.Typewriter.TypeSpeed = -time.Millisecond }, wantErr: true},
		{name: "zero speed", mutate: func(c *Config) { c.Typewriter.TypeSpeed = 0 }},
		{name: "warning level", mutate: func(c *Config) { c.Logging.Level = "warning" }},
		{name: "unknown level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: true},
		{name: "history without path", mutate: func(c *Config) {
			c.History.Enabled = true
			c.History.Path = " "
		}, wantErr: true},
		{name: "history disabled without path", mutate: func(c *Config) { c.History.Path = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "scripts"), expandHome("~/scripts"))
	assert.Equal(t, "./scripts", expandHome("./scripts"))
	assert.Equal(t, []string{"a", filepath.Join(home, "b")}, expandDirs([]string{" a ", "", "~/b"}))
}

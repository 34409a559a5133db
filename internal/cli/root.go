// Package cli implements the typewriter command-line interface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GustavoCosta/typewriter/internal/config"
	"github.com/GustavoCosta/typewriter/internal/db"
	"github.com/GustavoCosta/typewriter/internal/logging"
)

var (
	cfgFile        string
	logLevel       string
	jsonOutput     bool
	jsonlOutput    bool
	nonInteractive bool
	noProgress     bool

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "typewriter",
	Short: "Animate text with timed type, pause and delete actions",
	Long: `typewriter plays scripted text animations in the terminal.

A script is a YAML list of steps (type, pause, delete_all, delete_chars)
that run one after another, optionally looping forever.

Quick Start:
  typewriter play                 Play the builtin demo script
  typewriter play --text "hi"     Type a single line
  typewriter ui hello             Play a script in the full-screen UI
  typewriter scripts list         List available scripts
  typewriter history              Show recorded runs`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./typewriter.yaml or ~/.config/typewriter/config.yaml, also $TYPEWRITER_CONFIG)")
	flags.StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.BoolVar(&jsonOutput, "json", false, "output JSON")
	flags.BoolVar(&jsonlOutput, "jsonl", false, "output JSON lines")
	flags.BoolVar(&nonInteractive, "non-interactive", false, "never prompt or open full-screen views")
	flags.BoolVar(&noProgress, "no-progress", false, "disable progress output")
}

func initConfig(cmd *cobra.Command) error {
	v := viper.New()
	if err := config.Setup(v, cfgFile); err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		v.Set("logging.level", logLevel)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	if err := logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}); err != nil {
		return err
	}

	if used := v.ConfigFileUsed(); used != "" {
		logger := logging.Component("cli")
		logger.Debug().Str("path", used).Msg("using config file")
	}

	appConfig = cfg
	return nil
}

// GetConfig returns the loaded configuration, or the defaults before
// initialization.
func GetConfig() *config.Config {
	if appConfig == nil {
		return config.DefaultConfig()
	}
	return appConfig
}

// IsJSONOutput reports whether --json was given.
func IsJSONOutput() bool {
	return jsonOutput
}

// IsJSONLOutput reports whether --jsonl was given.
func IsJSONLOutput() bool {
	return jsonlOutput
}

// WriteOutput encodes value as JSON, one compact line per value with --jsonl.
func WriteOutput(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	if !IsJSONLOutput() {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(value)
}

// PreflightError explains why a command cannot run and what to do instead.
type PreflightError struct {
	Message  string
	Hint     string
	NextStep string
}

func (e *PreflightError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += "\nHint: " + e.Hint
	}
	if e.NextStep != "" {
		msg += "\nNext: " + e.NextStep
	}
	return msg
}

func openDatabase(ctx context.Context) (*db.DB, error) {
	path := GetConfig().History.Path
	if path == "" {
		path = config.DefaultHistoryPath()
	}

	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrate history database: %w", err)
	}
	return database, nil
}
